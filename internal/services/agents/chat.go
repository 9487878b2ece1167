package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/vitality-backend/internal/clients/openai"
	"github.com/yungbote/vitality-backend/internal/data/repos"
	"github.com/yungbote/vitality-backend/internal/domain"
	"github.com/yungbote/vitality-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/vitality-backend/internal/pkg/errors"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
	"github.com/yungbote/vitality-backend/internal/services"
)

const (
	IntentVideoSearch  = "video_search"
	IntentReportSearch = "report_search"
	IntentGeneralChat  = "general_chat"

	searchCandidateLimit = 10
	rerankKeep           = 3
)

// VectorSearcher is the slice of the vector service the chat agent needs.
type VectorSearcher interface {
	SearchSimilar(ctx context.Context, query string, limit int) ([]services.VectorMatch, error)
	SearchReports(ctx context.Context, query string, limit int) ([]services.VectorMatch, error)
}

type chatAgent struct {
	log      *logger.Logger
	oa       openai.Client
	search   VectorSearcher
	videos   repos.VideoRepo
	reports  repos.ReportRepo
	messages repos.MessageRepo
}

func NewChatAgent(log *logger.Logger, oa openai.Client, search VectorSearcher, videos repos.VideoRepo, reports repos.ReportRepo, messages repos.MessageRepo) Agent {
	return &chatAgent{
		log:      log.With("agent", "chat"),
		oa:       oa,
		search:   search,
		videos:   videos,
		reports:  reports,
		messages: messages,
	}
}

var intentSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"intent": map[string]any{
			"type": "string",
			"enum": []string{IntentVideoSearch, IntentReportSearch, IntentGeneralChat},
		},
	},
	"required": []string{"intent"},
}

const intentSystemPrompt = `Classify the user's message for a health and wellness app.
video_search: the user wants video content (workouts, recipes, routines).
report_search: the user asks about a product we researched (supplements, gear).
general_chat: anything else.`

const wellnessSystemPrompt = `You are a friendly health and wellness assistant. Give practical, evidence-minded advice about fitness, nutrition, sleep, and supplements. Recommend consulting a professional for medical concerns.`

func (a *chatAgent) Process(ctx context.Context, in Input) (*Output, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, fmt.Errorf("%w: message required", pkgerrors.ErrInvalidArgument)
	}

	intent := a.classifyIntent(ctx, in.Message)
	out := &Output{Agent: KindChat.String(), Intent: intent}

	var candidates []Candidate
	switch intent {
	case IntentVideoSearch:
		candidates = a.searchVideos(ctx, in.Message)
	case IntentReportSearch:
		candidates = a.searchReports(ctx, in.Message)
	case IntentGeneralChat:
		reply, err := a.oa.GenerateText(ctx, wellnessSystemPrompt, in.Message)
		if err != nil {
			return nil, fmt.Errorf("chat generation: %w", err)
		}
		out.Reply = reply
	}

	if len(candidates) > 0 {
		candidates = DedupeKeepMax(candidates)
		candidates = a.rerank(ctx, in.Message, candidates)
		out.Candidates = candidates
		out.Reply = composeSearchReply(intent, candidates)
	}

	if err := a.persistReply(ctx, in, out); err != nil {
		a.log.Warn("failed to persist assistant message", "session_id", in.SessionID, "error", err)
	}
	return out, nil
}

// classifyIntent degrades to general_chat when the model call fails or
// returns something outside the enum.
func (a *chatAgent) classifyIntent(ctx context.Context, message string) string {
	res, err := a.oa.GenerateJSON(ctx, intentSystemPrompt, message, "intent_classification", intentSchema)
	if err != nil {
		a.log.Warn("intent classification failed", "error", err)
		return IntentGeneralChat
	}
	intent, _ := res["intent"].(string)
	switch intent {
	case IntentVideoSearch, IntentReportSearch, IntentGeneralChat:
		return intent
	default:
		return IntentGeneralChat
	}
}

func (a *chatAgent) searchVideos(ctx context.Context, query string) []Candidate {
	matches, err := a.search.SearchSimilar(ctx, query, searchCandidateLimit)
	if err != nil {
		a.log.Warn("video search failed", "error", err)
		return nil
	}

	ids := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		if id, perr := uuid.Parse(m.ID); perr == nil {
			ids = append(ids, id)
		}
	}
	rows, err := a.videos.GetByIDs(dbctx.Context{Ctx: ctx}, ids)
	if err != nil {
		a.log.Warn("video hydration failed", "error", err)
		return nil
	}
	byID := make(map[string]*domain.Video, len(rows))
	for _, v := range rows {
		byID[v.ID.String()] = v
	}

	out := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		v, ok := byID[m.ID]
		if !ok {
			continue
		}
		title := v.Caption
		if title == "" {
			title = v.VideoURL
		}
		out = append(out, Candidate{ID: m.ID, Kind: "video", Title: title, Score: m.Score})
	}
	return out
}

func (a *chatAgent) searchReports(ctx context.Context, query string) []Candidate {
	matches, err := a.search.SearchReports(ctx, query, searchCandidateLimit)
	if err != nil {
		a.log.Warn("report search failed", "error", err)
		return nil
	}

	ids := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		if id, perr := uuid.Parse(m.ID); perr == nil {
			ids = append(ids, id)
		}
	}
	rows, err := a.reports.GetByIDs(dbctx.Context{Ctx: ctx}, ids)
	if err != nil {
		a.log.Warn("report hydration failed", "error", err)
		return nil
	}
	byID := make(map[string]*domain.Report, len(rows))
	for _, r := range rows {
		byID[r.ID.String()] = r
	}

	out := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		r, ok := byID[m.ID]
		if !ok {
			continue
		}
		out = append(out, Candidate{ID: m.ID, Kind: "report", Title: r.ProductTitle, Score: m.Score})
	}
	return out
}

var rerankSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"chosen_ids": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required": []string{"chosen_ids"},
}

const rerankSystemPrompt = `Pick the candidates that best answer the user's message. Return at most 3 ids, best first. Only return ids from the provided list.`

// rerank asks the model for a forced choice among the deduplicated
// candidates; on any failure it falls back to score order.
func (a *chatAgent) rerank(ctx context.Context, message string, candidates []Candidate) []Candidate {
	if len(candidates) <= 1 {
		return candidates
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Message: %s\n\nCandidates:\n", message)
	for _, c := range candidates {
		fmt.Fprintf(&sb, "- id=%s title=%s score=%.3f\n", c.ID, c.Title, c.Score)
	}

	byID := make(map[string]Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	res, err := a.oa.GenerateJSON(ctx, rerankSystemPrompt, sb.String(), "candidate_rerank", rerankSchema)
	if err == nil {
		if raw, ok := res["chosen_ids"].([]any); ok {
			chosen := make([]Candidate, 0, rerankKeep)
			seen := map[string]bool{}
			for _, v := range raw {
				id, _ := v.(string)
				c, ok := byID[id]
				if !ok || seen[id] {
					continue
				}
				seen[id] = true
				chosen = append(chosen, c)
				if len(chosen) == rerankKeep {
					break
				}
			}
			if len(chosen) > 0 {
				return chosen
			}
		}
	} else {
		a.log.Warn("rerank failed, falling back to score order", "error", err)
	}

	fallback := make([]Candidate, len(candidates))
	copy(fallback, candidates)
	sort.SliceStable(fallback, func(i, j int) bool { return fallback[i].Score > fallback[j].Score })
	if len(fallback) > rerankKeep {
		fallback = fallback[:rerankKeep]
	}
	return fallback
}

func composeSearchReply(intent string, candidates []Candidate) string {
	noun := "videos"
	if intent == IntentReportSearch {
		noun = "product reports"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Here are the %s I found:\n", noun)
	for i, c := range candidates {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, c.Title)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (a *chatAgent) persistReply(ctx context.Context, in Input, out *Output) error {
	if in.SessionID == "" || a.messages == nil {
		return nil
	}
	dbc := dbctx.Context{Ctx: ctx}
	seq, err := a.messages.NextSequence(dbc, in.SessionID)
	if err != nil {
		return err
	}
	_, err = a.messages.Create(dbc, []*domain.Message{{
		ID:        uuid.New(),
		SessionID: in.SessionID,
		Role:      "assistant",
		MsgType:   "text",
		Content:   out.Reply,
		Sequence:  seq,
		SenderID:  "AI",
	}})
	return err
}
