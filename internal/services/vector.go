package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/vitality-backend/internal/clients/openai"
	"github.com/yungbote/vitality-backend/internal/clients/pinecone"
	"github.com/yungbote/vitality-backend/internal/clients/redisx"
	"github.com/yungbote/vitality-backend/internal/data/repos"
	"github.com/yungbote/vitality-backend/internal/domain"
	"github.com/yungbote/vitality-backend/internal/pkg/dbctx"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

// Pinecone namespaces.
const (
	VideoNamespace  = "video-metadata"
	ReportNamespace = "report-metadata"
)

// VectorMatch is one similarity search hit.
type VectorMatch struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type VectorService interface {
	// IndexVideo embeds the video's metadata document and upserts it into the
	// video namespace. Returns the vector ID and the sanitized metadata that
	// was stored alongside it.
	IndexVideo(dbc dbctx.Context, video *domain.Video) (string, map[string]any, error)

	// IndexReport embeds a product report for report_search retrieval.
	IndexReport(ctx context.Context, report *domain.Report) (string, error)

	SearchSimilar(ctx context.Context, query string, limit int) ([]VectorMatch, error)
	SearchByVideoID(dbc dbctx.Context, videoID uuid.UUID, limit int) ([]VectorMatch, error)
	SearchReports(ctx context.Context, query string, limit int) ([]VectorMatch, error)
}

type vectorService struct {
	log    *logger.Logger
	oa     openai.Client
	store  pinecone.VectorStore
	cache  redisx.EmbedCache
	videos repos.VideoRepo
}

func NewVectorService(log *logger.Logger, oa openai.Client, store pinecone.VectorStore, cache redisx.EmbedCache, videos repos.VideoRepo) VectorService {
	return &vectorService{
		log:    log.With("service", "VectorService"),
		oa:     oa,
		store:  store,
		cache:  cache,
		videos: videos,
	}
}

// ComposeVideoDocument flattens the video row into the text document that
// gets embedded. Sections are skipped when their source data is missing.
func ComposeVideoDocument(video *domain.Video) string {
	if video == nil {
		return ""
	}

	var lines []string
	if strings.TrimSpace(video.Caption) != "" {
		lines = append(lines, "Title: "+strings.TrimSpace(video.Caption))
	}

	var cats domain.ContentCategories
	if len(video.ContentCategories) > 0 && json.Unmarshal(video.ContentCategories, &cats) == nil {
		if cats.PrimaryCategory != "" {
			lines = append(lines, "Category: "+cats.PrimaryCategory)
		}
		if len(cats.Activities) > 0 {
			parts := make([]string, 0, len(cats.Activities))
			for _, a := range cats.Activities {
				parts = append(parts, fmt.Sprintf("%s (%.2f)", a.Label, a.Confidence))
			}
			lines = append(lines, "Activities: "+strings.Join(parts, ", "))
		}
		if cats.Environment != "" {
			lines = append(lines, "Environment: "+cats.Environment)
		}
	}

	var health domain.HealthAnalysis
	if len(video.HealthAnalysis) > 0 && json.Unmarshal(video.HealthAnalysis, &health) == nil {
		if health.Summary != "" {
			lines = append(lines, "Health Impact: "+health.Summary)
		}
		if len(health.Benefits) > 0 {
			lines = append(lines, "Benefits: "+strings.Join(health.Benefits, ", "))
		}
		if len(health.Tags) > 0 {
			lines = append(lines, "Tags: "+strings.Join(health.Tags, ", "))
		}
	}

	return strings.Join(lines, "\n")
}

func (s *vectorService) embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty embedding input")
	}

	if s.cache != nil {
		if vec, ok := s.cache.Get(ctx, text); ok {
			return vec, nil
		}
	}

	vecs, err := s.oa.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}

	if s.cache != nil {
		s.cache.Set(ctx, text, vecs[0])
	}
	return vecs[0], nil
}

func (s *vectorService) IndexVideo(dbc dbctx.Context, video *domain.Video) (string, map[string]any, error) {
	if video == nil || video.ID == uuid.Nil {
		return "", nil, fmt.Errorf("missing video")
	}

	doc := ComposeVideoDocument(video)
	if doc == "" {
		return "", nil, fmt.Errorf("video %s has no indexable content", video.ID)
	}

	vec, err := s.embed(dbc.Ctx, doc)
	if err != nil {
		return "", nil, fmt.Errorf("embed video document: %w", err)
	}

	var health domain.HealthAnalysis
	_ = json.Unmarshal(video.HealthAnalysis, &health)

	supplements := make([]string, 0, 2)
	for _, supp := range health.SupplementRecommendations {
		if len(supplements) >= 2 {
			break
		}
		if strings.TrimSpace(supp.Name) != "" {
			supplements = append(supplements, supp.Name)
		}
	}

	tags := health.Tags
	if len(tags) > 3 {
		tags = tags[:3]
	}

	metadata := sanitizeMetadata(map[string]any{
		"video_id":                   video.ID.String(),
		"title":                      video.Caption,
		"content_type":               health.ContentType,
		"summary":                    health.Summary,
		"health_score":               video.HealthImpactScore,
		"benefits":                   health.Benefits,
		"tags":                       tags,
		"longevity_impact":           health.LongevityImpact,
		"supplement_recommendations": supplements,
		"indexed_at":                 time.Now().UTC().Format(time.RFC3339),
	})

	vectorID := video.ID.String()
	err = s.store.Upsert(dbc.Ctx, VideoNamespace, []pinecone.Vector{{
		ID:       vectorID,
		Values:   vec,
		Metadata: metadata,
	}})
	if err != nil {
		return "", nil, fmt.Errorf("pinecone upsert: %w", err)
	}

	s.log.Info("video indexed", "video_id", video.ID.String(), "doc_len", len(doc))
	return vectorID, metadata, nil
}

func (s *vectorService) IndexReport(ctx context.Context, report *domain.Report) (string, error) {
	if report == nil || report.ID == uuid.Nil {
		return "", fmt.Errorf("missing report")
	}

	var research map[string]any
	_ = json.Unmarshal(report.Research, &research)

	var lines []string
	if strings.TrimSpace(report.ProductTitle) != "" {
		lines = append(lines, "Product: "+report.ProductTitle)
	}
	if summary, _ := research["summary"].(string); strings.TrimSpace(summary) != "" {
		lines = append(lines, "Summary: "+summary)
	}
	for _, key := range []string{"keyPoints", "pros", "cons"} {
		if vals, _ := research[key].([]any); len(vals) > 0 {
			parts := make([]string, 0, len(vals))
			for _, v := range vals {
				if str, _ := v.(string); str != "" {
					parts = append(parts, str)
				}
			}
			if len(parts) > 0 {
				lines = append(lines, key+": "+strings.Join(parts, ", "))
			}
		}
	}

	doc := strings.Join(lines, "\n")
	if doc == "" {
		return "", fmt.Errorf("report %s has no indexable content", report.ID)
	}

	vec, err := s.embed(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("embed report document: %w", err)
	}

	metadata := sanitizeMetadata(map[string]any{
		"report_id":     report.ID.String(),
		"product_id":    report.ProductID,
		"product_title": report.ProductTitle,
		"indexed_at":    time.Now().UTC().Format(time.RFC3339),
	})

	vectorID := report.ID.String()
	err = s.store.Upsert(ctx, ReportNamespace, []pinecone.Vector{{
		ID:       vectorID,
		Values:   vec,
		Metadata: metadata,
	}})
	if err != nil {
		return "", fmt.Errorf("pinecone upsert: %w", err)
	}
	return vectorID, nil
}

func (s *vectorService) SearchSimilar(ctx context.Context, query string, limit int) ([]VectorMatch, error) {
	return s.search(ctx, VideoNamespace, query, limit)
}

func (s *vectorService) SearchReports(ctx context.Context, query string, limit int) ([]VectorMatch, error) {
	return s.search(ctx, ReportNamespace, query, limit)
}

func (s *vectorService) search(ctx context.Context, namespace, query string, limit int) ([]VectorMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query required")
	}
	if limit <= 0 {
		limit = 10
	}

	vec, err := s.embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.store.QueryMatches(ctx, namespace, vec, limit, nil)
	if err != nil {
		return nil, fmt.Errorf("pinecone query: %w", err)
	}
	return toVectorMatches(matches), nil
}

func (s *vectorService) SearchByVideoID(dbc dbctx.Context, videoID uuid.UUID, limit int) ([]VectorMatch, error) {
	if videoID == uuid.Nil {
		return nil, fmt.Errorf("missing video id")
	}
	if limit <= 0 {
		limit = 10
	}

	video, err := s.videos.GetByID(dbc, videoID)
	if err != nil {
		return nil, err
	}

	var matches []pinecone.QueryMatch
	if strings.TrimSpace(video.VectorID) != "" {
		// Seed by the already-indexed vector; ask for one extra because the
		// seed comes back as its own best match.
		matches, err = s.store.QueryByID(dbc.Ctx, VideoNamespace, video.VectorID, limit+1, nil)
	} else {
		doc := ComposeVideoDocument(video)
		if doc == "" {
			return []VectorMatch{}, nil
		}
		var vec []float32
		vec, err = s.embed(dbc.Ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("embed video document: %w", err)
		}
		matches, err = s.store.QueryMatches(dbc.Ctx, VideoNamespace, vec, limit+1, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("pinecone query: %w", err)
	}

	out := make([]VectorMatch, 0, limit)
	self := video.ID.String()
	for _, m := range matches {
		if m.ID == self || m.ID == video.VectorID {
			continue
		}
		out = append(out, VectorMatch{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func toVectorMatches(matches []pinecone.QueryMatch) []VectorMatch {
	out := make([]VectorMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, VectorMatch{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}
	return out
}

// sanitizeMetadata drops nil, empty-string, and empty-collection values so
// Pinecone never sees null metadata fields.
func sanitizeMetadata(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch t := v.(type) {
		case nil:
			continue
		case string:
			if strings.TrimSpace(t) == "" {
				continue
			}
		case []string:
			if len(t) == 0 {
				continue
			}
		case []any:
			if len(t) == 0 {
				continue
			}
		case map[string]any:
			if len(t) == 0 {
				continue
			}
		}
		out[k] = v
	}
	return out
}
