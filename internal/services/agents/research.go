package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/vitality-backend/internal/clients/openai"
	"github.com/yungbote/vitality-backend/internal/clients/tavily"
	"github.com/yungbote/vitality-backend/internal/data/repos"
	"github.com/yungbote/vitality-backend/internal/domain"
	"github.com/yungbote/vitality-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/vitality-backend/internal/pkg/errors"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

// ReportIndexer is the slice of the vector service the research agent
// needs to make reports retrievable by report_search.
type ReportIndexer interface {
	IndexReport(ctx context.Context, report *domain.Report) (string, error)
}

type researchAgent struct {
	log     *logger.Logger
	tavily  tavily.Client
	oa      openai.Client
	reports repos.ReportRepo
	indexer ReportIndexer
}

func NewResearchAgent(log *logger.Logger, tv tavily.Client, oa openai.Client, reports repos.ReportRepo, indexer ReportIndexer) Agent {
	return &researchAgent{
		log:     log.With("agent", "research"),
		tavily:  tv,
		oa:      oa,
		reports: reports,
		indexer: indexer,
	}
}

// ResearchSummary is the structured model output stored on the report.
type ResearchSummary struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
	Pros      []string `json:"pros"`
	Cons      []string `json:"cons"`
	Sources   []string `json:"sources"`
}

var researchSummarySchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"summary":   map[string]any{"type": "string"},
		"keyPoints": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"pros":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"cons":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"sources":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []string{"summary", "keyPoints", "pros", "cons", "sources"},
}

const researchSystemPrompt = `You are a product researcher. Summarize the product using the provided search results. Be concrete about reported quality and complaints. Cite source URLs in sources.`

func (a *researchAgent) Process(ctx context.Context, in Input) (*Output, error) {
	if in.Product == nil || strings.TrimSpace(in.Product.Title) == "" {
		return nil, fmt.Errorf("%w: product with title required", pkgerrors.ErrInvalidArgument)
	}
	if a.tavily == nil {
		return nil, fmt.Errorf("research agent not configured")
	}

	product := *in.Product
	query := strings.TrimSpace(fmt.Sprintf("%s %s review", product.Title, product.ID))
	results, err := a.tavily.Search(ctx, query, tavily.SearchOptions{
		SearchDepth: "advanced",
		MaxResults:  5,
	})
	if err != nil {
		return nil, fmt.Errorf("product search: %w", err)
	}

	summary := a.summarize(ctx, product, results)

	researchJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}
	sourcesJSON, err := json.Marshal(results)
	if err != nil {
		return nil, err
	}

	dbc := dbctx.Context{Ctx: ctx}
	created, err := a.reports.Create(dbc, []*domain.Report{{
		ID:            uuid.New(),
		UserID:        in.UserID,
		ProductID:     product.ID,
		ProductTitle:  product.Title,
		ProductURL:    product.URL,
		Research:      datatypes.JSON(researchJSON),
		SearchResults: datatypes.JSON(sourcesJSON),
	}})
	if err != nil {
		return nil, err
	}
	report := created[0]

	if a.indexer != nil {
		vectorID, ierr := a.indexer.IndexReport(ctx, report)
		if ierr != nil {
			a.log.Warn("report indexing failed", "report_id", report.ID.String(), "error", ierr)
		} else if uerr := a.reports.UpdateFields(dbc, report.ID, map[string]interface{}{"vector_id": vectorID}); uerr == nil {
			report.VectorID = vectorID
		}
	}

	return &Output{
		Agent:  KindResearch.String(),
		Reply:  summary.Summary,
		Report: report,
	}, nil
}

// summarize falls back to a static summary built from the raw results
// when the model call fails.
func (a *researchAgent) summarize(ctx context.Context, product ProductRef, results []tavily.Result) ResearchSummary {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Product: %s (id %s)\n\nSearch results:\n", product.Title, product.ID)
	for _, r := range results {
		fmt.Fprintf(&sb, "- %s (%s): %s\n", r.Title, r.URL, r.Content)
	}

	res, err := a.oa.GenerateJSON(ctx, researchSystemPrompt, sb.String(), "product_research", researchSummarySchema)
	if err == nil {
		var out ResearchSummary
		if b, merr := json.Marshal(res); merr == nil {
			if uerr := json.Unmarshal(b, &out); uerr == nil && out.Summary != "" {
				return out
			}
		}
	} else {
		a.log.Warn("research summary generation failed", "product_id", product.ID, "error", err)
	}

	return staticSummary(product, results)
}

func staticSummary(product ProductRef, results []tavily.Result) ResearchSummary {
	out := ResearchSummary{
		Summary:   fmt.Sprintf("Research results for %s.", product.Title),
		KeyPoints: []string{},
		Pros:      []string{},
		Cons:      []string{},
		Sources:   []string{},
	}
	for _, r := range results {
		if r.Title != "" {
			out.KeyPoints = append(out.KeyPoints, r.Title)
		}
		if r.URL != "" {
			out.Sources = append(out.Sources, r.URL)
		}
	}
	return out
}
