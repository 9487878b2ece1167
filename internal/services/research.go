package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

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

// reviewDomains scopes Tavily searches to sites with real purchase feedback.
var reviewDomains = []string{"amazon.com", "reddit.com", "trustpilot.com"}

// ResearchProduct identifies one product in a comparison request.
type ResearchProduct struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// ResearchSource is one scored web source gathered for a product.
type ResearchSource struct {
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Content   string  `json:"content"`
	Score     float64 `json:"score"`
}

type ResearchService interface {
	// StartComparison records a run and dispatches the research to the
	// background worker. The returned run is in_progress.
	StartComparison(dbc dbctx.Context, userID uuid.UUID, products []ResearchProduct) (*domain.ResearchRun, error)
	GetStatus(dbc dbctx.Context, userID, runID uuid.UUID) (*domain.ResearchRun, error)
}

type researchService struct {
	log    *logger.Logger
	runs   repos.ResearchRunRepo
	tavily tavily.Client
	oa     openai.Client
	worker Worker
}

func NewResearchService(log *logger.Logger, runs repos.ResearchRunRepo, tv tavily.Client, oa openai.Client, worker Worker) ResearchService {
	return &researchService{
		log:    log.With("service", "ResearchService"),
		runs:   runs,
		tavily: tv,
		oa:     oa,
		worker: worker,
	}
}

func (s *researchService) StartComparison(dbc dbctx.Context, userID uuid.UUID, products []ResearchProduct) (*domain.ResearchRun, error) {
	if len(products) < 2 {
		return nil, fmt.Errorf("%w: at least two products required for comparison", pkgerrors.ErrInvalidArgument)
	}
	for i, p := range products {
		if strings.TrimSpace(p.Title) == "" {
			return nil, fmt.Errorf("%w: product %d missing title", pkgerrors.ErrInvalidArgument, i)
		}
	}
	if s.tavily == nil {
		return nil, fmt.Errorf("research not configured")
	}

	productsJSON, err := json.Marshal(products)
	if err != nil {
		return nil, err
	}
	run, err := s.runs.Create(dbc, &domain.ResearchRun{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    domain.ResearchStatusInProgress,
		Products:  datatypes.JSON(productsJSON),
		StartedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	runID := run.ID
	ok := s.worker.Submit("research.compare", func(ctx context.Context) error {
		return s.runComparison(ctx, runID, products)
	})
	if !ok {
		_ = s.runs.UpdateFields(dbc, runID, map[string]interface{}{
			"status": domain.ResearchStatusError,
			"error":  "research queue full",
		})
		return nil, fmt.Errorf("research queue full")
	}
	return run, nil
}

func (s *researchService) GetStatus(dbc dbctx.Context, userID, runID uuid.UUID) (*domain.ResearchRun, error) {
	run, err := s.runs.GetByID(dbc, runID)
	if err != nil {
		return nil, err
	}
	if run.UserID != userID {
		return nil, pkgerrors.ErrForbidden
	}
	return run, nil
}

func (s *researchService) runComparison(ctx context.Context, runID uuid.UUID, products []ResearchProduct) error {
	dbc := dbctx.Context{Ctx: ctx}

	sources := s.gatherSources(ctx, products)
	comparison, err := s.compare(ctx, products, sources)
	if err != nil {
		uerr := s.runs.UpdateFields(dbc, runID, map[string]interface{}{
			"status": domain.ResearchStatusError,
			"error":  err.Error(),
		})
		if uerr != nil {
			s.log.Error("failed to record research error", "run_id", runID.String(), "error", uerr)
		}
		return err
	}

	results := map[string]any{
		"comparison": comparison,
		"sources":    sources,
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return s.runs.UpdateFields(dbc, runID, map[string]interface{}{
		"status":  domain.ResearchStatusCompleted,
		"results": datatypes.JSON(resultsJSON),
		"error":   "",
	})
}

// gatherSources searches review sites per product. A failed search for one
// product degrades to zero sources rather than failing the run.
func (s *researchService) gatherSources(ctx context.Context, products []ResearchProduct) []ResearchSource {
	out := []ResearchSource{}
	for _, p := range products {
		query := strings.TrimSpace(p.Title + " " + p.ID + " amazon review")
		results, err := s.tavily.Search(ctx, query, tavily.SearchOptions{
			SearchDepth:    "advanced",
			IncludeDomains: reviewDomains,
			MaxResults:     5,
		})
		if err != nil {
			s.log.Warn("source search failed", "product_id", p.ID, "error", err)
			continue
		}
		for _, r := range results {
			out = append(out, ResearchSource{
				ProductID: p.ID,
				Title:     r.Title,
				URL:       r.URL,
				Content:   r.Content,
				Score:     r.RelevanceScore,
			})
		}
	}
	return out
}

var comparisonSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"winner":  map[string]any{"type": "string"},
		"summary": map[string]any{"type": "string"},
		"products": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"product_id": map[string]any{"type": "string"},
					"pros":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"cons":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"verdict":    map[string]any{"type": "string"},
				},
				"required": []string{"product_id", "pros", "cons", "verdict"},
			},
		},
	},
	"required": []string{"winner", "summary", "products"},
}

const comparisonSystemPrompt = `You are a consumer product researcher. Compare the products using only the provided review excerpts. Be specific about quality, value, and reported problems. Pick a single winner by product id.`

func (s *researchService) compare(ctx context.Context, products []ResearchProduct, sources []ResearchSource) (map[string]any, error) {
	var sb strings.Builder
	sb.WriteString("Products:\n")
	for _, p := range products {
		fmt.Fprintf(&sb, "- id=%s title=%s\n", p.ID, p.Title)
	}
	sb.WriteString("\nReview excerpts:\n")
	for _, src := range sources {
		fmt.Fprintf(&sb, "[%s] %s (%s): %s\n", src.ProductID, src.Title, src.URL, truncate(src.Content, 600))
	}
	if len(sources) == 0 {
		sb.WriteString("(no review sources found; compare on titles alone and say so in the summary)\n")
	}

	out, err := s.oa.GenerateJSON(ctx, comparisonSystemPrompt, sb.String(), "product_comparison", comparisonSchema)
	if err != nil {
		return nil, fmt.Errorf("comparison generation: %w", err)
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
