package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/vitality-backend/internal/clients/openai"
	"github.com/yungbote/vitality-backend/internal/domain"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

// HealthService turns annotation output into a longevity score (lifetime
// minutes added or subtracted) plus structured reasoning.
type HealthService interface {
	AnalyzeHealthImpact(ctx context.Context, videoAnalysis map[string]any) (float64, *domain.HealthAnalysis, error)
}

type healthService struct {
	log *logger.Logger
	oa  openai.Client
}

func NewHealthService(log *logger.Logger, oa openai.Client) HealthService {
	return &healthService{log: log.With("service", "HealthService"), oa: oa}
}

const healthSystemPrompt = `You are primarily a nutrition and supplement expert, with additional expertise in longevity analysis for short-form videos (typically 15 seconds). Provide evidence-based supplement recommendations based on the video content and activities shown, and analyze the content's lifetime impact on life expectancy.

Focus on these structured fields of the input:
- content_categories.primary_category: the main activity type (exercise, study, food, wellness, outdoor)
- content_categories.activities: detected activities with confidence scores
- content_categories.environment: the setting (indoor, outdoor, urban, natural)

Always provide at least 2 supplement recommendations grounded in the detected activities. Calculate "score" as an integer of TOTAL LIFETIME MINUTES this activity/content would add to (+) or subtract from (-) life expectancy if consumed/practiced habitually.`

var healthAnalysisSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"score", "reasoning"},
	"properties": map[string]any{
		"score": map[string]any{"type": "integer"},
		"reasoning": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required": []string{
				"summary", "content_type", "longevity_impact", "benefits",
				"risks", "recommendations", "tags", "supplement_recommendations",
			},
			"properties": map[string]any{
				"summary":          map[string]any{"type": "string"},
				"content_type":     map[string]any{"type": "string"},
				"longevity_impact": map[string]any{"type": "string"},
				"benefits":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"risks":            map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"recommendations":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"tags":             map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"supplement_recommendations": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":                 "object",
						"additionalProperties": false,
						"required":             []string{"name", "dosage", "timing", "reason", "caution"},
						"properties": map[string]any{
							"name":    map[string]any{"type": "string"},
							"dosage":  map[string]any{"type": "string"},
							"timing":  map[string]any{"type": "string"},
							"reason":  map[string]any{"type": "string"},
							"caution": map[string]any{"type": "string"},
						},
					},
				},
			},
		},
	},
}

func (s *healthService) AnalyzeHealthImpact(ctx context.Context, videoAnalysis map[string]any) (float64, *domain.HealthAnalysis, error) {
	payload, err := json.Marshal(videoAnalysis)
	if err != nil {
		return 0, nil, fmt.Errorf("encode analysis input: %w", err)
	}

	obj, err := s.oa.GenerateJSON(ctx, healthSystemPrompt,
		"Analyze this content: "+string(payload),
		"health_impact_analysis", healthAnalysisSchema)
	if err != nil {
		return 0, nil, fmt.Errorf("health analysis: %w", err)
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		return 0, nil, err
	}

	var parsed struct {
		Score     float64               `json:"score"`
		Reasoning domain.HealthAnalysis `json:"reasoning"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return 0, nil, fmt.Errorf("decode health analysis: %w", err)
	}

	parsed.Reasoning.Tags = CleanTags(parsed.Reasoning.Tags, parsed.Score)

	s.log.Info("health impact analyzed",
		"score", parsed.Score,
		"content_type", parsed.Reasoning.ContentType,
		"supplements", len(parsed.Reasoning.SupplementRecommendations),
	)
	return parsed.Score, &parsed.Reasoning, nil
}

// CleanTags normalizes model tags to exactly 3 single-word lowercase
// entries: each tag is reduced to its first word, duplicates removed, and
// the list padded by score sign (healthy/unhealthy/neutral) when short.
func CleanTags(tags []string, score float64) []string {
	clean := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		word := strings.ToLower(strings.Fields(tag)[0])
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		clean = append(clean, word)
	}

	pad := "neutral"
	if score > 0 {
		pad = "healthy"
	} else if score < 0 {
		pad = "unhealthy"
	}
	for len(clean) < 3 {
		clean = append(clean, pad)
	}
	return clean[:3]
}

// CategorizeEnvironment maps image labels to a coarse setting.
func CategorizeEnvironment(labels []string) string {
	environmentKeywords := map[string][]string{
		"indoor_gym": {"gym", "fitness center", "weight room"},
		"outdoor":    {"park", "street", "garden", "outdoor"},
		"home":       {"living room", "bedroom", "home"},
		"studio":     {"studio", "dance studio", "yoga studio"},
	}

	lowered := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		lowered[strings.ToLower(strings.TrimSpace(l))] = struct{}{}
	}

	// Check categories in a fixed order so results are deterministic.
	for _, env := range []string{"indoor_gym", "outdoor", "home", "studio"} {
		for _, kw := range environmentKeywords[env] {
			if _, ok := lowered[kw]; ok {
				return env
			}
		}
	}
	return "unknown"
}
