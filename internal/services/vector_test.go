package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/vitality-backend/internal/domain"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestComposeVideoDocument(t *testing.T) {
	video := &domain.Video{
		ID:      uuid.New(),
		Caption: "Morning mobility routine",
		ContentCategories: datatypes.JSON(`{
			"primary_category": "exercise",
			"activities": [
				{"label": "stretching", "confidence": 0.91},
				{"label": "yoga", "confidence": 0.62}
			],
			"environment": "home"
		}`),
		HealthAnalysis: datatypes.JSON(`{
			"summary": "Low intensity mobility work",
			"benefits": ["flexibility", "stress relief"],
			"tags": ["mobility", "yoga", "healthy"]
		}`),
	}

	doc := ComposeVideoDocument(video)

	for _, want := range []string{
		"Title: Morning mobility routine",
		"Category: exercise",
		"stretching (0.91)",
		"Environment: home",
		"Health Impact: Low intensity mobility work",
		"Benefits: flexibility, stress relief",
		"Tags: mobility, yoga, healthy",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q:\n%s", want, doc)
		}
	}
}

func TestComposeVideoDocumentSkipsMissingSections(t *testing.T) {
	doc := ComposeVideoDocument(&domain.Video{ID: uuid.New(), Caption: "just a caption"})
	if doc != "Title: just a caption" {
		t.Fatalf("doc = %q", doc)
	}

	if got := ComposeVideoDocument(nil); got != "" {
		t.Fatalf("nil video doc = %q, want empty", got)
	}
}

func TestSanitizeMetadataDropsEmptyValues(t *testing.T) {
	in := map[string]any{
		"video_id":     "abc",
		"title":        "  ",
		"summary":      "",
		"health_score": 0.0,
		"benefits":     []string{},
		"tags":         []string{"mobility"},
		"extra":        nil,
		"nested":       map[string]any{},
	}

	out := sanitizeMetadata(in)

	if _, ok := out["title"]; ok {
		t.Fatal("blank title kept")
	}
	if _, ok := out["summary"]; ok {
		t.Fatal("empty summary kept")
	}
	if _, ok := out["benefits"]; ok {
		t.Fatal("empty benefits kept")
	}
	if _, ok := out["extra"]; ok {
		t.Fatal("nil value kept")
	}
	if _, ok := out["nested"]; ok {
		t.Fatal("empty map kept")
	}
	if out["video_id"] != "abc" {
		t.Fatalf("video_id = %v", out["video_id"])
	}
	// Zero numbers are legitimate values, not absent ones.
	if out["health_score"] != 0.0 {
		t.Fatalf("health_score = %v", out["health_score"])
	}
	if tags, ok := out["tags"].([]string); !ok || len(tags) != 1 {
		t.Fatalf("tags = %v", out["tags"])
	}
}
