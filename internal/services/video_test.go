package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/vitality-backend/internal/clients/gcp"
	"github.com/yungbote/vitality-backend/internal/domain"
	"github.com/yungbote/vitality-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/vitality-backend/internal/pkg/errors"
)

// memVideoRepo is a stateful fake that applies UpdateFields so the
// pipeline status transitions can be observed.
type memVideoRepo struct {
	rows map[uuid.UUID]*domain.Video
}

func newMemVideoRepo(rows ...*domain.Video) *memVideoRepo {
	out := &memVideoRepo{rows: map[uuid.UUID]*domain.Video{}}
	for _, v := range rows {
		out.rows[v.ID] = v
	}
	return out
}

func (f *memVideoRepo) Create(dbc dbctx.Context, rows []*domain.Video) ([]*domain.Video, error) {
	for _, v := range rows {
		f.rows[v.ID] = v
	}
	return rows, nil
}

func (f *memVideoRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Video, error) {
	if v, ok := f.rows[id]; ok {
		return v, nil
	}
	return nil, pkgerrors.ErrNotFound
}

func (f *memVideoRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Video, error) {
	out := []*domain.Video{}
	for _, id := range ids {
		if v, ok := f.rows[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *memVideoRepo) GetByURL(dbc dbctx.Context, videoURL string) (*domain.Video, error) {
	for _, v := range f.rows {
		if v.VideoURL == videoURL {
			return v, nil
		}
	}
	return nil, pkgerrors.ErrNotFound
}

func (f *memVideoRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*domain.Video, error) {
	out := []*domain.Video{}
	for _, v := range f.rows {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *memVideoRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	v, ok := f.rows[id]
	if !ok {
		return pkgerrors.ErrNotFound
	}
	for k, val := range updates {
		switch k {
		case "analysis_status":
			v.AnalysisStatus = val.(string)
		case "analysis_error":
			v.AnalysisError = val.(string)
		case "health_impact_score":
			v.HealthImpactScore = val.(float64)
		case "health_analysis":
			v.HealthAnalysis = toJSON(val)
		case "content_categories":
			v.ContentCategories = toJSON(val)
		case "vector_id":
			v.VectorID = val.(string)
		case "vector_metadata":
			v.VectorMetadata = toJSON(val)
		case "caption":
			v.Caption = val.(string)
		case "thumbnail_url":
			v.ThumbnailURL = val.(string)
		}
	}
	return nil
}

func toJSON(val interface{}) datatypes.JSON {
	switch v := val.(type) {
	case datatypes.JSON:
		return v
	default:
		b, _ := json.Marshal(v)
		return b
	}
}

type fakeVideoAI struct {
	annotation *gcp.VideoAnnotation
	err        error
}

func (f *fakeVideoAI) AnnotateVideoGCS(ctx context.Context, gcsURI string, cfg gcp.VideoConfig) (*gcp.VideoAnnotation, error) {
	return f.annotation, f.err
}

func (f *fakeVideoAI) Close() error { return nil }

type fakeVision struct {
	annotation *gcp.ImageAnnotation
	err        error
}

func (f *fakeVision) AnnotateImageBytes(ctx context.Context, img []byte) (*gcp.ImageAnnotation, error) {
	return f.annotation, f.err
}

func (f *fakeVision) AnnotateImageGCS(ctx context.Context, gcsURI string) (*gcp.ImageAnnotation, error) {
	return f.annotation, f.err
}

func (f *fakeVision) Close() error { return nil }

type fakeBucket struct {
	exists bool
	err    error
}

func (f *fakeBucket) ReadObject(ctx context.Context, gcsURI string) ([]byte, error) {
	return nil, f.err
}

func (f *fakeBucket) ObjectExists(ctx context.Context, gcsURI string) (bool, error) {
	return f.exists, f.err
}

func (f *fakeBucket) Close() error { return nil }

type fakeHealth struct {
	score    float64
	analysis *domain.HealthAnalysis
	err      error
}

func (f *fakeHealth) AnalyzeHealthImpact(ctx context.Context, videoAnalysis map[string]any) (float64, *domain.HealthAnalysis, error) {
	return f.score, f.analysis, f.err
}

type fakeVectors struct {
	vectorID string
	metadata map[string]any
	matches  []VectorMatch
	err      error
}

func (f *fakeVectors) IndexVideo(dbc dbctx.Context, video *domain.Video) (string, map[string]any, error) {
	return f.vectorID, f.metadata, f.err
}

func (f *fakeVectors) IndexReport(ctx context.Context, report *domain.Report) (string, error) {
	return f.vectorID, f.err
}

func (f *fakeVectors) SearchSimilar(ctx context.Context, query string, limit int) ([]VectorMatch, error) {
	return f.matches, f.err
}

func (f *fakeVectors) SearchByVideoID(dbc dbctx.Context, videoID uuid.UUID, limit int) ([]VectorMatch, error) {
	return f.matches, f.err
}

func (f *fakeVectors) SearchReports(ctx context.Context, query string, limit int) ([]VectorMatch, error) {
	return f.matches, f.err
}

func testDBC() dbctx.Context { return dbctx.Context{Ctx: context.Background()} }

func TestAnalyzeCompletesAndStoresCategories(t *testing.T) {
	owner := uuid.New()
	video := &domain.Video{
		ID:             uuid.New(),
		UserID:         owner,
		VideoURL:       "gs://bucket/workout.mp4",
		ThumbnailURL:   "gs://bucket/workout.jpg",
		AnalysisStatus: domain.VideoStatusPending,
	}
	repo := newMemVideoRepo(video)

	svc := NewVideoService(testLogger(t), repo,
		&fakeVideoAI{annotation: &gcp.VideoAnnotation{
			Labels: []gcp.VideoLabel{
				{Description: "Stretching", Confidence: 0.91},
				{Description: "Yoga", Confidence: 0.95},
			},
		}},
		&fakeVision{annotation: &gcp.ImageAnnotation{
			Labels:     []gcp.ImageLabel{{Description: "Yoga studio", Confidence: 0.8}},
			Objects:    []gcp.ImageLabel{{Description: "Mat", Confidence: 0.7}},
			SafeSearch: &gcp.SafeSearch{Violence: "VERY_UNLIKELY", Medical: "UNLIKELY"},
		}},
		nil,
		&fakeHealth{score: 12, analysis: &domain.HealthAnalysis{Summary: "good"}},
		&fakeVectors{},
	)

	got, err := svc.Analyze(testDBC(), owner, video.ID)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.AnalysisStatus != domain.VideoStatusCompleted {
		t.Fatalf("status = %q, want completed", got.AnalysisStatus)
	}
	if got.HealthImpactScore != 12 {
		t.Fatalf("score = %v, want 12", got.HealthImpactScore)
	}

	var cats domain.ContentCategories
	if err := json.Unmarshal(got.ContentCategories, &cats); err != nil {
		t.Fatalf("unmarshal categories: %v", err)
	}
	if cats.PrimaryCategory != "yoga" {
		t.Fatalf("primary = %q, want yoga", cats.PrimaryCategory)
	}
	if cats.Environment != "studio" {
		t.Fatalf("environment = %q, want studio", cats.Environment)
	}
	if len(cats.Activities) != 2 {
		t.Fatalf("activities = %d, want 2", len(cats.Activities))
	}
	if len(cats.Objects) != 1 || cats.Objects[0] != "Mat" {
		t.Fatalf("objects = %v", cats.Objects)
	}
}

func TestAnalyzeFailureSetsFailedStatus(t *testing.T) {
	owner := uuid.New()
	video := &domain.Video{
		ID:       uuid.New(),
		UserID:   owner,
		VideoURL: "gs://bucket/clip.mp4",
	}
	repo := newMemVideoRepo(video)

	svc := NewVideoService(testLogger(t), repo,
		&fakeVideoAI{err: errors.New("quota exhausted")},
		nil, nil, &fakeHealth{}, &fakeVectors{},
	)

	if _, err := svc.Analyze(testDBC(), owner, video.ID); err == nil {
		t.Fatal("expected error")
	}
	if video.AnalysisStatus != domain.VideoStatusFailed {
		t.Fatalf("status = %q, want failed", video.AnalysisStatus)
	}
	if video.AnalysisError == "" {
		t.Fatal("analysis_error not recorded")
	}
}

func TestAnalyzeRejectsNonOwner(t *testing.T) {
	video := &domain.Video{ID: uuid.New(), UserID: uuid.New(), VideoURL: "gs://b/v.mp4"}
	repo := newMemVideoRepo(video)

	svc := NewVideoService(testLogger(t), repo, &fakeVideoAI{}, nil, nil, &fakeHealth{}, &fakeVectors{})
	if _, err := svc.Analyze(testDBC(), uuid.New(), video.ID); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestAnalyzeByURLRegistersNewVideo(t *testing.T) {
	owner := uuid.New()
	repo := newMemVideoRepo()

	svc := NewVideoService(testLogger(t), repo,
		&fakeVideoAI{annotation: &gcp.VideoAnnotation{Labels: []gcp.VideoLabel{{Description: "Running", Confidence: 0.9}}}},
		nil,
		nil,
		&fakeHealth{score: 5, analysis: &domain.HealthAnalysis{Summary: "cardio"}},
		&fakeVectors{},
	)

	got, err := svc.AnalyzeByURL(testDBC(), owner, "gs://bucket/run.mp4", "morning run", "")
	if err != nil {
		t.Fatalf("analyze by url: %v", err)
	}
	if got.UserID != owner {
		t.Fatalf("owner = %v, want %v", got.UserID, owner)
	}
	if got.AnalysisStatus != domain.VideoStatusCompleted {
		t.Fatalf("status = %q, want completed", got.AnalysisStatus)
	}
}

func TestAnalyzeByURLRejectsNonGCSURI(t *testing.T) {
	svc := NewVideoService(testLogger(t), newMemVideoRepo(), &fakeVideoAI{}, nil, nil, &fakeHealth{}, &fakeVectors{})
	if _, err := svc.AnalyzeByURL(testDBC(), uuid.New(), "https://example.com/v.mp4", "", ""); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
}

func TestAnalyzeByURLRejectsMissingObject(t *testing.T) {
	svc := NewVideoService(testLogger(t), newMemVideoRepo(), &fakeVideoAI{}, nil,
		&fakeBucket{exists: false}, &fakeHealth{}, &fakeVectors{})
	if _, err := svc.AnalyzeByURL(testDBC(), uuid.New(), "gs://bucket/missing.mp4", "", ""); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
}

func TestVectorizeRequiresCompletedAnalysis(t *testing.T) {
	owner := uuid.New()
	video := &domain.Video{ID: uuid.New(), UserID: owner, AnalysisStatus: domain.VideoStatusPending}
	repo := newMemVideoRepo(video)

	svc := NewVideoService(testLogger(t), repo, &fakeVideoAI{}, nil, nil, &fakeHealth{}, &fakeVectors{})
	if _, err := svc.Vectorize(testDBC(), owner, video.ID); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
}

func TestVectorizeStoresVectorFields(t *testing.T) {
	owner := uuid.New()
	video := &domain.Video{ID: uuid.New(), UserID: owner, AnalysisStatus: domain.VideoStatusCompleted}
	repo := newMemVideoRepo(video)

	svc := NewVideoService(testLogger(t), repo, &fakeVideoAI{}, nil, nil, &fakeHealth{},
		&fakeVectors{vectorID: video.ID.String(), metadata: map[string]any{"title": "clip"}})

	got, err := svc.Vectorize(testDBC(), owner, video.ID)
	if err != nil {
		t.Fatalf("vectorize: %v", err)
	}
	if got.AnalysisStatus != domain.VideoStatusVectorized {
		t.Fatalf("status = %q, want vectorized", got.AnalysisStatus)
	}
	if got.VectorID != video.ID.String() {
		t.Fatalf("vector_id = %q", got.VectorID)
	}
	if len(got.VectorMetadata) == 0 {
		t.Fatal("vector_metadata not stored")
	}
}

func TestSearchHydratesInMatchOrder(t *testing.T) {
	v1 := &domain.Video{ID: uuid.New(), AnalysisStatus: domain.VideoStatusVectorized}
	v2 := &domain.Video{ID: uuid.New(), AnalysisStatus: domain.VideoStatusVectorized}
	repo := newMemVideoRepo(v1, v2)

	svc := NewVideoService(testLogger(t), repo, &fakeVideoAI{}, nil, nil, &fakeHealth{},
		&fakeVectors{matches: []VectorMatch{
			{ID: v2.ID.String(), Score: 0.9},
			{ID: "not-a-uuid", Score: 0.8},
			{ID: v1.ID.String(), Score: 0.7},
		}})

	got, err := svc.Search(testDBC(), "stretching", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Video.ID != v2.ID || got[1].Video.ID != v1.ID {
		t.Fatalf("order = %v %v", got[0].Video.ID, got[1].Video.ID)
	}
}
