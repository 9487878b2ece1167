package repos

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/vitality-backend/internal/domain"
	"github.com/yungbote/vitality-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/vitality-backend/internal/pkg/errors"
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

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// The production models declare uuid_generate_v4() column defaults,
	// which sqlite cannot parse, so the schema is created by hand here.
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS videos (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			video_url TEXT NOT NULL,
			thumbnail_url TEXT,
			caption TEXT,
			analysis_status TEXT DEFAULT 'pending',
			analysis_error TEXT,
			health_impact_score REAL DEFAULT 0,
			health_analysis TEXT,
			content_categories TEXT,
			vector_metadata TEXT,
			vector_id TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE,
			password TEXT,
			display_name TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`,
	}
	for _, stmt := range ddl {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM videos")
		db.Exec("DELETE FROM users")
	})
	return db
}

func testVideo(userID uuid.UUID, url string) *domain.Video {
	return &domain.Video{
		ID:             uuid.New(),
		UserID:         userID,
		VideoURL:       url,
		AnalysisStatus: domain.VideoStatusPending,
	}
}

func TestVideoRepoCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	log := testLogger(t)
	repo := NewVideoRepo(db, log)
	dbc := dbctx.Context{Ctx: context.Background()}

	userID := uuid.New()
	v := testVideo(userID, "gs://bucket/a.mp4")
	if _, err := repo.Create(dbc, []*domain.Video{v}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(dbc, v.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.VideoURL != "gs://bucket/a.mp4" {
		t.Fatalf("video_url = %q", got.VideoURL)
	}
	if got.AnalysisStatus != domain.VideoStatusPending {
		t.Fatalf("status = %q", got.AnalysisStatus)
	}

	byURL, err := repo.GetByURL(dbc, "gs://bucket/a.mp4")
	if err != nil {
		t.Fatalf("get by url: %v", err)
	}
	if byURL.ID != v.ID {
		t.Fatalf("id = %s, want %s", byURL.ID, v.ID)
	}
}

func TestVideoRepoGetByIDMissing(t *testing.T) {
	db := openTestDB(t)
	repo := NewVideoRepo(db, testLogger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	_, err := repo.GetByID(dbc, uuid.New())
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestVideoRepoGetByIDsPartial(t *testing.T) {
	db := openTestDB(t)
	repo := NewVideoRepo(db, testLogger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	userID := uuid.New()
	a := testVideo(userID, "gs://bucket/a.mp4")
	b := testVideo(userID, "gs://bucket/b.mp4")
	if _, err := repo.Create(dbc, []*domain.Video{a, b}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByIDs(dbc, []uuid.UUID{a.ID, uuid.New(), b.ID})
	if err != nil {
		t.Fatalf("get by ids: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	empty, err := repo.GetByIDs(dbc, nil)
	if err != nil {
		t.Fatalf("get by ids empty: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("len = %d, want 0", len(empty))
	}
}

func TestVideoRepoUpdateFields(t *testing.T) {
	db := openTestDB(t)
	repo := NewVideoRepo(db, testLogger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	v := testVideo(uuid.New(), "gs://bucket/a.mp4")
	if _, err := repo.Create(dbc, []*domain.Video{v}); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := repo.UpdateFields(dbc, v.ID, map[string]interface{}{
		"analysis_status":     domain.VideoStatusFailed,
		"analysis_error":      "annotation timed out",
		"health_impact_score": -12.5,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetByID(dbc, v.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AnalysisStatus != domain.VideoStatusFailed {
		t.Fatalf("status = %q", got.AnalysisStatus)
	}
	if got.AnalysisError != "annotation timed out" {
		t.Fatalf("analysis_error = %q", got.AnalysisError)
	}
	if got.HealthImpactScore != -12.5 {
		t.Fatalf("score = %v", got.HealthImpactScore)
	}
}

func TestVideoRepoListByUser(t *testing.T) {
	db := openTestDB(t)
	repo := NewVideoRepo(db, testLogger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	owner := uuid.New()
	other := uuid.New()
	if _, err := repo.Create(dbc, []*domain.Video{
		testVideo(owner, "gs://bucket/a.mp4"),
		testVideo(owner, "gs://bucket/b.mp4"),
		testVideo(other, "gs://bucket/c.mp4"),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.ListByUser(dbc, owner, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, v := range got {
		if v.UserID != owner {
			t.Fatalf("user_id = %s, want %s", v.UserID, owner)
		}
	}
}
