package repos

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/vitality-backend/internal/domain"
	"github.com/yungbote/vitality-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/vitality-backend/internal/pkg/errors"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

type VideoRepo interface {
	Create(dbc dbctx.Context, rows []*domain.Video) ([]*domain.Video, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Video, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Video, error)
	GetByURL(dbc dbctx.Context, videoURL string) (*domain.Video, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*domain.Video, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type videoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVideoRepo(db *gorm.DB, log *logger.Logger) VideoRepo {
	return &videoRepo{db: db, log: log.With("repo", "VideoRepo")}
}

func (r *videoRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *videoRepo) Create(dbc dbctx.Context, rows []*domain.Video) ([]*domain.Video, error) {
	if len(rows) == 0 {
		return []*domain.Video{}, nil
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *videoRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Video, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing video id")
	}
	var out domain.Video
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("id = ?", id).
		Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *videoRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Video, error) {
	if len(ids) == 0 {
		return []*domain.Video{}, nil
	}
	var out []*domain.Video
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Video{}).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *videoRepo) GetByURL(dbc dbctx.Context, videoURL string) (*domain.Video, error) {
	if videoURL == "" {
		return nil, fmt.Errorf("missing video url")
	}
	var out domain.Video
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("video_url = ?", videoURL).
		Order("created_at DESC").
		Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *videoRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*domain.Video, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*domain.Video
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Video{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *videoRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing video id")
	}
	if len(updates) == 0 {
		return nil
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Video{}).
		Where("id = ?", id).
		Updates(updates).Error
}
