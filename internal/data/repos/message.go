package repos

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/vitality-backend/internal/domain"
	"github.com/yungbote/vitality-backend/internal/pkg/dbctx"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

type MessageRepo interface {
	Create(dbc dbctx.Context, rows []*domain.Message) ([]*domain.Message, error)
	ListBySession(dbc dbctx.Context, sessionID string, limit int) ([]*domain.Message, error)
	NextSequence(dbc dbctx.Context, sessionID string) (int, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, log *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: log.With("repo", "MessageRepo")}
}

func (r *messageRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *messageRepo) Create(dbc dbctx.Context, rows []*domain.Message) ([]*domain.Message, error) {
	if len(rows) == 0 {
		return []*domain.Message{}, nil
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *messageRepo) ListBySession(dbc dbctx.Context, sessionID string, limit int) ([]*domain.Message, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("missing session_id")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []*domain.Message
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Message{}).
		Where("session_id = ?", sessionID).
		Order("sequence ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *messageRepo) NextSequence(dbc dbctx.Context, sessionID string) (int, error) {
	if sessionID == "" {
		return 0, fmt.Errorf("missing session_id")
	}
	var max int
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Message{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}
