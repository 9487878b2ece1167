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

type ResearchRunRepo interface {
	Create(dbc dbctx.Context, row *domain.ResearchRun) (*domain.ResearchRun, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.ResearchRun, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type researchRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResearchRunRepo(db *gorm.DB, log *logger.Logger) ResearchRunRepo {
	return &researchRunRepo{db: db, log: log.With("repo", "ResearchRunRepo")}
}

func (r *researchRunRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *researchRunRepo) Create(dbc dbctx.Context, row *domain.ResearchRun) (*domain.ResearchRun, error) {
	if row == nil {
		return nil, fmt.Errorf("missing research run")
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *researchRunRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.ResearchRun, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing research run id")
	}
	var out domain.ResearchRun
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

func (r *researchRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing research run id")
	}
	if len(updates) == 0 {
		return nil
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.ResearchRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}
