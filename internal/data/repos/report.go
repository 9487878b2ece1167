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

type ReportRepo interface {
	Create(dbc dbctx.Context, rows []*domain.Report) ([]*domain.Report, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Report, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Report, error)
	GetByProductID(dbc dbctx.Context, productID string) (*domain.Report, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type reportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportRepo(db *gorm.DB, log *logger.Logger) ReportRepo {
	return &reportRepo{db: db, log: log.With("repo", "ReportRepo")}
}

func (r *reportRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *reportRepo) Create(dbc dbctx.Context, rows []*domain.Report) ([]*domain.Report, error) {
	if len(rows) == 0 {
		return []*domain.Report{}, nil
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *reportRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Report, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing report id")
	}
	var out domain.Report
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

func (r *reportRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Report, error) {
	if len(ids) == 0 {
		return []*domain.Report{}, nil
	}
	var out []*domain.Report
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Report{}).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reportRepo) GetByProductID(dbc dbctx.Context, productID string) (*domain.Report, error) {
	if productID == "" {
		return nil, fmt.Errorf("missing product id")
	}
	var out domain.Report
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *reportRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing report id")
	}
	if len(updates) == 0 {
		return nil
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Report{}).
		Where("id = ?", id).
		Updates(updates).Error
}
