package repos

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/vitality-backend/internal/domain"
	"github.com/yungbote/vitality-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/vitality-backend/internal/pkg/errors"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

type UserTokenRepo interface {
	Create(dbc dbctx.Context, row *domain.UserToken) (*domain.UserToken, error)
	GetByRefreshToken(dbc dbctx.Context, refreshToken string) (*domain.UserToken, error)
	DeleteByUserID(dbc dbctx.Context, userID uuid.UUID) error
	DeleteExpired(dbc dbctx.Context) (int64, error)
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, log *logger.Logger) UserTokenRepo {
	return &userTokenRepo{db: db, log: log.With("repo", "UserTokenRepo")}
}

func (r *userTokenRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *userTokenRepo) Create(dbc dbctx.Context, row *domain.UserToken) (*domain.UserToken, error) {
	if row == nil {
		return nil, fmt.Errorf("missing token row")
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *userTokenRepo) GetByRefreshToken(dbc dbctx.Context, refreshToken string) (*domain.UserToken, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("missing refresh token")
	}
	var out domain.UserToken
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("refresh_token = ?", refreshToken).
		Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *userTokenRepo) DeleteByUserID(dbc dbctx.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return fmt.Errorf("missing user_id")
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Delete(&domain.UserToken{}).Error
}

func (r *userTokenRepo) DeleteExpired(dbc dbctx.Context) (int64, error) {
	res := r.tx(dbc).WithContext(dbc.Ctx).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&domain.UserToken{})
	return res.RowsAffected, res.Error
}
