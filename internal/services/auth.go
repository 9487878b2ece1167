package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/vitality-backend/internal/data/repos"
	"github.com/yungbote/vitality-backend/internal/domain"
	"github.com/yungbote/vitality-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/vitality-backend/internal/pkg/errors"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type AuthService interface {
	Register(dbc dbctx.Context, email, password, displayName string) (*domain.User, error)
	Login(dbc dbctx.Context, email, password string) (*domain.User, *TokenPair, error)
	Refresh(dbc dbctx.Context, refreshToken string) (*TokenPair, error)
	Logout(dbc dbctx.Context, userID uuid.UUID) error

	// ParseAccessToken validates a bearer token and returns the subject user ID.
	ParseAccessToken(tokenString string) (uuid.UUID, error)
	AccessTTL() time.Duration
}

type authService struct {
	db         *gorm.DB
	log        *logger.Logger
	users      repos.UserRepo
	tokens     repos.UserTokenRepo
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(db *gorm.DB, log *logger.Logger, users repos.UserRepo, tokens repos.UserTokenRepo, jwtSecret string, accessTTL, refreshTTL time.Duration) (AuthService, error) {
	if jwtSecret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &authService{
		db:         db,
		log:        log.With("service", "AuthService"),
		users:      users,
		tokens:     tokens,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

func (as *authService) Register(dbc dbctx.Context, email, password, displayName string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	displayName = strings.TrimSpace(displayName)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email required", pkgerrors.ErrInvalidArgument)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", pkgerrors.ErrInvalidArgument)
	}

	if _, err := as.users.GetByEmail(dbc, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", pkgerrors.ErrInvalidArgument)
	} else if !errors.Is(err, pkgerrors.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := as.users.Create(dbc, []*domain.User{{
		ID:          uuid.New(),
		Email:       email,
		Password:    string(hashed),
		DisplayName: displayName,
	}})
	if err != nil {
		return nil, err
	}
	as.log.Info("user registered", "user_id", created[0].ID.String())
	return created[0], nil
}

func (as *authService) Login(dbc dbctx.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := as.users.GetByEmail(dbc, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, nil, pkgerrors.ErrUnauthorized
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, nil, pkgerrors.ErrUnauthorized
	}

	var pair *TokenPair
	err = as.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if derr := as.tokens.DeleteByUserID(txc, user.ID); derr != nil {
			return derr
		}
		p, ierr := as.issueTokens(txc, user)
		if ierr != nil {
			return ierr
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (as *authService) Refresh(dbc dbctx.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token required", pkgerrors.ErrInvalidArgument)
	}

	var pair *TokenPair
	err := as.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}

		existing, ferr := as.tokens.GetByRefreshToken(txc, refreshToken)
		if ferr != nil {
			if errors.Is(ferr, pkgerrors.ErrNotFound) {
				return pkgerrors.ErrUnauthorized
			}
			return ferr
		}
		if existing.ExpiresAt.Before(time.Now().UTC()) {
			_ = as.tokens.DeleteByUserID(txc, existing.UserID)
			return pkgerrors.ErrUnauthorized
		}

		user, uerr := as.users.GetByID(txc, existing.UserID)
		if uerr != nil {
			return uerr
		}

		// Rotate: old refresh token is single use.
		if derr := as.tokens.DeleteByUserID(txc, user.ID); derr != nil {
			return derr
		}
		p, ierr := as.issueTokens(txc, user)
		if ierr != nil {
			return ierr
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (as *authService) Logout(dbc dbctx.Context, userID uuid.UUID) error {
	return as.tokens.DeleteByUserID(dbc, userID)
}

func (as *authService) issueTokens(dbc dbctx.Context, user *domain.User) (*TokenPair, error) {
	access, err := as.signAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh := uuid.New().String()
	expiresAt := time.Now().UTC().Add(as.refreshTTL)

	if _, err := as.tokens.Create(dbc, &domain.UserToken{
		ID:           uuid.New(),
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}, nil
}

func (as *authService) signAccessToken(userID uuid.UUID) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.jwtSecret)
}

func (as *authService) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return as.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, pkgerrors.ErrUnauthorized
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, pkgerrors.ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, pkgerrors.ErrUnauthorized
	}
	return userID, nil
}

func (as *authService) AccessTTL() time.Duration { return as.accessTTL }
