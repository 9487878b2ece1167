package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/vitality-backend/internal/clients/rainforest"
	pkgerrors "github.com/yungbote/vitality-backend/internal/pkg/errors"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

// ProductService resolves supplement recommendations to purchasable
// Amazon listings.
type ProductService interface {
	FindSupplementProducts(ctx context.Context, name, dosage string) ([]rainforest.Product, error)
}

type productService struct {
	log        *logger.Logger
	rainforest rainforest.Client
}

func NewProductService(log *logger.Logger, rf rainforest.Client) ProductService {
	return &productService{
		log:        log.With("service", "ProductService"),
		rainforest: rf,
	}
}

func (s *productService) FindSupplementProducts(ctx context.Context, name, dosage string) ([]rainforest.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: supplement name required", pkgerrors.ErrInvalidArgument)
	}
	if s.rainforest == nil {
		return nil, fmt.Errorf("product search not configured")
	}

	query := name + " supplement"
	if dosage = strings.TrimSpace(dosage); dosage != "" {
		query += " " + dosage
	}

	products, err := s.rainforest.SearchProducts(ctx, query, 3)
	if err != nil {
		return nil, fmt.Errorf("product search: %w", err)
	}
	s.log.Info("supplement lookup", "query", query, "results", len(products))
	return products, nil
}
