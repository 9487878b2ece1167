package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/vitality-backend/internal/data/repos"
	"github.com/yungbote/vitality-backend/internal/domain"
	"github.com/yungbote/vitality-backend/internal/pkg/dbctx"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
	"github.com/yungbote/vitality-backend/internal/recommend"
)

// InteractionGraph is the slice of the graph store the recommender needs.
type InteractionGraph interface {
	RecentVideoIDs(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error)
	NeighborVideoIDs(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error)
}

// SimilaritySearcher is the slice of the vector service the recommender needs.
type SimilaritySearcher interface {
	SearchByVideoID(dbc dbctx.Context, videoID uuid.UUID, limit int) ([]VectorMatch, error)
}

// RecommendedVideo pairs a hydrated video row with its merged score.
type RecommendedVideo struct {
	Video *domain.Video `json:"video"`
	Score float64       `json:"score"`
}

type RecommendationService interface {
	HybridRecommendations(dbc dbctx.Context, userID uuid.UUID, count int, graphWeight float64) ([]RecommendedVideo, error)
}

type recommendationService struct {
	log    *logger.Logger
	graph  InteractionGraph
	search SimilaritySearcher
	videos repos.VideoRepo
}

func NewRecommendationService(log *logger.Logger, graph InteractionGraph, search SimilaritySearcher, videos repos.VideoRepo) RecommendationService {
	return &recommendationService{
		log:    log.With("service", "RecommendationService"),
		graph:  graph,
		search: search,
		videos: videos,
	}
}

// HybridRecommendations blends the interaction-graph neighborhood with
// vector similarity seeded by the user's most recent interaction. Either
// upstream failing degrades to an empty contribution from that source; both
// empty yields an empty list.
func (s *recommendationService) HybridRecommendations(dbc dbctx.Context, userID uuid.UUID, count int, graphWeight float64) ([]RecommendedVideo, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user id")
	}
	if count <= 0 {
		return []RecommendedVideo{}, nil
	}

	recent, err := s.graph.RecentVideoIDs(dbc.Ctx, userID, 1)
	if err != nil {
		s.log.Warn("recent interactions unavailable", "user_id", userID.String(), "error", err)
		recent = nil
	}
	if len(recent) == 0 {
		return []RecommendedVideo{}, nil
	}
	seedVideoID := recent[0]

	var (
		graphIDs []uuid.UUID
		similar  []VectorMatch
	)

	g, gctx := errgroup.WithContext(dbc.Ctx)
	g.Go(func() error {
		ids, gerr := s.graph.NeighborVideoIDs(gctx, userID, count)
		if gerr != nil {
			s.log.Warn("graph recommendations degraded", "user_id", userID.String(), "error", gerr)
			return nil
		}
		graphIDs = ids
		return nil
	})
	g.Go(func() error {
		matches, serr := s.search.SearchByVideoID(dbctx.Context{Ctx: gctx, Tx: dbc.Tx}, seedVideoID, count)
		if serr != nil {
			s.log.Warn("similarity recommendations degraded", "user_id", userID.String(), "error", serr)
			return nil
		}
		similar = matches
		return nil
	})
	_ = g.Wait()

	graphRanked := make([]string, 0, len(graphIDs))
	for _, id := range graphIDs {
		graphRanked = append(graphRanked, id.String())
	}
	simRanked := make([]recommend.RankedItem, 0, len(similar))
	for _, m := range similar {
		simRanked = append(simRanked, recommend.RankedItem{ID: m.ID, Score: m.Score})
	}

	merged := recommend.Merge(graphRanked, simRanked, graphWeight, count)
	if len(merged) == 0 {
		return []RecommendedVideo{}, nil
	}

	ids := make([]uuid.UUID, 0, len(merged))
	for _, item := range merged {
		id, perr := uuid.Parse(item.ID)
		if perr != nil {
			continue
		}
		ids = append(ids, id)
	}

	rows, err := s.videos.GetByIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate recommendations: %w", err)
	}
	byID := make(map[string]*domain.Video, len(rows))
	for _, v := range rows {
		byID[v.ID.String()] = v
	}

	// Merge order wins; IDs that no longer resolve to a row are skipped.
	out := make([]RecommendedVideo, 0, len(merged))
	for _, item := range merged {
		v, ok := byID[item.ID]
		if !ok {
			continue
		}
		out = append(out, RecommendedVideo{Video: v, Score: item.Score})
	}
	return out, nil
}
