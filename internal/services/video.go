package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/vitality-backend/internal/clients/gcp"
	"github.com/yungbote/vitality-backend/internal/data/repos"
	"github.com/yungbote/vitality-backend/internal/domain"
	"github.com/yungbote/vitality-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/vitality-backend/internal/pkg/errors"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

// VideoService owns the analysis pipeline: annotate, score, vectorize.
type VideoService interface {
	Get(dbc dbctx.Context, videoID uuid.UUID) (*domain.Video, error)
	ListForUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*domain.Video, error)

	// AnalyzeByURL finds (or registers) the video row for a gs:// URI owned
	// by requester and runs the analysis pipeline on it.
	AnalyzeByURL(dbc dbctx.Context, requesterID uuid.UUID, videoURL, caption, thumbnailURL string) (*domain.Video, error)
	Analyze(dbc dbctx.Context, requesterID, videoID uuid.UUID) (*domain.Video, error)
	Vectorize(dbc dbctx.Context, requesterID, videoID uuid.UUID) (*domain.Video, error)

	Update(dbc dbctx.Context, requesterID, videoID uuid.UUID, updates VideoUpdate) (*domain.Video, error)
	Search(dbc dbctx.Context, query string, limit int) ([]RecommendedVideo, error)
}

// VideoUpdate carries the owner-editable fields.
type VideoUpdate struct {
	Caption      *string `json:"caption,omitempty"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
}

type videoService struct {
	log     *logger.Logger
	videos  repos.VideoRepo
	videoAI gcp.Video
	vision  gcp.Vision
	bucket  gcp.Bucket
	health  HealthService
	vectors VectorService
}

func NewVideoService(log *logger.Logger, videos repos.VideoRepo, videoAI gcp.Video, vision gcp.Vision, bucket gcp.Bucket, health HealthService, vectors VectorService) VideoService {
	return &videoService{
		log:     log.With("service", "VideoService"),
		videos:  videos,
		videoAI: videoAI,
		vision:  vision,
		bucket:  bucket,
		health:  health,
		vectors: vectors,
	}
}

func (s *videoService) Get(dbc dbctx.Context, videoID uuid.UUID) (*domain.Video, error) {
	return s.videos.GetByID(dbc, videoID)
}

func (s *videoService) ListForUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*domain.Video, error) {
	return s.videos.ListByUser(dbc, userID, limit)
}

func (s *videoService) AnalyzeByURL(dbc dbctx.Context, requesterID uuid.UUID, videoURL, caption, thumbnailURL string) (*domain.Video, error) {
	videoURL = strings.TrimSpace(videoURL)
	if !strings.HasPrefix(videoURL, "gs://") {
		return nil, fmt.Errorf("%w: video_url must be a gs:// URI", pkgerrors.ErrInvalidArgument)
	}
	if s.bucket != nil {
		exists, berr := s.bucket.ObjectExists(dbc.Ctx, videoURL)
		if berr != nil {
			s.log.Warn("object existence check failed", "video_url", videoURL, "error", berr)
		} else if !exists {
			return nil, fmt.Errorf("%w: no object at %s", pkgerrors.ErrInvalidArgument, videoURL)
		}
	}

	video, err := s.videos.GetByURL(dbc, videoURL)
	switch {
	case err == nil:
		if video.UserID != requesterID {
			return nil, pkgerrors.ErrForbidden
		}
	case errors.Is(err, pkgerrors.ErrNotFound):
		created, cerr := s.videos.Create(dbc, []*domain.Video{{
			ID:             uuid.New(),
			UserID:         requesterID,
			VideoURL:       videoURL,
			ThumbnailURL:   thumbnailURL,
			Caption:        caption,
			AnalysisStatus: domain.VideoStatusPending,
		}})
		if cerr != nil {
			return nil, cerr
		}
		video = created[0]
	default:
		return nil, err
	}

	return s.analyze(dbc, video)
}

func (s *videoService) Analyze(dbc dbctx.Context, requesterID, videoID uuid.UUID) (*domain.Video, error) {
	video, err := s.videos.GetByID(dbc, videoID)
	if err != nil {
		return nil, err
	}
	if video.UserID != requesterID {
		return nil, pkgerrors.ErrForbidden
	}
	return s.analyze(dbc, video)
}

func (s *videoService) analyze(dbc dbctx.Context, video *domain.Video) (*domain.Video, error) {
	if err := s.videos.UpdateFields(dbc, video.ID, map[string]interface{}{
		"analysis_status": domain.VideoStatusProcessing,
		"analysis_error":  "",
	}); err != nil {
		return nil, err
	}

	result, err := s.runPipeline(dbc, video)
	if err != nil {
		s.log.Error("video analysis failed", "video_id", video.ID.String(), "error", err)
		_ = s.videos.UpdateFields(dbc, video.ID, map[string]interface{}{
			"analysis_status": domain.VideoStatusFailed,
			"analysis_error":  err.Error(),
		})
		return nil, err
	}

	if err := s.videos.UpdateFields(dbc, video.ID, map[string]interface{}{
		"analysis_status":     domain.VideoStatusCompleted,
		"analysis_error":      "",
		"health_impact_score": result.score,
		"health_analysis":     result.healthJSON,
		"content_categories":  result.categoriesJSON,
	}); err != nil {
		return nil, err
	}

	return s.videos.GetByID(dbc, video.ID)
}

type pipelineResult struct {
	score          float64
	healthJSON     datatypes.JSON
	categoriesJSON datatypes.JSON
}

func (s *videoService) runPipeline(dbc dbctx.Context, video *domain.Video) (*pipelineResult, error) {
	var (
		annotation *gcp.VideoAnnotation
		thumb      *gcp.ImageAnnotation
	)

	g, gctx := errgroup.WithContext(dbc.Ctx)
	g.Go(func() error {
		res, err := s.videoAI.AnnotateVideoGCS(gctx, video.VideoURL, gcp.VideoConfig{
			EnableLabelDetection:    true,
			EnableExplicitDetection: true,
			EnableTextDetection:     true,
		})
		if err != nil {
			return fmt.Errorf("video annotation: %w", err)
		}
		annotation = res
		return nil
	})
	if s.vision != nil && strings.HasPrefix(video.ThumbnailURL, "gs://") {
		g.Go(func() error {
			res, err := s.vision.AnnotateImageGCS(gctx, video.ThumbnailURL)
			if err != nil {
				// Thumbnail annotation enriches, never gates.
				s.log.Warn("thumbnail annotation failed", "video_id", video.ID.String(), "error", err)
				return nil
			}
			thumb = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	categories := buildContentCategories(annotation, thumb)

	analysisInput := map[string]any{
		"labels":             annotation.Labels,
		"explicit_content":   annotation.ExplicitFrames,
		"on_screen_text":     annotation.OnScreenText,
		"content_categories": categories,
		"caption":            video.Caption,
	}

	score, health, err := s.health.AnalyzeHealthImpact(dbc.Ctx, analysisInput)
	if err != nil {
		return nil, err
	}

	healthJSON, err := json.Marshal(health)
	if err != nil {
		return nil, err
	}
	categoriesJSON, err := json.Marshal(categories)
	if err != nil {
		return nil, err
	}

	return &pipelineResult{
		score:          score,
		healthJSON:     datatypes.JSON(healthJSON),
		categoriesJSON: datatypes.JSON(categoriesJSON),
	}, nil
}

// buildContentCategories folds the two annotation sources into the
// content_categories payload. The top video label becomes the primary
// category; the thumbnail labels drive environment categorization.
func buildContentCategories(annotation *gcp.VideoAnnotation, thumb *gcp.ImageAnnotation) domain.ContentCategories {
	out := domain.ContentCategories{Environment: "unknown"}
	if annotation == nil {
		return out
	}

	activities := make([]domain.DetectedActivity, 0, len(annotation.Labels))
	var top *gcp.VideoLabel
	for i, label := range annotation.Labels {
		activities = append(activities, domain.DetectedActivity{
			Label:      label.Description,
			Confidence: label.Confidence,
		})
		if top == nil || label.Confidence > top.Confidence {
			top = &annotation.Labels[i]
		}
	}
	out.Activities = activities
	if top != nil {
		out.PrimaryCategory = strings.ToLower(top.Description)
	}

	if thumb != nil {
		labels := make([]string, 0, len(thumb.Labels))
		for _, l := range thumb.Labels {
			labels = append(labels, l.Description)
		}
		out.Environment = CategorizeEnvironment(labels)

		for _, obj := range thumb.Objects {
			out.Objects = append(out.Objects, obj.Description)
		}
		if thumb.SafeSearch != nil {
			out.SafetyAssessment = map[string]string{
				"violence": thumb.SafeSearch.Violence,
				"medical":  thumb.SafeSearch.Medical,
			}
		}
	}
	return out
}

func (s *videoService) Vectorize(dbc dbctx.Context, requesterID, videoID uuid.UUID) (*domain.Video, error) {
	video, err := s.videos.GetByID(dbc, videoID)
	if err != nil {
		return nil, err
	}
	if video.UserID != requesterID {
		return nil, pkgerrors.ErrForbidden
	}
	if video.AnalysisStatus != domain.VideoStatusCompleted && video.AnalysisStatus != domain.VideoStatusVectorized {
		return nil, fmt.Errorf("%w: video %s is %s, analysis must complete before vectorizing",
			pkgerrors.ErrInvalidArgument, videoID, video.AnalysisStatus)
	}

	vectorID, metadata, err := s.vectors.IndexVideo(dbc, video)
	if err != nil {
		return nil, err
	}

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}
	if err := s.videos.UpdateFields(dbc, video.ID, map[string]interface{}{
		"analysis_status": domain.VideoStatusVectorized,
		"vector_id":       vectorID,
		"vector_metadata": datatypes.JSON(metaJSON),
	}); err != nil {
		return nil, err
	}

	return s.videos.GetByID(dbc, video.ID)
}

func (s *videoService) Update(dbc dbctx.Context, requesterID, videoID uuid.UUID, updates VideoUpdate) (*domain.Video, error) {
	video, err := s.videos.GetByID(dbc, videoID)
	if err != nil {
		return nil, err
	}
	if video.UserID != requesterID {
		return nil, pkgerrors.ErrForbidden
	}

	fields := map[string]interface{}{}
	if updates.Caption != nil {
		fields["caption"] = strings.TrimSpace(*updates.Caption)
	}
	if updates.ThumbnailURL != nil {
		fields["thumbnail_url"] = strings.TrimSpace(*updates.ThumbnailURL)
	}
	if len(fields) == 0 {
		return video, nil
	}

	if err := s.videos.UpdateFields(dbc, video.ID, fields); err != nil {
		return nil, err
	}
	return s.videos.GetByID(dbc, video.ID)
}

func (s *videoService) Search(dbc dbctx.Context, query string, limit int) ([]RecommendedVideo, error) {
	matches, err := s.vectors.SearchSimilar(dbc.Ctx, query, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		id, perr := uuid.Parse(m.ID)
		if perr != nil {
			continue
		}
		ids = append(ids, id)
	}

	rows, err := s.videos.GetByIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Video, len(rows))
	for _, v := range rows {
		byID[v.ID.String()] = v
	}

	out := make([]RecommendedVideo, 0, len(matches))
	for _, m := range matches {
		if v, ok := byID[m.ID]; ok {
			out = append(out, RecommendedVideo{Video: v, Score: m.Score})
		}
	}
	return out, nil
}
