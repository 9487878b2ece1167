package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	vipb "cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/yungbote/vitality-backend/internal/pkg/ctxutil"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

type Video interface {
	AnnotateVideoGCS(ctx context.Context, gcsURI string, cfg VideoConfig) (*VideoAnnotation, error)
	Close() error
}

type VideoConfig struct {
	EnableLabelDetection    bool
	EnableExplicitDetection bool
	EnableTextDetection     bool
}

type VideoLabel struct {
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

type ExplicitFrame struct {
	TimestampSec float64 `json:"timestamp_sec"`
	Likelihood   string  `json:"likelihood"`
}

type VideoAnnotation struct {
	Provider       string          `json:"provider"`
	SourceURI      string          `json:"source_uri"`
	Labels         []VideoLabel    `json:"labels"`
	ExplicitFrames []ExplicitFrame `json:"explicit_content,omitempty"`
	OnScreenText   []string        `json:"on_screen_text,omitempty"`
	Warnings       []string        `json:"warnings,omitempty"`
}

type videoService struct {
	log        *logger.Logger
	client     *videointelligence.Client
	maxRetries int
	timeout    time.Duration
}

func NewVideo(log *logger.Logger) (Video, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.Video")

	ctx := context.Background()
	opts := ClientOptionsFromEnv()

	c, err := videointelligence.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("videointelligence client: %w", err)
	}

	return &videoService{
		log:        slog,
		client:     c,
		maxRetries: 4,
		timeout:    8 * time.Minute,
	}, nil
}

func (s *videoService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *videoService) AnnotateVideoGCS(ctx context.Context, gcsURI string, cfg VideoConfig) (*VideoAnnotation, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if !strings.HasPrefix(gcsURI, "gs://") {
		return nil, fmt.Errorf("gcsURI must be gs://... got %q", gcsURI)
	}

	if !cfg.EnableLabelDetection && !cfg.EnableExplicitDetection && !cfg.EnableTextDetection {
		cfg.EnableLabelDetection = true
		cfg.EnableExplicitDetection = true
	}

	features := []vipb.Feature{}
	if cfg.EnableLabelDetection {
		features = append(features, vipb.Feature_LABEL_DETECTION)
	}
	if cfg.EnableExplicitDetection {
		features = append(features, vipb.Feature_EXPLICIT_CONTENT_DETECTION)
	}
	if cfg.EnableTextDetection {
		features = append(features, vipb.Feature_TEXT_DETECTION)
	}

	req := &vipb.AnnotateVideoRequest{
		InputUri: gcsURI,
		Features: features,
	}

	resp, err := s.retryAnnotate(ctx, func() (*vipb.AnnotateVideoResponse, error) {
		op, err := s.client.AnnotateVideo(ctx, req)
		if err != nil {
			return nil, err
		}
		return op.Wait(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("videointelligence AnnotateVideo: %w", err)
	}

	out := &VideoAnnotation{
		Provider:  "gcp_videointelligence",
		SourceURI: gcsURI,
		Labels:    []VideoLabel{},
	}

	if resp == nil || len(resp.AnnotationResults) == 0 || resp.AnnotationResults[0] == nil {
		out.Warnings = append(out.Warnings, "no annotation results")
		return out, nil
	}

	ar := resp.AnnotationResults[0]

	for _, label := range ar.SegmentLabelAnnotations {
		if label == nil || label.Entity == nil {
			continue
		}
		conf := 0.0
		if len(label.Segments) > 0 && label.Segments[0] != nil {
			conf = float64(label.Segments[0].Confidence)
		}
		out.Labels = append(out.Labels, VideoLabel{
			Description: label.Entity.Description,
			Confidence:  conf,
		})
	}

	if ar.ExplicitAnnotation != nil {
		for _, frame := range ar.ExplicitAnnotation.Frames {
			if frame == nil {
				continue
			}
			out.ExplicitFrames = append(out.ExplicitFrames, ExplicitFrame{
				TimestampSec: durToSec(frame.TimeOffset),
				Likelihood:   frame.PornographyLikelihood.String(),
			})
		}
	}

	for _, ta := range ar.TextAnnotations {
		if ta == nil {
			continue
		}
		txt := strings.TrimSpace(ta.Text)
		if txt != "" {
			out.OnScreenText = append(out.OnScreenText, txt)
		}
	}

	return out, nil
}

func durToSec(d *durationpb.Duration) float64 {
	if d == nil {
		return 0
	}
	return float64(d.Seconds) + float64(d.Nanos)/1e9
}

func (s *videoService) retryAnnotate(ctx context.Context, fn func() (*vipb.AnnotateVideoResponse, error)) (*vipb.AnnotateVideoResponse, error) {
	backoff := 750 * time.Millisecond
	var last error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		last = err

		code := status.Code(err)
		if code != codes.Unavailable && code != codes.ResourceExhausted && code != codes.DeadlineExceeded {
			return nil, err
		}
		if attempt == s.maxRetries {
			break
		}

		time.Sleep(backoff)
		backoff *= 2
		if backoff > 10*time.Second {
			backoff = 10 * time.Second
		}
	}
	return nil, last
}
