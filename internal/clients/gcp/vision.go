package gcp

import (
	"context"
	"fmt"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/yungbote/vitality-backend/internal/pkg/ctxutil"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

type Vision interface {
	AnnotateImageBytes(ctx context.Context, img []byte) (*ImageAnnotation, error)
	AnnotateImageGCS(ctx context.Context, gcsURI string) (*ImageAnnotation, error)
	Close() error
}

type ImageLabel struct {
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

type SafeSearch struct {
	Adult    string `json:"adult"`
	Violence string `json:"violence"`
	Racy     string `json:"racy"`
	Medical  string `json:"medical"`
}

type ImageAnnotation struct {
	Provider   string       `json:"provider"`
	SourceURI  string       `json:"source_uri,omitempty"`
	Labels     []ImageLabel `json:"labels"`
	Objects    []ImageLabel `json:"objects,omitempty"`
	SafeSearch *SafeSearch  `json:"safe_search,omitempty"`
}

type visionService struct {
	log    *logger.Logger
	client *vision.ImageAnnotatorClient
}

func NewVision(log *logger.Logger) (Vision, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.Vision")

	ctx := context.Background()
	opts := ClientOptionsFromEnv()

	c, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}

	return &visionService{log: slog, client: c}, nil
}

func (s *visionService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *visionService) AnnotateImageBytes(ctx context.Context, img []byte) (*ImageAnnotation, error) {
	if len(img) == 0 {
		return &ImageAnnotation{Provider: "gcp_vision", Labels: []ImageLabel{}}, nil
	}
	return s.annotate(ctx, &visionpb.Image{Content: img}, "")
}

func (s *visionService) AnnotateImageGCS(ctx context.Context, gcsURI string) (*ImageAnnotation, error) {
	if _, _, err := ParseGCSURI(gcsURI); err != nil {
		return nil, err
	}
	img := &visionpb.Image{
		Source: &visionpb.ImageSource{GcsImageUri: gcsURI},
	}
	return s.annotate(ctx, img, gcsURI)
}

func (s *visionService) annotate(ctx context.Context, img *visionpb.Image, sourceURI string) (*ImageAnnotation, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	req := &visionpb.AnnotateImageRequest{
		Image: img,
		Features: []*visionpb.Feature{
			{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: 20},
			{Type: visionpb.Feature_OBJECT_LOCALIZATION, MaxResults: 20},
			{Type: visionpb.Feature_SAFE_SEARCH_DETECTION},
		},
	}

	br := &visionpb.BatchAnnotateImagesRequest{Requests: []*visionpb.AnnotateImageRequest{req}}
	resp, err := s.client.BatchAnnotateImages(ctx, br)
	if err != nil {
		return nil, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return &ImageAnnotation{Provider: "gcp_vision", SourceURI: sourceURI, Labels: []ImageLabel{}}, nil
	}

	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}

	out := &ImageAnnotation{
		Provider:  "gcp_vision",
		SourceURI: sourceURI,
		Labels:    make([]ImageLabel, 0, len(r0.LabelAnnotations)),
	}

	for _, la := range r0.LabelAnnotations {
		if la == nil || la.Description == "" {
			continue
		}
		out.Labels = append(out.Labels, ImageLabel{
			Description: la.Description,
			Confidence:  float64(la.Score),
		})
	}
	for _, obj := range r0.LocalizedObjectAnnotations {
		if obj == nil || obj.Name == "" {
			continue
		}
		out.Objects = append(out.Objects, ImageLabel{
			Description: obj.Name,
			Confidence:  float64(obj.Score),
		})
	}
	if ssa := r0.SafeSearchAnnotation; ssa != nil {
		out.SafeSearch = &SafeSearch{
			Adult:    ssa.Adult.String(),
			Violence: ssa.Violence.String(),
			Racy:     ssa.Racy.String(),
			Medical:  ssa.Medical.String(),
		}
	}

	return out, nil
}
