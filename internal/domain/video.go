package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Analysis status transitions: pending -> processing -> completed|failed,
// completed -> vectorized once embeddings are indexed.
const (
	VideoStatusPending    = "pending"
	VideoStatusProcessing = "processing"
	VideoStatusCompleted  = "completed"
	VideoStatusFailed     = "failed"
	VideoStatusVectorized = "vectorized"
)

type Video struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	VideoURL     string `gorm:"type:text;not null;index" json:"video_url"`
	ThumbnailURL string `gorm:"type:text;not null;default:''" json:"thumbnail_url,omitempty"`
	Caption      string `gorm:"type:text;not null;default:''" json:"caption"`

	AnalysisStatus    string         `gorm:"type:text;not null;default:'pending';index" json:"analysis_status"`
	AnalysisError     string         `gorm:"type:text;not null;default:''" json:"analysis_error,omitempty"`
	HealthImpactScore float64        `gorm:"not null;default:0" json:"health_impact_score"`
	HealthAnalysis    datatypes.JSON `gorm:"type:jsonb" json:"health_analysis,omitempty"`
	ContentCategories datatypes.JSON `gorm:"type:jsonb" json:"content_categories,omitempty"`

	VectorID       string         `gorm:"type:text;not null;default:'';index" json:"vector_id,omitempty"`
	VectorMetadata datatypes.JSON `gorm:"type:jsonb" json:"vector_metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now();index" json:"updated_at"`
}

func (Video) TableName() string { return "videos" }
