package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Report is the persisted output of a research agent run for one product.
type Report struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	ProductID    string `gorm:"type:text;not null;index" json:"product_id"`
	ProductTitle string `gorm:"type:text;not null" json:"product_title"`
	ProductURL   string `gorm:"type:text;not null;default:''" json:"product_url"`

	Research      datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"research"`
	SearchResults datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"search_results"`

	VectorID string `gorm:"type:text;not null;default:'';index" json:"vector_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (Report) TableName() string { return "reports" }

const (
	ResearchStatusInProgress = "in_progress"
	ResearchStatusCompleted  = "completed"
	ResearchStatusError      = "error"
)

// ResearchRun tracks a background product-comparison task.
type ResearchRun struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Status   string         `gorm:"type:text;not null;default:'in_progress';index" json:"status"`
	Products datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"products"`
	Results  datatypes.JSON `gorm:"type:jsonb" json:"results,omitempty"`
	Error    string         `gorm:"type:text;not null;default:''" json:"error,omitempty"`

	StartedAt time.Time `gorm:"not null;default:now()" json:"started_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ResearchRun) TableName() string { return "research_runs" }
