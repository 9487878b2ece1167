package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is one chat turn inside a session.
type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID string    `gorm:"type:text;not null;index" json:"session_id"`

	Role     string `gorm:"type:text;not null" json:"role"` // user|assistant
	MsgType  string `gorm:"type:text;not null;default:'text'" json:"type"`
	Content  string `gorm:"type:text;not null" json:"content"`
	Sequence int    `gorm:"not null;default:0" json:"sequence"`
	SenderID string `gorm:"type:text;not null;default:''" json:"sender_id"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (Message) TableName() string { return "messages" }
