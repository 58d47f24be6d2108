package model

import (
	"time"

	"github.com/google/uuid"
)

// Message ids are UUIDv7, so ordering by (timestamp, id) follows insertion
// order when two messages share a timestamp.
type Message struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_session_ts,priority:1"`
	SenderId  string    `gorm:"type:varchar(64);not null"`
	Content   string    `gorm:"type:text;not null"`
	Timestamp time.Time `gorm:"not null;index:idx_messages_session_ts,priority:2"`
	IsRead    bool      `gorm:"not null"`
}

func (Message) TableName() string {
	return "messages"
}
