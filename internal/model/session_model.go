package model

import (
	"time"

	"github.com/google/uuid"
)

// Session timestamps are written by the services from an injected clock,
// so GORM's automatic time tracking is switched off.
type Session struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey"`
	StarterId         string    `gorm:"type:varchar(64);not null;index:idx_sessions_starter"`
	CounselorId       string    `gorm:"type:varchar(64);not null;index:idx_sessions_counselor"`
	InstituteId       string    `gorm:"type:varchar(64);not null;index:idx_sessions_institute"`
	Status            string    `gorm:"type:varchar(16);not null"`
	IsAnonymous       bool      `gorm:"not null"`
	Severity          string    `gorm:"type:varchar(16);not null"`
	ProblemType       *string   `gorm:"type:varchar(128)"`
	CounselorPriority string    `gorm:"type:varchar(16);not null"`
	IsReported        bool      `gorm:"not null"`
	ReviewState       string    `gorm:"type:varchar(16);not null"`
	TaggedAt          *time.Time
	CreatedAt         time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt         time.Time `gorm:"not null;index:idx_sessions_updated_at;autoUpdateTime:false"`

	Tags         []SessionTag         `gorm:"foreignKey:SessionId;constraint:OnDelete:CASCADE"`
	Participants []SessionParticipant `gorm:"foreignKey:SessionId;constraint:OnDelete:CASCADE"`
	Messages     []Message            `gorm:"foreignKey:SessionId;constraint:OnDelete:CASCADE"`
}

func (Session) TableName() string {
	return "sessions"
}

type SessionTag struct {
	SessionId uuid.UUID `gorm:"type:uuid;primaryKey"`
	Tag       string    `gorm:"type:varchar(64);primaryKey;index:idx_session_tags_tag"`
}

func (SessionTag) TableName() string {
	return "session_tags"
}

type SessionParticipant struct {
	SessionId     uuid.UUID `gorm:"type:uuid;primaryKey"`
	ParticipantId string    `gorm:"type:varchar(64);primaryKey"`
}

func (SessionParticipant) TableName() string {
	return "session_participants"
}
