package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByPair matches the role-fixed (starter, counselor) pair.
type ByPair struct {
	StarterId   string
	CounselorId string
}

func (s ByPair) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("starter_id = ? AND counselor_id = ?", s.StarterId, s.CounselorId)
}

type WithStatus struct {
	Status string
}

func (s WithStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// InvolvingParticipant matches sessions where the id is the starter or the counselor.
type InvolvingParticipant struct {
	ParticipantId string
}

func (s InvolvingParticipant) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("(starter_id = ? OR counselor_id = ?)", s.ParticipantId, s.ParticipantId)
}

// AliveAfter keeps sessions updated at or after the expiry cutoff.
type AliveAfter struct {
	Cutoff time.Time
}

func (s AliveAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("updated_at >= ?", s.Cutoff)
}

// ExpiredAt selects sessions the reaper must remove.
type ExpiredAt struct {
	Cutoff time.Time
}

func (s ExpiredAt) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("updated_at < ?", s.Cutoff)
}

// WithAnnotations loads the tag and participant sets.
type WithAnnotations struct{}

func (s WithAnnotations) Apply(db *gorm.DB) *gorm.DB {
	return db.Preload("Tags").Preload("Participants")
}

type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type NotSentBy struct {
	SenderId string
}

func (s NotSentBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("sender_id <> ?", s.SenderId)
}
