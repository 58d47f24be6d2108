package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	StarterId   string `json:"starterId" validate:"required,notblank"`
	CounselorId string `json:"counselorId" validate:"required,notblank"`
	InstituteId string `json:"instituteId"`
}

// UpdateSessionRequest is a sparse clinical update; absent keys are left
// untouched and problemType:null clears the field.
type UpdateSessionRequest struct {
	SessionId   string        `json:"sessionId" validate:"required,uuid"`
	Severity    Field[string] `json:"severity" validate:"omitempty,severity"`
	ProblemType Field[string] `json:"problemType"`
	IsReported  Field[bool]   `json:"isReported"`
}

type CloseSessionRequest struct {
	SessionId string `json:"sessionId" validate:"required,uuid"`
}

type SendMessageRequest struct {
	SessionId string `json:"sessionId" validate:"required,uuid"`
	SenderId  string `json:"senderId" validate:"required,notblank"`
	Content   string `json:"content" validate:"required,notblank,max=4000"`
}

type MarkReadRequest struct {
	SessionId string `json:"sessionId" validate:"required,uuid"`
	ReaderId  string `json:"readerId" validate:"required,notblank"`
}

type ChatTagSessionRequest struct {
	SessionId string   `json:"sessionId" validate:"required,uuid"`
	IssueTags []string `json:"issueTags" validate:"required,dive,issuetag"`
	Status    string   `json:"status" validate:"omitempty,oneof=active closed"`
}

type InstituteTagSessionRequest struct {
	SessionId   string   `json:"sessionId" validate:"required,uuid"`
	IssueTags   []string `json:"issueTags" validate:"required,min=1,dive,issuetag"`
	CounselorId string   `json:"counselorId" validate:"required,notblank"`
	Priority    string   `json:"priority" validate:"required,priority"`
}

type SessionResponse struct {
	Id                uuid.UUID  `json:"id"`
	StarterId         string     `json:"starterId"`
	CounselorId       string     `json:"counselorId"`
	InstituteId       string     `json:"instituteId,omitempty"`
	Status            string     `json:"status"`
	IsAnonymous       bool       `json:"isAnonymous"`
	Severity          string     `json:"severity"`
	ProblemType       *string    `json:"problemType"`
	IssueTags         []string   `json:"issueTags"`
	CounselorPriority string     `json:"counselorPriority"`
	IsReported        bool       `json:"isReported"`
	ReviewState       string     `json:"reviewState"`
	Participants      []string   `json:"participants"`
	TaggedAt          *time.Time `json:"taggedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type MessageResponse struct {
	Id        uuid.UUID `json:"id"`
	SessionId uuid.UUID `json:"sessionId"`
	SenderId  string    `json:"senderId"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsRead    bool      `json:"isRead"`
}

type MarkReadResponse struct {
	Marked int64 `json:"marked"`
}
