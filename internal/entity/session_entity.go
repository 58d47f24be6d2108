package entity

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusClosed SessionStatus = "closed"
)

func (s SessionStatus) IsValid() bool {
	return s == SessionStatusActive || s == SessionStatusClosed
}

type Severity string

const (
	SeverityPending Severity = "Pending"
	SeverityGreen   Severity = "Green"
	SeverityYellow  Severity = "Yellow"
	SeverityRed     Severity = "Red"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityPending, SeverityGreen, SeverityYellow, SeverityRed:
		return true
	}
	return false
}

type Priority string

const (
	PriorityNormal    Priority = "Normal"
	PriorityCritical  Priority = "Critical"
	PriorityEmergency Priority = "Emergency"
)

func (p Priority) IsValid() bool {
	return p.Rank() > 0
}

// Rank orders priorities by urgency; 0 means unknown.
func (p Priority) Rank() int {
	switch p {
	case PriorityNormal:
		return 1
	case PriorityCritical:
		return 2
	case PriorityEmergency:
		return 3
	}
	return 0
}

// ReviewState separates sessions a counselor has tagged from untouched ones
// without disturbing the active/closed lifecycle.
type ReviewState string

const (
	ReviewStateUntouched ReviewState = "untouched"
	ReviewStateReviewed  ReviewState = "reviewed"
)

type Session struct {
	Id                uuid.UUID
	StarterId         string
	CounselorId       string
	InstituteId       string
	Status            SessionStatus
	IsAnonymous       bool
	Severity          Severity
	ProblemType       *string
	IssueTags         []string
	CounselorPriority Priority
	IsReported        bool
	ReviewState       ReviewState
	Participants      []string
	TaggedAt          *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewSession builds the record stored on first contact between a pair.
func NewSession(starterId, counselorId, instituteId string, now time.Time) *Session {
	return &Session{
		Id:                uuid.New(),
		StarterId:         starterId,
		CounselorId:       counselorId,
		InstituteId:       instituteId,
		Status:            SessionStatusActive,
		IsAnonymous:       true,
		Severity:          SeverityPending,
		IssueTags:         []string{},
		CounselorPriority: PriorityNormal,
		ReviewState:       ReviewStateUntouched,
		Participants:      []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// HasParticipant covers the pair and any counselor added by tagging.
func (s *Session) HasParticipant(participantId string) bool {
	if s.StarterId == participantId || s.CounselorId == participantId {
		return true
	}
	for _, p := range s.Participants {
		if p == participantId {
			return true
		}
	}
	return false
}

// IsAlive reports whether the session is still inside its retention window.
func (s *Session) IsAlive(now time.Time, ttl time.Duration) bool {
	return !s.UpdatedAt.Before(AliveCutoff(now, ttl))
}

// AliveCutoff is the single definition of expiry: a session whose
// UpdatedAt is before the cutoff is dead, whether or not the reaper has
// already removed it.
func AliveCutoff(now time.Time, ttl time.Duration) time.Time {
	return now.Add(-ttl)
}

// NormalizeId trims the opaque participant/session identifiers coming from
// the boundary. USNs, staff login codes and account ids share one key space.
func NormalizeId(id string) string {
	return strings.TrimSpace(id)
}

// NormalizeTags deduplicates and sorts a tag list so that stored tag sets
// compare equal regardless of input order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
