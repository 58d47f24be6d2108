package entity

import (
	"time"

	"github.com/google/uuid"
)

type EscalationReason string

const (
	EscalationEmergencyPriority EscalationReason = "EMERGENCY_PRIORITY"
	EscalationRedSeverity       EscalationReason = "RED_SEVERITY"
)

// Escalation asks the institute on-call desk to look at a session. It names
// the session and institute only.
type Escalation struct {
	SessionId   uuid.UUID        `json:"session_id"`
	InstituteId string           `json:"institute_id"`
	Reason      EscalationReason `json:"reason"`
	Severity    Severity         `json:"severity"`
	Priority    Priority         `json:"priority"`
	RaisedAt    time.Time        `json:"raised_at"`
}

func NewEscalation(s *Session, reason EscalationReason, now time.Time) Escalation {
	return Escalation{
		SessionId:   s.Id,
		InstituteId: s.InstituteId,
		Reason:      reason,
		Severity:    s.Severity,
		Priority:    s.CounselorPriority,
		RaisedAt:    now,
	}
}
