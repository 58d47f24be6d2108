package service

import (
	"context"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/pkg/apperror"
	"confidential-chat-be/internal/pkg/logger"

	"github.com/google/uuid"
)

type IClinicalService interface {
	Tag(ctx context.Context, req entity.ClinicalTag) (*entity.Session, error)
	UpdateClinicalState(ctx context.Context, sessionId uuid.UUID, patch entity.SessionPatch) (*entity.Session, error)
}

type clinicalService struct {
	sessions    ISessionService
	escalations IEscalationPublisher
	logger      logger.ILogger
	now         Clock
}

func NewClinicalService(
	sessions ISessionService,
	escalations IEscalationPublisher,
	logger logger.ILogger,
	clock Clock,
) IClinicalService {
	return &clinicalService{
		sessions:    sessions,
		escalations: escalations,
		logger:      logger,
		now:         utcClock(clock),
	}
}

// Tag records a counselor's classification. The session keeps its
// active/closed status; it is marked reviewed instead.
func (s *clinicalService) Tag(ctx context.Context, req entity.ClinicalTag) (*entity.Session, error) {
	switch {
	case req.SessionId == uuid.Nil:
		return nil, apperror.Validation("sessionId is required")
	case len(req.IssueTags) == 0:
		return nil, apperror.Validation("issueTags is required")
	case entity.NormalizeId(req.CounselorId) == "":
		return nil, apperror.Validation("counselorId is required")
	case req.Priority == "":
		return nil, apperror.Validation("priority is required")
	}

	session, err := s.sessions.TagSession(ctx, req.SessionId, entity.TagUpdate{
		IssueTags:   req.IssueTags,
		Priority:    entity.Some(req.Priority),
		CounselorId: entity.Some(req.CounselorId),
	})
	if err != nil {
		return nil, err
	}

	if session.CounselorPriority == entity.PriorityEmergency {
		s.escalate(ctx, session, entity.EscalationEmergencyPriority)
	}
	return session, nil
}

func (s *clinicalService) UpdateClinicalState(ctx context.Context, sessionId uuid.UUID, patch entity.SessionPatch) (*entity.Session, error) {
	session, err := s.sessions.UpdateClinicalState(ctx, sessionId, patch)
	if err != nil {
		return nil, err
	}

	if patch.Severity.Set && session.Severity == entity.SeverityRed {
		s.escalate(ctx, session, entity.EscalationRedSeverity)
	}
	return session, nil
}

// escalate is best effort; the write it follows has already committed.
func (s *clinicalService) escalate(ctx context.Context, session *entity.Session, reason entity.EscalationReason) {
	if s.escalations == nil {
		return
	}
	if err := s.escalations.Publish(ctx, entity.NewEscalation(session, reason, s.now())); err != nil {
		s.logger.Error("CLINICAL", "Failed to publish escalation", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
	}
}
