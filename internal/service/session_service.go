package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/pkg/apperror"
	"confidential-chat-be/internal/pkg/logger"
	"confidential-chat-be/internal/repository/memory"
	"confidential-chat-be/internal/repository/specification"
	"confidential-chat-be/internal/repository/unitofwork"
	"confidential-chat-be/pkg/chatevents"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// createAttempts bounds the insert/re-read loop of CreateOrGetSession. A
// second pass is only needed when the winning row disappears in between.
const createAttempts = 3

type ISessionService interface {
	CreateOrGetSession(ctx context.Context, starterId, counselorId, instituteId string) (*entity.Session, error)
	GetSession(ctx context.Context, sessionId uuid.UUID) (*entity.Session, error)
	UpdateClinicalState(ctx context.Context, sessionId uuid.UUID, patch entity.SessionPatch) (*entity.Session, error)
	TagSession(ctx context.Context, sessionId uuid.UUID, update entity.TagUpdate) (*entity.Session, error)
	CloseSession(ctx context.Context, sessionId uuid.UUID) (*entity.Session, error)
	ListActiveSessionsFor(ctx context.Context, participantId string) ([]*entity.Session, error)
}

type sessionService struct {
	uowFactory unitofwork.RepositoryFactory
	events     chatevents.Publisher
	cache      memory.PollCache
	logger     logger.ILogger
	ttl        time.Duration
	now        Clock
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	events chatevents.Publisher,
	cache memory.PollCache,
	logger logger.ILogger,
	ttl time.Duration,
	clock Clock,
) ISessionService {
	return &sessionService{
		uowFactory: uowFactory,
		events:     events,
		cache:      cache,
		logger:     logger,
		ttl:        ttl,
		now:        utcClock(clock),
	}
}

func (s *sessionService) cutoff(now time.Time) time.Time {
	return entity.AliveCutoff(now, s.ttl)
}

func activePair(starterId, counselorId string) []specification.Specification {
	return []specification.Specification{
		specification.ByPair{StarterId: starterId, CounselorId: counselorId},
		specification.WithStatus{Status: string(entity.SessionStatusActive)},
		specification.WithAnnotations{},
	}
}

func (s *sessionService) CreateOrGetSession(ctx context.Context, starterId, counselorId, instituteId string) (*entity.Session, error) {
	starterId = entity.NormalizeId(starterId)
	counselorId = entity.NormalizeId(counselorId)
	instituteId = entity.NormalizeId(instituteId)
	if starterId == "" || counselorId == "" {
		return nil, apperror.Validation("starterId and counselorId are required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.SessionRepository()

	for attempt := 0; attempt < createAttempts; attempt++ {
		now := s.now()

		existing, err := repo.FindOne(ctx, activePair(starterId, counselorId)...)
		if err != nil {
			return nil, storeErr("find session", err)
		}
		if existing != nil {
			if existing.IsAlive(now, s.ttl) {
				return existing, nil
			}
			// The reaper has not reached it yet; clear the slot for a new session.
			if err := s.purgeExpired(ctx, existing.Id, now); err != nil {
				return nil, err
			}
		}

		session := entity.NewSession(starterId, counselorId, instituteId, now)
		created, err := repo.CreateIfAbsent(ctx, session)
		if err != nil {
			return nil, storeErr("create session", err)
		}
		if created {
			s.logger.Info("SESSION", "Session opened", map[string]interface{}{
				"session_id":   session.Id.String(),
				"institute_id": instituteId,
			})
			s.invalidateInbox(ctx, session)
			s.events.PublishSessionOpened(ctx, session)
			return session, nil
		}

		// Lost the race for the pair; hand back the winner.
		winner, err := repo.FindOne(ctx, append(activePair(starterId, counselorId),
			specification.AliveAfter{Cutoff: s.cutoff(now)})...)
		if err != nil {
			return nil, storeErr("find session", err)
		}
		if winner != nil {
			return winner, nil
		}
	}

	return nil, apperror.StoreUnavailable("create session", errors.New("active session slot kept changing"))
}

func (s *sessionService) purgeExpired(ctx context.Context, id uuid.UUID, now time.Time) error {
	err := unitofwork.RunInTransaction(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		repo := uow.SessionRepository()
		stale, err := repo.FindOne(ctx, specification.ByID{ID: id}, specification.ExpiredAt{Cutoff: s.cutoff(now)})
		if err != nil || stale == nil {
			return err
		}
		_, err = repo.DeleteCascade(ctx, []uuid.UUID{id})
		return err
	})
	return storeErr("purge expired session", err)
}

func (s *sessionService) GetSession(ctx context.Context, sessionId uuid.UUID) (*entity.Session, error) {
	if sessionId == uuid.Nil {
		return nil, apperror.Validation("sessionId is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := findAlive(ctx, uow, sessionId, s.cutoff(s.now()))
	if err != nil {
		return nil, err
	}
	return session, nil
}

// findAlive loads the session with its annotations, or NotFound when it is
// unknown or past the expiry cutoff.
func findAlive(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID, cutoff time.Time) (*entity.Session, error) {
	session, err := uow.SessionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.AliveAfter{Cutoff: cutoff},
		specification.WithAnnotations{},
	)
	if err != nil {
		return nil, storeErr("find session", err)
	}
	if session == nil {
		return nil, apperror.NotFound("session %s not found", id)
	}
	return session, nil
}

func (s *sessionService) UpdateClinicalState(ctx context.Context, sessionId uuid.UUID, patch entity.SessionPatch) (*entity.Session, error) {
	if sessionId == uuid.Nil {
		return nil, apperror.Validation("sessionId is required")
	}
	if patch.IsEmpty() {
		return nil, apperror.Validation("at least one of severity, problemType or isReported is required")
	}
	if patch.Severity.Set && !patch.Severity.Value.IsValid() {
		return nil, apperror.Validation("invalid severity %q", patch.Severity.Value)
	}

	fields := map[string]interface{}{}
	if patch.Severity.Set {
		fields["severity"] = string(patch.Severity.Value)
	}
	if patch.ProblemType.Set {
		fields["problem_type"] = normalizeProblemType(patch.ProblemType.Value)
	}
	if patch.IsReported.Set {
		fields["is_reported"] = patch.IsReported.Value
	}

	now := s.now()
	var updated *entity.Session
	err := unitofwork.RunInTransaction(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		session, err := findAlive(ctx, uow, sessionId, s.cutoff(now))
		if err != nil {
			return err
		}

		fields["updated_at"] = latest(session.UpdatedAt, now)
		if _, err := uow.SessionRepository().UpdateFields(ctx, sessionId, fields); err != nil {
			return err
		}

		updated, err = findAlive(ctx, uow, sessionId, s.cutoff(now))
		return err
	})
	if err != nil {
		return nil, storeErr("update session", err)
	}

	s.invalidateInbox(ctx, updated)
	s.events.PublishClinicalUpdated(ctx, updated)
	return updated, nil
}

func normalizeProblemType(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func (s *sessionService) TagSession(ctx context.Context, sessionId uuid.UUID, update entity.TagUpdate) (*entity.Session, error) {
	if sessionId == uuid.Nil {
		return nil, apperror.Validation("sessionId is required")
	}
	if update.IssueTags == nil {
		return nil, apperror.Validation("issueTags is required")
	}
	tags := entity.NormalizeTags(update.IssueTags)
	if invalid := entity.InvalidIssueTags(tags); len(invalid) > 0 {
		return nil, apperror.Validation("unknown issue tags: %s", strings.Join(invalid, ", "))
	}
	if update.Status.Set && !update.Status.Value.IsValid() {
		return nil, apperror.Validation("invalid status %q", update.Status.Value)
	}
	if update.Priority.Set && !update.Priority.Value.IsValid() {
		return nil, apperror.Validation("invalid priority %q", update.Priority.Value)
	}
	counselorId := entity.NormalizeId(update.CounselorId.Value)
	if update.CounselorId.Set && counselorId == "" {
		return nil, apperror.Validation("counselorId must not be blank")
	}

	now := s.now()
	var tagged *entity.Session
	err := unitofwork.RunInTransaction(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		repo := uow.SessionRepository()
		if _, err := findAlive(ctx, uow, sessionId, s.cutoff(now)); err != nil {
			return err
		}

		if err := repo.ReplaceTags(ctx, sessionId, tags); err != nil {
			return err
		}

		// updated_at is left alone: classifying a session is not activity.
		fields := map[string]interface{}{
			"review_state": string(entity.ReviewStateReviewed),
			"tagged_at":    now,
		}
		if update.Status.Set {
			fields["status"] = string(update.Status.Value)
		}
		if update.Priority.Set {
			fields["counselor_priority"] = string(update.Priority.Value)
		}
		if _, err := repo.UpdateFields(ctx, sessionId, fields); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Conflict("another active session exists for this pair")
			}
			return err
		}

		if update.CounselorId.Set {
			if err := repo.AddParticipant(ctx, sessionId, counselorId); err != nil {
				return err
			}
		}

		var err error
		tagged, err = findAlive(ctx, uow, sessionId, s.cutoff(now))
		return err
	})
	if err != nil {
		return nil, storeErr("tag session", err)
	}

	s.invalidateInbox(ctx, tagged)
	s.events.PublishSessionTagged(ctx, tagged)
	return tagged, nil
}

func (s *sessionService) CloseSession(ctx context.Context, sessionId uuid.UUID) (*entity.Session, error) {
	if sessionId == uuid.Nil {
		return nil, apperror.Validation("sessionId is required")
	}

	now := s.now()
	var closed *entity.Session
	err := unitofwork.RunInTransaction(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		session, err := findAlive(ctx, uow, sessionId, s.cutoff(now))
		if err != nil {
			return err
		}
		if session.Status == entity.SessionStatusClosed {
			closed = session
			return nil
		}

		if _, err := uow.SessionRepository().UpdateFields(ctx, sessionId, map[string]interface{}{
			"status": string(entity.SessionStatusClosed),
		}); err != nil {
			return err
		}
		session.Status = entity.SessionStatusClosed
		closed = session
		return nil
	})
	if err != nil {
		return nil, storeErr("close session", err)
	}

	s.invalidateInbox(ctx, closed)
	s.events.PublishSessionClosed(ctx, closed)
	return closed, nil
}

func (s *sessionService) ListActiveSessionsFor(ctx context.Context, participantId string) ([]*entity.Session, error) {
	participantId = entity.NormalizeId(participantId)
	if participantId == "" {
		return []*entity.Session{}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.SessionRepository().FindAll(ctx,
		specification.InvolvingParticipant{ParticipantId: participantId},
		specification.WithStatus{Status: string(entity.SessionStatusActive)},
		specification.AliveAfter{Cutoff: s.cutoff(s.now())},
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.OrderBy{Field: "id", Desc: true},
		specification.WithAnnotations{},
	)
	if err != nil {
		return nil, storeErr("list sessions", err)
	}
	return sessions, nil
}

// invalidateInbox drops the poll snapshots of everyone who sees the session.
func (s *sessionService) invalidateInbox(ctx context.Context, session *entity.Session) {
	invalidateInboxes(ctx, s.cache, session)
}

func invalidateInboxes(ctx context.Context, cache memory.PollCache, session *entity.Session) {
	keys := []string{memory.InboxKey(session.StarterId), memory.InboxKey(session.CounselorId)}
	for _, p := range session.Participants {
		keys = append(keys, memory.InboxKey(p))
	}
	cache.Delete(ctx, keys...)
}
