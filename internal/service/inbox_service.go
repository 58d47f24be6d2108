package service

import (
	"context"
	"time"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/pkg/apperror"
	"confidential-chat-be/internal/repository/memory"

	"github.com/google/uuid"
)

// IInboxService answers the clients that poll every few seconds. Reads go
// through a short-lived snapshot cache that writers invalidate.
type IInboxService interface {
	Inbox(ctx context.Context, participantId string) ([]*entity.Session, error)
	Thread(ctx context.Context, sessionId uuid.UUID) ([]*entity.Message, error)
}

type inboxService struct {
	sessions ISessionService
	messages IMessageService
	cache    memory.PollCache
	ttl      time.Duration
	now      Clock
}

func NewInboxService(
	sessions ISessionService,
	messages IMessageService,
	cache memory.PollCache,
	ttl time.Duration,
	clock Clock,
) IInboxService {
	return &inboxService{
		sessions: sessions,
		messages: messages,
		cache:    cache,
		ttl:      ttl,
		now:      utcClock(clock),
	}
}

type threadSnapshot struct {
	SessionUpdatedAt time.Time
	Messages         []*entity.Message
}

func (s *inboxService) Inbox(ctx context.Context, participantId string) ([]*entity.Session, error) {
	participantId = entity.NormalizeId(participantId)
	if participantId == "" {
		return []*entity.Session{}, nil
	}

	key := memory.InboxKey(participantId)
	var cached []*entity.Session
	if s.cache.Get(ctx, key, &cached) {
		// A snapshot may outlive a session's retention window by a poll.
		now := s.now()
		alive := make([]*entity.Session, 0, len(cached))
		for _, session := range cached {
			if session.IsAlive(now, s.ttl) {
				alive = append(alive, session)
			}
		}
		return alive, nil
	}

	sessions, err := s.sessions.ListActiveSessionsFor(ctx, participantId)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, sessions)
	return sessions, nil
}

func (s *inboxService) Thread(ctx context.Context, sessionId uuid.UUID) ([]*entity.Message, error) {
	if sessionId == uuid.Nil {
		return []*entity.Message{}, nil
	}

	key := memory.ThreadKey(sessionId)
	var cached threadSnapshot
	if s.cache.Get(ctx, key, &cached) {
		if !cached.SessionUpdatedAt.Before(entity.AliveCutoff(s.now(), s.ttl)) {
			return cached.Messages, nil
		}
		s.cache.Delete(ctx, key)
		return []*entity.Message{}, nil
	}

	session, err := s.sessions.GetSession(ctx, sessionId)
	if err != nil {
		if apperror.IsNotFound(err) {
			return []*entity.Message{}, nil
		}
		return nil, err
	}

	messages, err := s.messages.ListBySession(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, threadSnapshot{SessionUpdatedAt: session.UpdatedAt, Messages: messages})
	return messages, nil
}
