package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/pkg/apperror"
	"confidential-chat-be/internal/pkg/logger"
	"confidential-chat-be/internal/repository/memory"
	"confidential-chat-be/internal/repository/specification"
	"confidential-chat-be/internal/repository/unitofwork"
	"confidential-chat-be/pkg/chatevents"

	"github.com/google/uuid"
)

const MaxMessageLength = 4000

type IMessageService interface {
	Append(ctx context.Context, sessionId uuid.UUID, senderId, content string) (*entity.Message, error)
	ListBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.Message, error)
	MarkRead(ctx context.Context, sessionId uuid.UUID, readerId string) (int64, error)
}

type messageService struct {
	uowFactory unitofwork.RepositoryFactory
	events     chatevents.Publisher
	cache      memory.PollCache
	logger     logger.ILogger
	ttl        time.Duration
	listLimit  int
	now        Clock
}

func NewMessageService(
	uowFactory unitofwork.RepositoryFactory,
	events chatevents.Publisher,
	cache memory.PollCache,
	logger logger.ILogger,
	ttl time.Duration,
	listLimit int,
	clock Clock,
) IMessageService {
	return &messageService{
		uowFactory: uowFactory,
		events:     events,
		cache:      cache,
		logger:     logger,
		ttl:        ttl,
		listLimit:  listLimit,
		now:        utcClock(clock),
	}
}

func newMessageId() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

func (s *messageService) Append(ctx context.Context, sessionId uuid.UUID, senderId, content string) (*entity.Message, error) {
	senderId = entity.NormalizeId(senderId)
	if sessionId == uuid.Nil {
		return nil, apperror.Validation("sessionId is required")
	}
	if senderId == "" {
		return nil, apperror.Validation("senderId is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperror.Validation("content must not be blank")
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, apperror.Validation("content exceeds %d characters", MaxMessageLength)
	}

	now := s.now()
	message := &entity.Message{
		Id:        newMessageId(),
		SessionId: sessionId,
		SenderId:  senderId,
		Content:   content,
		Timestamp: now,
	}

	var session *entity.Session
	err := unitofwork.RunInTransaction(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		var err error
		session, err = findAlive(ctx, uow, sessionId, entity.AliveCutoff(now, s.ttl))
		if err != nil {
			return err
		}

		if err := uow.MessageRepository().Create(ctx, message); err != nil {
			return err
		}
		return uow.SessionRepository().Touch(ctx, sessionId, now)
	})
	if err != nil {
		return nil, storeErr("append message", err)
	}
	session.UpdatedAt = latest(session.UpdatedAt, now)

	s.cache.Delete(ctx, memory.ThreadKey(sessionId))
	invalidateInboxes(ctx, s.cache, session)
	s.events.PublishMessageAppended(ctx, session, message)
	return message, nil
}

// ListBySession returns the newest messages up to the list limit, oldest
// first. Unknown and expired sessions read as empty.
func (s *messageService) ListBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.Message, error) {
	if sessionId == uuid.Nil {
		return []*entity.Message{}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	alive, err := uow.SessionRepository().Count(ctx,
		specification.ByID{ID: sessionId},
		specification.AliveAfter{Cutoff: entity.AliveCutoff(s.now(), s.ttl)},
	)
	if err != nil {
		return nil, storeErr("list messages", err)
	}
	if alive == 0 {
		return []*entity.Message{}, nil
	}

	messages, err := uow.MessageRepository().FindLatest(ctx, sessionId, s.listLimit)
	if err != nil {
		return nil, storeErr("list messages", err)
	}
	return messages, nil
}

// MarkRead flags every message of the session not sent by the reader.
func (s *messageService) MarkRead(ctx context.Context, sessionId uuid.UUID, readerId string) (int64, error) {
	readerId = entity.NormalizeId(readerId)
	if sessionId == uuid.Nil || readerId == "" {
		return 0, apperror.Validation("sessionId and readerId are required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := findAlive(ctx, uow, sessionId, entity.AliveCutoff(s.now(), s.ttl)); err != nil {
		return 0, err
	}

	marked, err := uow.MessageRepository().MarkRead(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.NotSentBy{SenderId: readerId},
	)
	if err != nil {
		return 0, storeErr("mark messages read", err)
	}

	if marked > 0 {
		s.cache.Delete(ctx, memory.ThreadKey(sessionId))
		s.logger.Debug("MESSAGE", "Messages marked read", map[string]interface{}{
			"session_id": sessionId.String(),
			"count":      marked,
		})
	}
	return marked, nil
}
