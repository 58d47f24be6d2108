package service

import (
	"context"
	"time"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/pkg/logger"
	"confidential-chat-be/internal/repository/unitofwork"
	"confidential-chat-be/pkg/chatevents"
)

// reapBatchSize caps how many sessions one purge transaction removes.
const reapBatchSize = 500

type IExpiryService interface {
	Start(ctx context.Context)
	SweepOnce(ctx context.Context) (int64, error)
}

// expiryService is the only path that deletes sessions. Reads already hide
// expired rows, so a late sweep is never observable.
type expiryService struct {
	uowFactory unitofwork.RepositoryFactory
	events     chatevents.Publisher
	logger     logger.ILogger
	ttl        time.Duration
	interval   time.Duration
	now        Clock
}

func NewExpiryService(
	uowFactory unitofwork.RepositoryFactory,
	events chatevents.Publisher,
	logger logger.ILogger,
	ttl time.Duration,
	interval time.Duration,
	clock Clock,
) IExpiryService {
	return &expiryService{
		uowFactory: uowFactory,
		events:     events,
		logger:     logger,
		ttl:        ttl,
		interval:   interval,
		now:        utcClock(clock),
	}
}

// Start sweeps once immediately and then on every tick until ctx is done.
func (s *expiryService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.SweepOnce(ctx); err != nil {
			s.logger.Error("EXPIRY", "Sweep failed", map[string]interface{}{"error": err.Error()})
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *expiryService) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := entity.AliveCutoff(s.now(), s.ttl)

	var total int64
	for {
		var batch int
		var purged int64
		err := unitofwork.RunInTransaction(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
			repo := uow.SessionRepository()
			ids, err := repo.FindExpiredIDs(ctx, cutoff, reapBatchSize)
			if err != nil {
				return err
			}
			batch = len(ids)

			purged, err = repo.DeleteCascade(ctx, ids)
			return err
		})
		if err != nil {
			return total, storeErr("purge expired sessions", err)
		}
		total += purged
		if batch < reapBatchSize {
			break
		}
	}

	if total > 0 {
		s.logger.Info("EXPIRY", "Expired sessions purged", map[string]interface{}{
			"purged": total,
			"cutoff": cutoff.Format(time.RFC3339),
		})
		s.events.PublishSessionsExpired(ctx, total, cutoff)
	}
	return total, nil
}
