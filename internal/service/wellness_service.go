package service

import (
	"context"
	"time"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/pkg/apperror"
	"confidential-chat-be/internal/repository/unitofwork"
	"confidential-chat-be/pkg/wellness"
)

type IWellnessService interface {
	Aggregate(ctx context.Context, instituteId string) ([]entity.WellnessTag, error)
}

type wellnessService struct {
	uowFactory unitofwork.RepositoryFactory
	aggregator *wellness.Aggregator
	ttl        time.Duration
	now        Clock
}

func NewWellnessService(
	uowFactory unitofwork.RepositoryFactory,
	aggregator *wellness.Aggregator,
	ttl time.Duration,
	clock Clock,
) IWellnessService {
	return &wellnessService{
		uowFactory: uowFactory,
		aggregator: aggregator,
		ttl:        ttl,
		now:        utcClock(clock),
	}
}

func (s *wellnessService) Aggregate(ctx context.Context, instituteId string) ([]entity.WellnessTag, error) {
	instituteId = entity.NormalizeId(instituteId)
	if instituteId == "" {
		return nil, apperror.Validation("institute id is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	report, err := s.aggregator.GetWellness(ctx, uow, instituteId, entity.AliveCutoff(s.now(), s.ttl))
	if err != nil {
		return nil, storeErr("aggregate wellness", err)
	}
	return report, nil
}
