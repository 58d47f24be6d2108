package unitofwork

import (
	"context"

	"confidential-chat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SessionRepository
	MessageRepository() contract.MessageRepository
	WellnessRepository() contract.WellnessRepository
}
