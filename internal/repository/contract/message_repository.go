package contract

import (
	"context"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	// FindLatest returns at most limit messages of the session, the newest
	// ones, in ascending (timestamp, id) order.
	FindLatest(ctx context.Context, sessionId uuid.UUID, limit int) ([]*entity.Message, error)
	MarkRead(ctx context.Context, specs ...specification.Specification) (int64, error)
}
