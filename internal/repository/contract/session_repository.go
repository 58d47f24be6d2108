package contract

import (
	"context"
	"time"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SessionRepository interface {
	// CreateIfAbsent inserts the session unless another active session for
	// the same pair already exists. It reports whether the row was written.
	CreateIfAbsent(ctx context.Context, session *entity.Session) (bool, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error)
	// Touch moves updated_at forward to at, never backwards.
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	ReplaceTags(ctx context.Context, id uuid.UUID, tags []string) error
	AddParticipant(ctx context.Context, id uuid.UUID, participantId string) error
	FindExpiredIDs(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
	DeleteCascade(ctx context.Context, ids []uuid.UUID) (int64, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
