package contract

import (
	"context"
	"time"

	"confidential-chat-be/internal/entity"
)

type WellnessRepository interface {
	// CountByTagAndPriority groups the alive tagged sessions of an institute
	// by (tag, counselor priority).
	CountByTagAndPriority(ctx context.Context, instituteId string, aliveAfter time.Time) ([]entity.TagPriorityCount, error)
}
