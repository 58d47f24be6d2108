package entity

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	SenderId  string
	Content   string
	Timestamp time.Time
	IsRead    bool
}
