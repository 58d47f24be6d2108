package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/pkg/logger"
	"confidential-chat-be/internal/repository/memory"
	"confidential-chat-be/internal/repository/unitofwork"
	"confidential-chat-be/pkg/chatevents"
	"confidential-chat-be/pkg/database"
	"confidential-chat-be/pkg/wellness"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testTTL = 7 * 24 * time.Hour

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingEscalations struct {
	mu   sync.Mutex
	sent []entity.Escalation
}

func (r *recordingEscalations) Publish(_ context.Context, e entity.Escalation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, e)
	return nil
}

func (r *recordingEscalations) All() []entity.Escalation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.Escalation(nil), r.sent...)
}

type harness struct {
	db          *gorm.DB
	clock       *fakeClock
	cache       memory.PollCache
	escalations *recordingEscalations

	sessions ISessionService
	messages IMessageService
	clinical IClinicalService
	wellness IWellnessService
	inbox    IInboxService
	expiry   IExpiryService
}

func newHarness(t *testing.T) *harness {
	return newHarnessWithLimit(t, 500)
}

func newHarnessWithLimit(t *testing.T, listLimit int) *harness {
	t.Helper()

	db, err := database.NewInMemorySQLite("svc_" + uuid.NewString())
	require.NoError(t, err)
	_, err = database.Migrate(db)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	clock := newFakeClock()
	log := logger.NewNopLogger()
	uowFactory := unitofwork.NewRepositoryFactory(db)
	events := chatevents.NopPublisher{}
	// Longer than any test so hits are decided by invalidation, not expiry.
	cache := memory.NewLocalPollCache(time.Minute)
	escalations := &recordingEscalations{}

	sessions := NewSessionService(uowFactory, events, cache, log, testTTL, clock.Now)
	messages := NewMessageService(uowFactory, events, cache, log, testTTL, listLimit, clock.Now)

	return &harness{
		db:          db,
		clock:       clock,
		cache:       cache,
		escalations: escalations,
		sessions:    sessions,
		messages:    messages,
		clinical:    NewClinicalService(sessions, escalations, log, clock.Now),
		wellness:    NewWellnessService(uowFactory, wellness.NewAggregator(log), testTTL, clock.Now),
		inbox:       NewInboxService(sessions, messages, cache, testTTL, clock.Now),
		expiry:      NewExpiryService(uowFactory, events, log, testTTL, time.Hour, clock.Now),
	}
}

func (h *harness) countRows(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Table(table).Count(&n).Error)
	return n
}
