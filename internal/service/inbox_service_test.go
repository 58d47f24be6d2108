package service

import (
	"context"
	"testing"
	"time"

	"confidential-chat-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounselingConversationEndToEnd(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	s, err := h.sessions.CreateOrGetSession(ctx, "1BI21CS001", "PSYCH-1001", "INST-1")
	require.NoError(t, err)

	_, err = h.messages.Append(ctx, s.Id, "1BI21CS001", "I need help")
	require.NoError(t, err)
	h.clock.Advance(time.Second)
	_, err = h.messages.Append(ctx, s.Id, "PSYCH-1001", "I'm here")
	require.NoError(t, err)

	_, err = h.clinical.Tag(ctx, entity.ClinicalTag{
		SessionId:   s.Id,
		IssueTags:   []string{"Exam Anxiety"},
		CounselorId: "PSYCH-1001",
		Priority:    entity.PriorityCritical,
	})
	require.NoError(t, err)

	inbox, err := h.inbox.Inbox(ctx, "PSYCH-1001")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, s.Id, inbox[0].Id)
	assert.Equal(t, entity.SeverityPending, inbox[0].Severity)
	assert.Equal(t, []string{"Exam Anxiety"}, inbox[0].IssueTags)

	thread, err := h.inbox.Thread(ctx, s.Id)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "I need help", thread[0].Content)
	assert.Equal(t, "I'm here", thread[1].Content)
}

func TestThreadSnapshotIsInvalidatedByAppend(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	s, err := h.sessions.CreateOrGetSession(ctx, "1BI21CS001", "PSYCH-1001", "INST-1")
	require.NoError(t, err)

	thread, err := h.inbox.Thread(ctx, s.Id)
	require.NoError(t, err)
	assert.Empty(t, thread)

	_, err = h.messages.Append(ctx, s.Id, "1BI21CS001", "hello")
	require.NoError(t, err)

	thread, err = h.inbox.Thread(ctx, s.Id)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, "hello", thread[0].Content)
}

func TestInboxSnapshotIsInvalidatedByNewSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	inbox, err := h.inbox.Inbox(ctx, "PSYCH-1001")
	require.NoError(t, err)
	assert.Empty(t, inbox)

	_, err = h.sessions.CreateOrGetSession(ctx, "1BI21CS001", "PSYCH-1001", "INST-1")
	require.NoError(t, err)

	inbox, err = h.inbox.Inbox(ctx, "PSYCH-1001")
	require.NoError(t, err)
	assert.Len(t, inbox, 1)
}

func TestSnapshotsHideSessionsThatExpireWhileCached(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	s, err := h.sessions.CreateOrGetSession(ctx, "1BI21CS001", "PSYCH-1001", "INST-1")
	require.NoError(t, err)
	_, err = h.messages.Append(ctx, s.Id, "1BI21CS001", "hello")
	require.NoError(t, err)

	inbox, err := h.inbox.Inbox(ctx, "1BI21CS001")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	thread, err := h.inbox.Thread(ctx, s.Id)
	require.NoError(t, err)
	require.Len(t, thread, 1)

	h.clock.Advance(testTTL + time.Second)

	inbox, err = h.inbox.Inbox(ctx, "1BI21CS001")
	require.NoError(t, err)
	assert.Empty(t, inbox)
	thread, err = h.inbox.Thread(ctx, s.Id)
	require.NoError(t, err)
	assert.Empty(t, thread)
}

func TestInboxBlankIdsReadEmpty(t *testing.T) {
	h := newHarness(t)

	inbox, err := h.inbox.Inbox(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, inbox)

	thread, err := h.inbox.Thread(context.Background(), uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, thread)

	thread, err = h.inbox.Thread(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, thread)
}
