package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrGetSessionDefaults(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	s, err := h.sessions.CreateOrGetSession(ctx, " 1BI21CS001 ", "PSYCH-1001", "INST-1")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, s.Id)
	assert.Equal(t, "1BI21CS001", s.StarterId)
	assert.Equal(t, entity.SessionStatusActive, s.Status)
	assert.True(t, s.IsAnonymous)
	assert.Equal(t, entity.SeverityPending, s.Severity)
	assert.Nil(t, s.ProblemType)
	assert.Empty(t, s.IssueTags)
	assert.Equal(t, entity.PriorityNormal, s.CounselorPriority)
	assert.False(t, s.IsReported)
	assert.True(t, s.CreatedAt.Equal(h.clock.Now()))
	assert.True(t, s.UpdatedAt.Equal(s.CreatedAt))
}

func TestCreateOrGetSessionRequiresBothIds(t *testing.T) {
	h := newHarness(t)

	_, err := h.sessions.CreateOrGetSession(context.Background(), "", "PSYCH-1001", "INST-1")
	assert.True(t, apperror.IsValidation(err))

	_, err = h.sessions.CreateOrGetSession(context.Background(), "1BI21CS001", "   ", "INST-1")
	assert.True(t, apperror.IsValidation(err))
}

func TestCreateOrGetSessionReusesActiveSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, err := h.sessions.CreateOrGetSession(ctx, "1BI21CS001", "PSYCH-1001", "INST-1")
	require.NoError(t, err)

	h.clock.Advance(time.Hour)
	second, err := h.sessions.CreateOrGetSession(ctx, "1BI21CS001", "PSYCH-1001", "INST-1")
	require.NoError(t, err)

	assert.Equal(t, first.Id, second.Id)
	// Lookup is not activity.
	assert.True(t, second.UpdatedAt.Equal(first.UpdatedAt))

	// Roles are fixed: the reversed pair is a different conversation.
	reversed, err := h.sessions.CreateOrGetSession(ctx, "PSYCH-1001", "1BI21CS001", "INST-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.Id, reversed.Id)
}

func TestCreateOrGetSessionConcurrentCallsShareOneSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	const callers = 16
	ids := make([]uuid.UUID, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := h.sessions.CreateOrGetSession(ctx, "1BI21CS001", "PSYCH-1001", "INST-1")
			errs[i] = err
			if err == nil {
				ids[i] = s.Id
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, int64(1), h.countRows(t, "sessions"))
}

func TestCreateOrGetSessionReplacesExpiredSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	old, err := h.sessions.CreateOrGetSession(ctx, "1BI21CS001", "PSYCH-1001", "INST-1")
	require.NoError(t, err)
	_, err = h.messages.Append(ctx, old.Id, "1BI21CS001", "hello")
	require.NoError(t, err)

	h.clock.Advance(testTTL + time.Second)
	fresh, err := h.sessions.CreateOrGetSession(ctx, "1BI21CS001", "PSYCH-1001", "INST-1")
	require.NoError(t, err)

	assert.NotEqual(t, old.Id, fresh.Id)
	assert.Equal(t, int64(1), h.countRows(t, "sessions"))
	assert.Equal(t, int64(0), h.countRows(t, "messages"))
}

func TestCreateOrGetSessionAfterClose(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	old, err := h.sessions.CreateOrGetSession(ctx, "1BI21CS001", "PSYCH-1001", "INST-1")
	require.NoError(t, err)
	closed, err := h.sessions.CloseSession(ctx, old.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusClosed, closed.Status)

	fresh, err := h.sessions.CreateOrGetSession(ctx, "1BI21CS001", "PSYCH-1001", "INST-1")
	require.NoError(t, err)
	assert.NotEqual(t, old.Id, fresh.Id)

	// Reopening the old one would give the pair two active sessions.
	_, err = h.sessions.TagSession(ctx, old.Id, entity.TagUpdate{
		IssueTags: []string{},
		Status:    entity.Some(entity.SessionStatusActive),
	})
	assert.Error(t, err)

	reloaded, err := h.sessions.GetSession(ctx, old.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusClosed, reloaded.Status)
}

func TestUpdateClinicalStateIsPartial(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	s, err := h.sessions.CreateOrGetSession(ctx, "1BI21CS001", "PSYCH-1001", "INST-1")
	require.NoError(t, err)

	h.clock.Advance(time.Minute)
	updated, err := h.sessions.UpdateClinicalState(ctx, s.Id, entity.SessionPatch{
		Severity: entity.Some(entity.SeverityYellow),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SeverityYellow, updated.Severity)
	assert.Nil(t, updated.ProblemType)
	assert.True(t, updated.UpdatedAt.Equal(h.clock.Now()))

	problem := "sleep"
	updated, err = h.sessions.UpdateClinicalState(ctx, s.Id, entity.SessionPatch{
		ProblemType: entity.Some(&problem),
		IsReported:  entity.Some(true),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SeverityYellow, updated.Severity)
	require.NotNil(t, updated.ProblemType)
	assert.Equal(t, "sleep", *updated.ProblemType)
	assert.True(t, updated.IsReported)

	updated, err = h.sessions.UpdateClinicalState(ctx, s.Id, entity.SessionPatch{
		ProblemType: entity.Some[*string](nil),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.ProblemType)
	assert.True(t, updated.IsReported)
}

func TestUpdateClinicalStateValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	s, err := h.sessions.CreateOrGetSession(ctx, "1BI21CS001", "PSYCH-1001", "INST-1")
	require.NoError(t, err)

	_, err = h.sessions.UpdateClinicalState(ctx, s.Id, entity.SessionPatch{})
	assert.True(t, apperror.IsValidation(err))

	_, err = h.sessions.UpdateClinicalState(ctx, s.Id, entity.SessionPatch{Severity: entity.Some(entity.Severity("Purple"))})
	assert.True(t, apperror.IsValidation(err))

	_, err = h.sessions.UpdateClinicalState(ctx, uuid.New(), entity.SessionPatch{IsReported: entity.Some(true)})
	assert.True(t, apperror.IsNotFound(err))

	h.clock.Advance(testTTL + time.Second)
	_, err = h.sessions.UpdateClinicalState(ctx, s.Id, entity.SessionPatch{IsReported: entity.Some(true)})
	assert.True(t, apperror.IsNotFound(err))
}

func TestTagSessionRejectsUnknownTagsAndKeepsOldOnes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	s, err := h.sessions.CreateOrGetSession(ctx, "1BI21CS001", "PSYCH-1001", "INST-1")
	require.NoError(t, err)
	_, err = h.sessions.TagSession(ctx, s.Id, entity.TagUpdate{IssueTags: []string{"Depression"}})
	require.NoError(t, err)

	_, err = h.sessions.TagSession(ctx, s.Id, entity.TagUpdate{IssueTags: []string{"Exam Anxiety", "Homesick"}})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "Homesick")

	reloaded, err := h.sessions.GetSession(ctx, s.Id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Depression"}, reloaded.IssueTags)
}

func TestTagSessionIsIdempotentAndDoesNotRefresh(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	s, err := h.sessions.CreateOrGetSession(ctx, "1BI21CS001", "PSYCH-1001", "INST-1")
	require.NoError(t, err)

	h.clock.Advance(time.Hour)
	update := entity.TagUpdate{IssueTags: []string{"Exam Anxiety", "Academic Stress", "Exam Anxiety"}}
	first, err := h.sessions.TagSession(ctx, s.Id, update)
	require.NoError(t, err)
	second, err := h.sessions.TagSession(ctx, s.Id, update)
	require.NoError(t, err)

	assert.Equal(t, []string{"Academic Stress", "Exam Anxiety"}, first.IssueTags)
	assert.Equal(t, first.IssueTags, second.IssueTags)
	assert.Equal(t, entity.SessionStatusActive, second.Status)
	assert.Equal(t, entity.ReviewStateReviewed, second.ReviewState)
	assert.True(t, second.UpdatedAt.Equal(s.UpdatedAt))
	assert.Equal(t, int64(2), h.countRows(t, "session_tags"))
}

func TestTagSessionValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	s, err := h.sessions.CreateOrGetSession(ctx, "1BI21CS001", "PSYCH-1001", "INST-1")
	require.NoError(t, err)

	_, err = h.sessions.TagSession(ctx, s.Id, entity.TagUpdate{})
	assert.True(t, apperror.IsValidation(err))

	_, err = h.sessions.TagSession(ctx, s.Id, entity.TagUpdate{
		IssueTags: []string{"Depression"},
		Status:    entity.Some(entity.SessionStatus("tagged")),
	})
	assert.True(t, apperror.IsValidation(err))

	_, err = h.sessions.TagSession(ctx, uuid.New(), entity.TagUpdate{IssueTags: []string{"Depression"}})
	assert.True(t, apperror.IsNotFound(err))
}

func TestListActiveSessionsForOrdersByActivity(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	a, err := h.sessions.CreateOrGetSession(ctx, "1BI21CS001", "PSYCH-1001", "INST-1")
	require.NoError(t, err)
	h.clock.Advance(time.Minute)
	b, err := h.sessions.CreateOrGetSession(ctx, "1BI21CS002", "PSYCH-1001", "INST-1")
	require.NoError(t, err)
	h.clock.Advance(time.Minute)
	c, err := h.sessions.CreateOrGetSession(ctx, "1BI21CS003", "PSYCH-1001", "INST-1")
	require.NoError(t, err)
	_, err = h.sessions.CloseSession(ctx, c.Id)
	require.NoError(t, err)

	h.clock.Advance(time.Minute)
	_, err = h.messages.Append(ctx, a.Id, "1BI21CS001", "still there?")
	require.NoError(t, err)

	list, err := h.sessions.ListActiveSessionsFor(ctx, "PSYCH-1001")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.Id, list[0].Id)
	assert.Equal(t, b.Id, list[1].Id)

	list, err = h.sessions.ListActiveSessionsFor(ctx, "1BI21CS002")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.Id, list[0].Id)

	list, err = h.sessions.ListActiveSessionsFor(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListActiveSessionsForExpiryBoundary(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.sessions.CreateOrGetSession(ctx, "1BI21CS001", "PSYCH-1001", "INST-1")
	require.NoError(t, err)

	h.clock.Advance(testTTL)
	list, err := h.sessions.ListActiveSessionsFor(ctx, "PSYCH-1001")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	h.clock.Advance(time.Second)
	list, err = h.sessions.ListActiveSessionsFor(ctx, "PSYCH-1001")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCloseSessionUnknown(t *testing.T) {
	h := newHarness(t)

	_, err := h.sessions.CloseSession(context.Background(), uuid.New())
	assert.True(t, apperror.IsNotFound(err))

	_, err = h.sessions.CloseSession(context.Background(), uuid.Nil)
	assert.True(t, apperror.IsValidation(err))
}
