package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagNew(t *testing.T, h *harness, starter, institute string, tags []string, p entity.Priority) *entity.Session {
	t.Helper()
	ctx := context.Background()

	s, err := h.sessions.CreateOrGetSession(ctx, starter, "PSYCH-1001", institute)
	require.NoError(t, err)
	tagged, err := h.clinical.Tag(ctx, entity.ClinicalTag{
		SessionId:   s.Id,
		IssueTags:   tags,
		CounselorId: "PSYCH-1001",
		Priority:    p,
	})
	require.NoError(t, err)
	return tagged
}

func TestAggregateGroupsByTagAndPriority(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tagNew(t, h, "S1", "INST-1", []string{"Academic Stress"}, entity.PriorityCritical)
	tagNew(t, h, "S2", "INST-1", []string{"Academic Stress"}, entity.PriorityCritical)
	tagNew(t, h, "S3", "INST-1", []string{"Academic Stress", "Sleep Problems"}, entity.PriorityNormal)
	// Untagged and foreign sessions stay out.
	_, err := h.sessions.CreateOrGetSession(ctx, "S4", "PSYCH-1001", "INST-1")
	require.NoError(t, err)
	tagNew(t, h, "S5", "INST-2", []string{"Academic Stress"}, entity.PriorityEmergency)

	report, err := h.wellness.Aggregate(ctx, "INST-1")
	require.NoError(t, err)

	assert.Equal(t, []entity.WellnessTag{
		{
			IssueTag:      "Academic Stress",
			TotalSessions: 3,
			Priorities: []entity.PriorityCount{
				{Priority: entity.PriorityCritical, Count: 2},
				{Priority: entity.PriorityNormal, Count: 1},
			},
		},
		{
			IssueTag:      "Sleep Problems",
			TotalSessions: 1,
			Priorities:    []entity.PriorityCount{{Priority: entity.PriorityNormal, Count: 1}},
		},
	}, report)
}

func TestAggregateSkipsExpiredSessions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tagNew(t, h, "S1", "INST-1", []string{"Depression"}, entity.PriorityNormal)
	h.clock.Advance(testTTL - time.Hour)
	for i := 0; i < 2; i++ {
		tagNew(t, h, fmt.Sprintf("S%d", i+2), "INST-1", []string{"Depression"}, entity.PriorityNormal)
	}
	h.clock.Advance(2 * time.Hour)

	report, err := h.wellness.Aggregate(ctx, "INST-1")
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, 2, report[0].TotalSessions)
}

func TestAggregateEmptyAndInvalid(t *testing.T) {
	h := newHarness(t)

	report, err := h.wellness.Aggregate(context.Background(), "INST-9")
	require.NoError(t, err)
	assert.Empty(t, report)

	_, err = h.wellness.Aggregate(context.Background(), " ")
	assert.True(t, apperror.IsValidation(err))
}
