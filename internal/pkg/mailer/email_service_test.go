package mailer

import (
	"testing"
	"time"

	"confidential-chat-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEscalationBodyNamesSessionOnly(t *testing.T) {
	id := uuid.New()
	body := EscalationBody(entity.Escalation{
		SessionId:   id,
		InstituteId: "INST-1",
		Reason:      entity.EscalationEmergencyPriority,
		Severity:    entity.SeverityPending,
		Priority:    entity.PriorityEmergency,
		RaisedAt:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	})

	assert.Contains(t, body, id.String())
	assert.Contains(t, body, "EMERGENCY_PRIORITY")
	assert.Contains(t, body, "2024-05-01T10:00:00Z")
}
