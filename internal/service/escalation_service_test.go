package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu   sync.Mutex
	to   []string
	sent []entity.Escalation
}

func (m *recordingMailer) SendEscalation(toEmail string, e entity.Escalation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to = append(m.to, toEmail)
	m.sent = append(m.sent, e)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestEscalationReachesOnCallMailbox(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	mail := &recordingMailer{}
	consumer := NewEscalationConsumer(pubSub, EscalationTopic, mail, "oncall@inst.example", logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	escalation := entity.Escalation{
		SessionId:   uuid.New(),
		InstituteId: "INST-1",
		Reason:      entity.EscalationRedSeverity,
		Severity:    entity.SeverityRed,
		Priority:    entity.PriorityNormal,
		RaisedAt:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, NewEscalationPublisher(EscalationTopic, pubSub).Publish(ctx, escalation))

	assert.Eventually(t, func() bool { return mail.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	mail.mu.Lock()
	defer mail.mu.Unlock()
	assert.Equal(t, []string{"oncall@inst.example"}, mail.to)
	assert.Equal(t, escalation.SessionId, mail.sent[0].SessionId)
	assert.True(t, escalation.RaisedAt.Equal(mail.sent[0].RaisedAt))
}
