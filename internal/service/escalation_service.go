package service

import (
	"context"
	"encoding/json"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/pkg/logger"
	"confidential-chat-be/internal/pkg/mailer"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const EscalationTopic = "counsel.escalation"

type IEscalationPublisher interface {
	Publish(ctx context.Context, escalation entity.Escalation) error
}

type escalationPublisher struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewEscalationPublisher(topicName string, pubSub *gochannel.GoChannel) IEscalationPublisher {
	return &escalationPublisher{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (p *escalationPublisher) Publish(ctx context.Context, escalation entity.Escalation) error {
	payload, err := json.Marshal(escalation)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return p.pubSub.Publish(p.topicName, msg)
}

type IEscalationConsumer interface {
	Consume(ctx context.Context) error
}

type escalationConsumer struct {
	pubSub    *gochannel.GoChannel
	topicName string
	mailer    mailer.IEmailService
	recipient string
	logger    logger.ILogger
}

// NewEscalationConsumer mails every escalation to the on-call recipient. With
// no mailer or recipient configured escalations are only logged.
func NewEscalationConsumer(
	pubSub *gochannel.GoChannel,
	topicName string,
	mailer mailer.IEmailService,
	recipient string,
	logger logger.ILogger,
) IEscalationConsumer {
	return &escalationConsumer{
		pubSub:    pubSub,
		topicName: topicName,
		mailer:    mailer,
		recipient: recipient,
		logger:    logger,
	}
}

func (c *escalationConsumer) Consume(ctx context.Context) error {
	messages, err := c.pubSub.Subscribe(ctx, c.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			c.processMessage(msg)
		}
	}()

	return nil
}

func (c *escalationConsumer) processMessage(msg *message.Message) {
	var escalation entity.Escalation
	if err := json.Unmarshal(msg.Payload, &escalation); err != nil {
		c.logger.Error("ESCALATION", "Dropping malformed escalation", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Redelivery cannot fix a bad payload
		return
	}

	details := map[string]interface{}{
		"session_id":   escalation.SessionId.String(),
		"institute_id": escalation.InstituteId,
		"reason":       string(escalation.Reason),
	}
	c.logger.Warn("ESCALATION", "Session escalated", details)

	if c.mailer == nil || c.recipient == "" {
		msg.Ack()
		return
	}

	// gochannel redelivers a Nack immediately, so a mail outage would spin.
	// The escalation stays in the log for the desk either way.
	if err := c.mailer.SendEscalation(c.recipient, escalation); err != nil {
		c.logger.Error("ESCALATION", "Escalation mail not delivered", details)
	}
	msg.Ack()
}
