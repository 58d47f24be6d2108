package chatevents

import (
	"context"
	"time"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/pkg/logger"
	"confidential-chat-be/internal/pkg/privacy"
	pkgEvents "confidential-chat-be/pkg/events"
	pktNats "confidential-chat-be/pkg/nats"
)

// Publisher emits the audit trail of the chat core. Payloads carry
// pseudonymized participant ids and never message content.
type Publisher interface {
	PublishSessionOpened(ctx context.Context, session *entity.Session)
	PublishMessageAppended(ctx context.Context, session *entity.Session, message *entity.Message)
	PublishClinicalUpdated(ctx context.Context, session *entity.Session)
	PublishSessionTagged(ctx context.Context, session *entity.Session)
	PublishSessionClosed(ctx context.Context, session *entity.Session)
	PublishSessionsExpired(ctx context.Context, purged int64, cutoff time.Time)
}

type eventSink interface {
	Publish(ctx context.Context, event pkgEvents.Event) error
}

// NatsPublisher implements Publisher on top of the JetStream publisher.
type NatsPublisher struct {
	publisher eventSink
	masker    *privacy.Pseudonymizer
	logger    logger.ILogger
	now       func() time.Time
}

func NewNatsPublisher(publisher *pktNats.Publisher, masker *privacy.Pseudonymizer, logger logger.ILogger) *NatsPublisher {
	p := &NatsPublisher{
		masker: masker,
		logger: logger,
		now:    time.Now,
	}
	// Keep the interface nil when NATS is down so publish calls are skipped.
	if publisher != nil {
		p.publisher = publisher
	}
	return p
}

func (p *NatsPublisher) sessionData(session *entity.Session) map[string]interface{} {
	return map[string]interface{}{
		"session_id":   session.Id.String(),
		"starter":      p.masker.Mask(session.StarterId),
		"counselor":    p.masker.Mask(session.CounselorId),
		"institute_id": session.InstituteId,
		"entity_type":  "session",
		"entity_id":    session.Id.String(),
	}
}

func (p *NatsPublisher) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.publisher == nil {
		return
	}

	evt := pkgEvents.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: p.now(),
	}

	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("EVENTS", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

func (p *NatsPublisher) PublishSessionOpened(ctx context.Context, session *entity.Session) {
	p.publish(ctx, pkgEvents.TypeSessionOpened, p.sessionData(session))
}

func (p *NatsPublisher) PublishMessageAppended(ctx context.Context, session *entity.Session, message *entity.Message) {
	data := p.sessionData(session)
	data["message_id"] = message.Id.String()
	data["sender"] = p.masker.Mask(message.SenderId)
	p.publish(ctx, pkgEvents.TypeMessageAppended, data)
}

func (p *NatsPublisher) PublishClinicalUpdated(ctx context.Context, session *entity.Session) {
	data := p.sessionData(session)
	data["severity"] = string(session.Severity)
	data["is_reported"] = session.IsReported
	p.publish(ctx, pkgEvents.TypeClinicalUpdated, data)
}

func (p *NatsPublisher) PublishSessionTagged(ctx context.Context, session *entity.Session) {
	data := p.sessionData(session)
	data["issue_tags"] = session.IssueTags
	data["priority"] = string(session.CounselorPriority)
	p.publish(ctx, pkgEvents.TypeSessionTagged, data)
}

func (p *NatsPublisher) PublishSessionClosed(ctx context.Context, session *entity.Session) {
	p.publish(ctx, pkgEvents.TypeSessionClosed, p.sessionData(session))
}

func (p *NatsPublisher) PublishSessionsExpired(ctx context.Context, purged int64, cutoff time.Time) {
	p.publish(ctx, pkgEvents.TypeSessionsExpired, map[string]interface{}{
		"purged": purged,
		"cutoff": cutoff,
	})
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishSessionOpened(context.Context, *entity.Session) {}
func (NopPublisher) PublishMessageAppended(context.Context, *entity.Session, *entity.Message) {}
func (NopPublisher) PublishClinicalUpdated(context.Context, *entity.Session) {}
func (NopPublisher) PublishSessionTagged(context.Context, *entity.Session) {}
func (NopPublisher) PublishSessionClosed(context.Context, *entity.Session) {}
func (NopPublisher) PublishSessionsExpired(context.Context, int64, time.Time) {}
