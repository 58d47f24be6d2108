package mailer

import (
	"fmt"
	"time"

	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendEscalation(toEmail string, escalation entity.Escalation) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	logger      logger.ILogger
}

func NewEmailService(host string, port int, username, password, senderName string, logger logger.ILogger) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: username,
		senderName:  senderName,
		logger:      logger,
	}
}

// EscalationBody renders the alert. It names the session and never the
// participants; the desk opens the session in the counselor console.
func EscalationBody(e entity.Escalation) string {
	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Session needs attention</h2>
			<p>Reason: <strong>%s</strong></p>
			<p>Session: %s</p>
			<p>Severity: %s &middot; Priority: %s</p>
			<p>Raised at %s</p>
		</div>
	`, e.Reason, e.SessionId, e.Severity, e.Priority, e.RaisedAt.Format(time.RFC3339))
}

func (s *emailService) SendEscalation(toEmail string, escalation entity.Escalation) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Counseling escalation: "+string(escalation.Reason))
	m.SetBody("text/html", EscalationBody(escalation))

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("MAILER", "Failed to send escalation", map[string]interface{}{
			"session_id": escalation.SessionId.String(),
			"error":      err.Error(),
		})
		return err
	}

	s.logger.Info("MAILER", "Escalation sent", map[string]interface{}{
		"session_id": escalation.SessionId.String(),
	})
	return nil
}
