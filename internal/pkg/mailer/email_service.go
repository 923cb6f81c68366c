// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"
	"time"

	"ai-chat-quota-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendWelcome(toEmail, fullName string) error
	SendPaymentFailed(toEmail string, tier string, failedAt time.Time) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	logger      logger.ILogger
}

func NewEmailService(host string, port int, username, password, senderEmail string, logger logger.ILogger) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		logger:      logger,
	}
}

func (s *emailService) SendWelcome(toEmail, fullName string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Welcome, %s!</h2>
			<p>Your account is ready. A free BASIC bundle with 10 messages per month has been added to it.</p>
			<p>Upgrade to PRO or ENTERPRISE at any time to get more messages.</p>
		</div>
	`, fullName)

	return s.send(toEmail, "Welcome to AI Chat", body)
}

func (s *emailService) SendPaymentFailed(toEmail string, tier string, failedAt time.Time) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>We could not renew your subscription</h2>
			<p>The renewal payment for your <b>%s</b> bundle failed on %s.</p>
			<p>The bundle is now inactive. Update your payment method and renew it to keep chatting.</p>
		</div>
	`, tier, failedAt.Format(time.RFC1123))

	return s.send(toEmail, "Subscription renewal failed", body)
}

func (s *emailService) send(toEmail, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error(logger.ModuleEvents, "Failed to send email", map[string]interface{}{
			"to":      toEmail,
			"subject": subject,
			"error":   err.Error(),
		})
		return err
	}

	s.logger.Info(logger.ModuleEvents, "Email sent", map[string]interface{}{
		"to":      toEmail,
		"subject": subject,
	})
	return nil
}
