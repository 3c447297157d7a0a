// Package email sends transactional notifications over SMTP. The Mailer
// interface exists so handlers can run against a fake in tests.
package email

import (
	"fmt"
	"net/smtp"
)

type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends plain-text mail through the configured account. All
// configuration is injected; the package reads no environment.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("recipient address required")
	}

	auth := smtp.PlainAuth("", m.username, m.password, m.host)

	msg := []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", m.from, to, subject, body))

	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	return smtp.SendMail(addr, auth, m.from, []string{to}, msg)
}

// PaymentConfirmation is the body sent to a customer after a verified
// charge.success event.
func PaymentConfirmation(serviceName, reference string) (subject, body string) {
	if serviceName == "" {
		serviceName = "your business registration"
	}
	subject = "Payment received - SwiftIncorp"
	body = fmt.Sprintf(`Hello,

We have received your payment for %s.

Payment reference: %s

Our team will begin processing your registration right away. You can track
progress any time at https://swiftincorp.ng/track using the email address
you paid with.

Thank you for choosing SwiftIncorp.

Best regards,
The SwiftIncorp Team`, serviceName, reference)
	return subject, body
}

// ApplicationCompleted is the body sent to an applicant when an
// administrator marks their application completed.
func ApplicationCompleted(businessName string) (subject, body string) {
	subject = "Your business registration is complete - SwiftIncorp"
	body = fmt.Sprintf(`Hello,

Great news! The registration of %s has been completed.

Your official documents are ready. Reply to this email or reach us at
support@swiftincorp.ng if you have any questions.

Thank you for choosing SwiftIncorp.

Best regards,
The SwiftIncorp Team`, businessName)
	return subject, body
}
