package service

import (
	"fmt"
	"net/smtp"
	"strings"

	"example.com/marketplace/internal/model"
)

type EmailService interface{ Send(to, subject, body string) error }

type SMTPConfig struct {
	Host, Port, From string
}

type smtpEmail struct{ cfg SMTPConfig }

type nopEmail struct{}

func (nopEmail) Send(string, string, string) error { return nil }

// NewEmailService returns a sender that does nothing when no SMTP host is
// configured.
func NewEmailService(cfg SMTPConfig) EmailService {
	if cfg.Host == "" {
		return nopEmail{}
	}
	return &smtpEmail{cfg: cfg}
}

func (s *smtpEmail) Send(to, subject, body string) error {
	addr := s.cfg.Host + ":" + s.cfg.Port
	msg := "From: " + s.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n" +
		body

	// local relays (MailHog etc.) take no auth
	return smtp.SendMail(addr, nil, s.cfg.From, []string{to}, []byte(msg))
}

func orderConfirmation(u model.User, o model.Order) (subject, body string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThanks! Your order #%d has been received.\n\n", u.Name, o.ID)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "  %d x %s @ %s = %s\n", it.Quantity, it.Name, it.UnitPrice.StringFixed(2), it.LineTotal().StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\nPayment: %s (%s)\n", o.Total.StringFixed(2), o.PaymentMethod, o.Status)
	return fmt.Sprintf("Order #%d confirmation", o.ID), b.String()
}
