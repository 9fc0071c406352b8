package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"sort"
	"strings"

	mail "github.com/go-mail/mail/v2"
)

// MailDialer is satisfied by *mail.Dialer.
type MailDialer interface {
	DialAndSend(m ...*mail.Message) error
}

// EmailChannel mails the recipient a short summary of the event.
type EmailChannel struct {
	dialer MailDialer
	from   string
}

// NewSMTPDialer builds a STARTTLS dialer for the given server.
func NewSMTPDialer(host string, port int, username, password string) *mail.Dialer {
	d := mail.NewDialer(host, port, username, password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{ServerName: host}
	return d
}

func NewEmailChannel(dialer MailDialer, from string) *EmailChannel {
	return &EmailChannel{dialer: dialer, from: from}
}

func (c *EmailChannel) Name() string { return "email" }

// Deliver skips recipients without an address.
func (c *EmailChannel) Deliver(ctx context.Context, msg Message) error {
	if msg.Recipient.Email == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := mail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetAddressHeader("To", msg.Recipient.Email, msg.Recipient.Name)
	m.SetHeader("Subject", subjectFor(msg))
	m.SetBody("text/plain", bodyFor(msg))

	if err := c.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.Recipient.Email, err)
	}
	return nil
}

func subjectFor(msg Message) string {
	identifier, _ := msg.Payload["identifier"].(string)
	switch msg.Event {
	case EventReviewRequested:
		return "Review requested: " + identifier
	case EventDecisionRecorded:
		return "Decision recorded: " + identifier
	case EventResubmitted:
		return "Resubmitted for review: " + identifier
	case EventActiveVersionChanged:
		return "Active version changed: " + identifier
	case EventDeactivationRequested:
		return "Deactivation requested: " + identifier
	case EventDeactivationDecided:
		return "Deactivation decided: " + identifier
	}
	return "Compliance update: " + identifier
}

func bodyFor(msg Message) string {
	var b strings.Builder
	name := msg.Recipient.Name
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hello %s,\n\n%s\n\n", name, subjectFor(msg))

	keys := make([]string, 0, len(msg.Payload))
	for k := range msg.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %v\n", k, msg.Payload[k])
	}
	return b.String()
}
