package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/hireloop/hireloop/internal/config"
)

// smtpNotifier delivers events as plain-text mail to a platform inbox that
// the outer notification pipeline fans out from.
type smtpNotifier struct {
	log  *zap.Logger
	addr string
	from string
	to   string
	auth smtp.Auth
}

func NewSMTPNotifier(cfg config.Config, log *zap.Logger) Notifier {
	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &smtpNotifier{
		log:  log.Named("notification.smtp"),
		addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from: cfg.SMTPFrom,
		to:   cfg.SMTPTo,
		auth: auth,
	}
}

func (n *smtpNotifier) Notify(_ context.Context, evt Event) error {
	subject := subjectFor(evt.Type)
	body := fmt.Sprintf(
		"event: %s\r\napplication: %d\r\ncandidate: %d\r\norganization: %d\r\njob: %d\r\n",
		evt.Type, evt.ApplicationID, evt.CandidateID, evt.OrganizationID, evt.JobID,
	)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.from)
	fmt.Fprintf(&msg, "To: %s\r\n", n.to)
	fmt.Fprintf(&msg, "Subject: %s\r\n\r\n", subject)
	msg.WriteString(body)

	return smtp.SendMail(n.addr, n.auth, n.from, []string{n.to}, []byte(msg.String()))
}

func subjectFor(t EventType) string {
	switch t {
	case EventMutualMatch:
		return "Mutual match confirmed"
	case EventMatchFulfilled:
		return "Match fulfilled"
	default:
		return "New interest received"
	}
}
