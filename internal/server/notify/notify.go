// Package notify delivers consent requests to parents.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"text/template"
	"time"

	"github.com/dmitrijs2005/ageguard/internal/logging"
	"github.com/dmitrijs2005/ageguard/internal/server/models"
)

var consentBody = template.Must(template.New("consent").Parse(`Hello,

{{.ChildName}} (age {{.ChildAge}}) has asked to make purchases.

To approve or decline, open the link below:

{{.Link}}

The link is valid until {{.Expires}}.
If you did not expect this message, you can ignore it.
`))

// sendMail is the net/smtp entry point; tests replace it.
var sendMail = smtp.SendMail

type SMTPConfig struct {
	Addr     string
	User     string
	Password string
	From     string
	Location *time.Location
}

// SMTPNotifier sends the consent link by plain SMTP.
type SMTPNotifier struct {
	cfg SMTPConfig
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) NotifyConsentRequest(ctx context.Context, notice models.ConsentNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := n.message(notice)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if n.cfg.User != "" {
		host := n.cfg.Addr
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", n.cfg.User, n.cfg.Password, host)
	}

	if err := sendMail(n.cfg.Addr, auth, n.cfg.From, []string{notice.ParentEmail}, msg); err != nil {
		return fmt.Errorf("send consent mail: %w", err)
	}
	return nil
}

func (n *SMTPNotifier) message(notice models.ConsentNotice) ([]byte, error) {
	var body bytes.Buffer
	err := consentBody.Execute(&body, struct {
		ChildName string
		ChildAge  int
		Link      string
		Expires   string
	}{
		ChildName: notice.ChildName,
		ChildAge:  notice.ChildAge,
		Link:      notice.Link,
		Expires:   notice.ExpiresAt.In(n.cfg.Location).Format("2006-01-02 15:04 MST"),
	})
	if err != nil {
		return nil, fmt.Errorf("render consent mail: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", notice.ParentEmail)
	msg.WriteString("Subject: Parental consent request\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(strings.ReplaceAll(body.String(), "\n", "\r\n"))
	return msg.Bytes(), nil
}

// LogNotifier writes the notice to the log instead of sending it. It is
// used when no mail server is configured.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyConsentRequest(ctx context.Context, notice models.ConsentNotice) error {
	n.log.Info(ctx, "consent request (mail disabled)",
		"parent_email", notice.ParentEmail,
		"child_name", notice.ChildName,
		"link", notice.Link,
		"expires_at", notice.ExpiresAt)
	return nil
}
