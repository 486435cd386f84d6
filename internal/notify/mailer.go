// Package notify sends transactional emails. Delivery is best effort; money
// movement never waits on, or fails because of, a mail server.
package notify

import (
	"fmt"
	"net/smtp"

	"unitedbank/internal/config"
	"unitedbank/internal/money"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

type Mailer struct {
	cfg    *config.Config
	logger *logrus.Logger
}

func NewMailer(cfg *config.Config, logger *logrus.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// SendRequestNotice tells a payer that someone requested money from them.
// Without SMTP configuration it logs and returns, which keeps local
// development working with no mail server.
func (m *Mailer) SendRequestNotice(to, requesterName string, amountMinor int64, description string) {
	if m.cfg.SMTPHost == "" {
		m.logger.WithFields(logrus.Fields{
			"to":     to,
			"amount": money.FormatMinor(amountMinor),
		}).Debug("smtp not configured, skipping request notice")
		return
	}
	e := email.NewEmail()
	e.From = m.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("%s requested $%s", requesterName, money.FormatMinor(amountMinor))
	body := fmt.Sprintf(
		"%s has requested $%s from you.\n\nNote: %s\n\nLog in to United Bank to pay or decline this request.\n",
		requesterName, money.FormatMinor(amountMinor), description,
	)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", m.cfg.SMTPHost, m.cfg.SMTPPort)
	auth := smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		m.logger.WithError(err).WithField("to", to).Error("failed to send request notice")
		return
	}
	m.logger.WithField("to", to).Info("request notice sent")
}
