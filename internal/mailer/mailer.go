package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/fwwzhai/thrifty-backend/internal/app/config"
	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
)

// Mailer sends transactional email to sellers. Delivery is best
// effort; callers log failures and move on.
type Mailer struct {
	cfg config.SMTPConfig
}

func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) SendSaleNotification(toEmail string, listing *entity.Listing) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.SenderEmail)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Your item has sold")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Good news! Your listing '%s' has been purchased. Check your sold items for details.",
		listing.Title,
	))

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	return d.DialAndSend(msg)
}
