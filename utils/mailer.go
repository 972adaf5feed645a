package utils

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/vnkhanh/pathfinder-backend/config"
)

type Mail struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

var mailer struct {
	apiKey string
	from   string
}

// SendMail có thể được thay thế trong test.
var SendMail = sendWithSendgrid

func InitMailer(cfg *config.Config) {
	mailer.apiKey = cfg.SendgridAPIKey
	mailer.from = cfg.MailFrom
}

func sendWithSendgrid(m Mail) error {
	if mailer.apiKey == "" {
		Log.Info().Str("to", m.To).Str("subject", m.Subject).Msg("SENDGRID_API_KEY chưa cấu hình, bỏ qua gửi email")
		return nil
	}

	from := sgmail.NewEmail("Pathfinder", mailer.from)
	to := sgmail.NewEmail(m.ToName, m.To)
	html := m.HTML
	if html == "" {
		html = m.Text
	}
	msg := sgmail.NewSingleEmail(from, m.Subject, to, m.Text, html)

	res, err := sendgrid.NewSendClient(mailer.apiKey).Send(msg)
	if err != nil {
		return errors.Wrap(err, "sending email")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("sending email - status: %d - body: %s", res.StatusCode, res.Body)
	}
	return nil
}
