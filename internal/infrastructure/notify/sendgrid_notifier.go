// Package notify delivers risk alerts to student contacts.
package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/Aditya-max148/student-risk-dashboard/internal/config"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/utils"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendGridNotifier e-mails alerts through the SendGrid v3 API.
type SendGridNotifier struct {
	key        string
	host       string
	from       *sgmail.Email
	subjPrefix string
	logger     logger.Logger
}

var _ service.Notifier = (*SendGridNotifier)(nil)

// NewSendGridNotifier creates an e-mail notifier from the alerts config.
func NewSendGridNotifier(cfg config.AlertsConfig, log logger.Logger) *SendGridNotifier {
	fromName := cfg.FromName
	if fromName == "" {
		fromName = constants.ServiceName
	}
	return &SendGridNotifier{
		key:        cfg.SendGridAPIKey,
		host:       sendgridHost,
		from:       sgmail.NewEmail(fromName, cfg.FromEmail),
		subjPrefix: "[" + fromName + "] ",
		logger:     log.WithComponent("sendgrid"),
	}
}

func (n *SendGridNotifier) Channel() string { return service.ChannelEmail }

// Notify sends one message synchronously. A 4xx/5xx reply is an error.
func (n *SendGridNotifier) Notify(ctx context.Context, msg service.AlertMessage) error {
	req := sendgrid.GetRequest(n.key, sendgridEndpoint, n.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(n.prepare(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		n.logger.Error(ctx, "sending email", err, logger.Fields{"to": utils.MaskEmail(msg.ToEmail)})
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		n.logger.Warn(ctx, "sendgrid rejected email", logger.Fields{
			"status": res.StatusCode,
			"to":     utils.MaskEmail(msg.ToEmail),
		})
		return fmt.Errorf("sendgrid status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

func (n *SendGridNotifier) prepare(msg service.AlertMessage) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = n.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToEmail))

	m := sgmail.NewV3Mail()
	m.SetFrom(n.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Body))
	return m
}
