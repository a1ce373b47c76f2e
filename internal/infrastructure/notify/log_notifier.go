package notify

import (
	"context"

	"github.com/Aditya-max148/student-risk-dashboard/internal/config"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/utils"
)

// LogNotifier writes alerts to the log instead of sending them. It stands in
// for SendGrid or Twilio when their credentials are not configured.
type LogNotifier struct {
	channel string
	logger  logger.Logger
}

var _ service.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(channel string, log logger.Logger) *LogNotifier {
	return &LogNotifier{channel: channel, logger: log.WithComponent("alerts")}
}

func (n *LogNotifier) Channel() string { return n.channel }

func (n *LogNotifier) Notify(ctx context.Context, msg service.AlertMessage) error {
	fields := logger.Fields{
		"channel":    n.channel,
		"student_id": msg.StudentID,
	}
	if n.channel == service.ChannelSMS {
		fields["to"] = utils.MaskPhone(msg.ToPhone)
		fields["text"] = msg.Text
	} else {
		fields["to"] = utils.MaskEmail(msg.ToEmail)
		fields["subject"] = msg.Subject
		fields["body"] = msg.Body
	}
	n.logger.Info(ctx, "alert", fields)
	return nil
}

// NewNotifiers returns one notifier per delivery channel: SendGrid or the log
// for e-mail, Twilio or the log for SMS.
func NewNotifiers(cfg config.AlertsConfig, log logger.Logger) []service.Notifier {
	notifiers := make([]service.Notifier, 0, 2)
	if cfg.SendGridAPIKey != "" {
		notifiers = append(notifiers, NewSendGridNotifier(cfg, log))
	} else {
		notifiers = append(notifiers, NewLogNotifier(service.ChannelEmail, log))
	}
	if cfg.SMSEnabled() {
		notifiers = append(notifiers, NewTwilioNotifier(cfg, log))
	} else {
		notifiers = append(notifiers, NewLogNotifier(service.ChannelSMS, log))
	}
	return notifiers
}
