package notify

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Aditya-max148/student-risk-dashboard/internal/config"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/utils"
)

// maxSMSLength caps a message at ten concatenated segments.
const maxSMSLength = 1530

// messageCreator is the slice of the Twilio REST client the notifier uses.
type messageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

// TwilioNotifier texts alerts to a contact's phone through Twilio.
type TwilioNotifier struct {
	api    messageCreator
	from   string
	logger logger.Logger
}

var _ service.Notifier = (*TwilioNotifier)(nil)

// NewTwilioNotifier creates an SMS notifier from the alerts config.
func NewTwilioNotifier(cfg config.AlertsConfig, log logger.Logger) *TwilioNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &TwilioNotifier{
		api:    client.Api,
		from:   cfg.TwilioFromNumber,
		logger: log.WithComponent("twilio"),
	}
}

func (n *TwilioNotifier) Channel() string { return service.ChannelSMS }

// Notify sends msg.Text, or the body when no short text was rendered.
func (n *TwilioNotifier) Notify(ctx context.Context, msg service.AlertMessage) error {
	if msg.ToPhone == "" {
		return fmt.Errorf("twilio: contact has no phone number")
	}
	text := msg.Text
	if text == "" {
		text = msg.Body
	}
	if len(text) > maxSMSLength {
		text = text[:maxSMSLength]
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(msg.ToPhone)
	params.SetFrom(n.from)
	params.SetBody(text)

	res, err := n.api.CreateMessage(params)
	if err != nil {
		n.logger.Error(ctx, "sending sms", err, logger.Fields{"to": utils.MaskPhone(msg.ToPhone)})
		return fmt.Errorf("twilio create message: %w", err)
	}
	if res != nil && res.Sid != nil {
		n.logger.Debug(ctx, "sms queued", logger.Fields{"sid": *res.Sid, "to": utils.MaskPhone(msg.ToPhone)})
	}
	return nil
}
