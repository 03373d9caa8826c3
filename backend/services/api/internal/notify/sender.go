package notify

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Delivery channels.
const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// LogSender stands in for the SMS/email provider and only logs the delivery.
type LogSender struct {
	logger *zap.Logger
	// revealCode includes the code in the log line; only set outside production.
	revealCode bool
}

// NewLogSender returns sender.
func NewLogSender(logger *zap.Logger, revealCode bool) *LogSender {
	return &LogSender{logger: logger, revealCode: revealCode}
}

// SendOTP pretends to deliver code to the recipient.
func (s *LogSender) SendOTP(ctx context.Context, channel, recipient, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fields := []zap.Field{
		zap.String("channel", channel),
		zap.String("recipient", mask(recipient)),
	}
	if s.revealCode {
		fields = append(fields, zap.String("code", code))
	}
	s.logger.Info("otp delivered (mock)", fields...)
	return nil
}

// mask keeps the last four characters of a phone number or the domain of an email.
func mask(recipient string) string {
	if at := strings.LastIndex(recipient, "@"); at > 0 {
		return "***" + recipient[at:]
	}
	if len(recipient) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(recipient)-4) + recipient[len(recipient)-4:]
}
