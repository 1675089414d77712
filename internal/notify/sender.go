package notify

import "log/slog"

// Sender delivers a rendered message to a set of recipients. Delivery is
// best-effort: the engine logs failures and moves on, retry is the sender's
// concern.
type Sender interface {
	Send(subject, body string, recipients []string) error
}

// LogSender writes outbound messages to the structured log. Used in
// development and as the default when no mail transport is configured.
type LogSender struct{}

func (LogSender) Send(subject, body string, recipients []string) error {
	slog.Info("notification sent", "subject", subject, "recipients", len(recipients))
	slog.Debug("notification body", "subject", subject, "body", body)
	return nil
}
