package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier implements Notifier by logging instead of sending mail.
// Used when no mail API key is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendWelcome(ctx context.Context, email string, conditions []string) error {
	n.log.Info("welcome mail skipped, no mail provider configured",
		zap.String("to", email),
		zap.Strings("conditions", conditions),
	)
	return nil
}
