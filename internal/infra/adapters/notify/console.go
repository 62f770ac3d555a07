package notify

import (
	"context"

	"horde-image-client/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ adapter.Notifier = (*ConsoleNotifier)(nil)

// ConsoleNotifier surfaces notices through the structured log. Always wired;
// remote notifiers are layered on top of it.
type ConsoleNotifier struct {
	log *zerolog.Logger
}

func NewConsoleNotifier(logger *zerolog.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{log: logger}
}

func (n *ConsoleNotifier) Notify(_ context.Context, notice adapter.Notice) error {
	ev := n.log.Info()
	if notice.Severity == adapter.SeverityError {
		ev = n.log.Error()
	}
	if notice.Code != 0 {
		ev = ev.Int("code", notice.Code)
	}
	ev.Msg(notice.Message)
	return nil
}
