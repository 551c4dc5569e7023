package mail

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/membership/pkg/slogx"
)

// DisabledSender drops every message. It is used when delivery is switched
// off, making mail advisory: callers never see a transport failure.
type DisabledSender struct{}

func (DisabledSender) Send(ctx context.Context, msg Message) error {
	slogx.FromContext(ctx).Info("mail delivery disabled, message skipped",
		slog.String("subject", msg.Subject),
	)
	return nil
}
