package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/membership/internal/membership/metrics"
	"github.com/aussiebroadwan/membership/pkg/slogx"
)

// deliver runs send under the delivery policy. In strict mode a failure is
// returned as ErrMailDelivery so the caller's transaction rolls back; in
// advisory mode it is only logged.
func deliver(ctx context.Context, strict bool, m *metrics.Metrics, kind string, send func() error) error {
	log := slogx.FromContext(ctx)

	err := send()
	m.Mail(kind, err)
	if err == nil {
		return nil
	}

	if strict {
		log.Error("mail delivery failed", slog.String("kind", kind), slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrMailDelivery, err)
	}
	log.Warn("mail delivery failed, continuing", slog.String("kind", kind), slog.Any("error", err))
	return nil
}
