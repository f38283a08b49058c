package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
	"github.com/aussiebroadwan/huproof/pkg/slogx"
)

// EventPublisher receives domain events after the state change they
// describe has committed.
type EventPublisher interface {
	Publish(ctx context.Context, e domain.Event) error
}

// publish is best effort. A nil publisher drops the event.
func publish(ctx context.Context, p EventPublisher, e domain.Event) {
	if p == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = domain.Now()
	}
	if err := p.Publish(ctx, e); err != nil {
		slogx.FromContext(ctx).WarnContext(ctx, "event publish failed",
			slog.String("type", string(e.Type)),
			slog.Any("error", err),
		)
	}
}
