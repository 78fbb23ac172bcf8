package events

import (
	"context"

	"go.uber.org/zap"

	"transporte/internal/utils"
)

// StartAudit writes one log line per published event.
func StartAudit(ctx context.Context, bus *Bus) error {
	for _, topic := range Topics {
		if err := bus.Subscribe(ctx, topic, logEvent); err != nil {
			return err
		}
	}
	return nil
}

func logEvent(ctx context.Context, ev Event) {
	utils.LogEvent(ctx, "audit", ev.Topic, "domain event",
		zap.Int64("departure_id", int64(ev.DepartureID)),
		zap.Int64("entity_id", int64(ev.EntityID)),
		zap.String("status", ev.Status),
		zap.Int64("actor_id", int64(ev.ActorID)),
	)
}
