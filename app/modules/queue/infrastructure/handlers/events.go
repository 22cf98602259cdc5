package queuehandlers

import (
	"context"
	"errors"
	"log/slog"

	queueservice "github.com/Black-And-White-Club/antrian/app/modules/queue/application"
	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
	"github.com/Black-And-White-Club/antrian/pkg/events"
	"github.com/Black-And-White-Club/antrian/pkg/observability/attr"
	"go.opentelemetry.io/otel/trace"
)

// EventHandlers consumes events other modules publish.
type EventHandlers struct {
	service queueservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewEventHandlers creates the bus-facing handlers of the queue module.
func NewEventHandlers(service queueservice.Service, logger *slog.Logger, tracer trace.Tracer) *EventHandlers {
	return &EventHandlers{service: service, logger: logger, tracer: tracer}
}

// HandleSettingsUpdated rebalances pending rounds when a user's games per
// round changed. Only transient storage errors are returned, so the router
// retries those and acks everything else.
func (h *EventHandlers) HandleSettingsUpdated(ctx context.Context, payload *events.SettingsUpdatedPayloadV1) error {
	if !payload.CapacityChanged {
		return nil
	}
	if h.tracer != nil {
		var span trace.Span
		ctx, span = h.tracer.Start(ctx, "queue.HandleSettingsUpdated")
		defer span.End()
	}

	_, err := h.service.Rebalance(ctx, queuedomain.UserID(payload.UserID))
	if err == nil {
		return nil
	}
	if errors.Is(err, queuedomain.ErrTransientStorage) {
		return err
	}
	h.logger.WarnContext(ctx, "Rebalance after settings change failed",
		attr.ExtractCorrelationID(ctx),
		attr.UserID(payload.UserID),
		attr.Int("capacity", payload.Capacity),
		attr.Error(err),
	)
	return nil
}
