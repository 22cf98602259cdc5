package queuerouter

import (
	"context"
	"log/slog"

	queueservice "github.com/Black-And-White-Club/antrian/app/modules/queue/application"
	queuehandlers "github.com/Black-And-White-Club/antrian/app/modules/queue/infrastructure/handlers"
	"github.com/Black-And-White-Club/antrian/pkg/eventbus"
	"github.com/Black-And-White-Club/antrian/pkg/events"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// QueueRouter handles routing for events consumed by the queue module.
type QueueRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	tracer     trace.Tracer
}

// NewQueueRouter creates a new QueueRouter.
func NewQueueRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	tracer trace.Tracer,
) *QueueRouter {
	return &QueueRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		tracer:     tracer,
	}
}

// Configure registers the queue consumers on the shared router.
func (r *QueueRouter) Configure(_ context.Context, service queueservice.Service) error {
	handlers := queuehandlers.NewEventHandlers(service, r.logger, r.tracer)
	registerHandler(r, events.AccountSettingsUpdatedV1, handlers.HandleSettingsUpdated)
	return nil
}

func registerHandler[T any](r *QueueRouter, topic string, handle func(context.Context, *T) error) {
	eventbus.AddTypedHandler(r.Router, r.subscriber, r.logger, "queue."+topic, topic, handle)
}

// Close stops the router.
func (r *QueueRouter) Close() error {
	return r.Router.Close()
}
