package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/antrian/pkg/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// NewRouter builds a watermill router with correlation, retry and panic
// recovery middleware. A non-nil registry adds Prometheus handler metrics.
func NewRouter(logger *slog.Logger, registry *prometheus.Registry) (*message.Router, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 15 * time.Second}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create watermill router: %w", err)
	}

	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			Multiplier:      2,
			Logger:          wmLogger,
		}.Middleware,
		middleware.Recoverer,
	)

	if registry != nil {
		builder := metrics.NewPrometheusMetricsBuilder(registry, "antrian", "events")
		builder.AddPrometheusRouterMetrics(router)
	}

	return router, nil
}

// AddTypedHandler registers a consumer that decodes the JSON payload of each
// message on topic before calling handle. Undecodable messages are logged and
// acked so they do not block the subscription.
func AddTypedHandler[T any](
	router *message.Router,
	subscriber message.Subscriber,
	logger *slog.Logger,
	name, topic string,
	handle func(ctx context.Context, payload *T) error,
) {
	router.AddNoPublisherHandler(name, topic, subscriber, func(msg *message.Message) error {
		ctx := attr.WithCorrelationID(msg.Context(), middleware.MessageCorrelationID(msg))

		payload, err := Decode[T](msg)
		if err != nil {
			logger.WarnContext(ctx, "Dropping undecodable message",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", name),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			return nil
		}
		return handle(ctx, payload)
	})
}
