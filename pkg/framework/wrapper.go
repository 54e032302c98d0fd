package framework

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/Megloux/mosaic/pkg/bootstrap"
	"github.com/Megloux/mosaic/pkg/execution"
	"github.com/Megloux/mosaic/pkg/types"
)

// FrameworkContext is handed to every wrapped handler.
type FrameworkContext struct {
	Service     *bootstrap.Service
	Logger      *slog.Logger
	ExecutionID string
}

// HandlerFunc handles one CloudEvent. The returned outputs are recorded on
// the execution.
type HandlerFunc func(ctx context.Context, e event.Event, fwCtx *FrameworkContext) (interface{}, error)

// JobFunc is a handler with no triggering event, such as a CLI run.
type JobFunc func(ctx context.Context, fwCtx *FrameworkContext) (interface{}, error)

// WrapCloudEvent wraps a handler with execution logging. Pub/Sub envelopes
// carrying a nested CloudEvent are unwrapped before the handler sees them.
func WrapCloudEvent(serviceName string, svc *bootstrap.Service, handler HandlerFunc) func(context.Context, event.Event) error {
	return func(ctx context.Context, e event.Event) error {
		inner := unwrapPubSub(e)
		inputs := map[string]interface{}{
			"event_id":   inner.ID(),
			"event_type": inner.Type(),
			"source":     inner.Source(),
		}
		_, err := run(ctx, serviceName, svc, triggerFor(e), inputs, func(ctx context.Context, fwCtx *FrameworkContext) (interface{}, error) {
			return handler(ctx, inner, fwCtx)
		})
		return err
	}
}

// WrapJob wraps a one-shot job with execution logging. The returned function
// reports the handler's outputs even when it fails.
func WrapJob(serviceName string, svc *bootstrap.Service, trigger string, inputs interface{}, handler JobFunc) func(context.Context) (interface{}, error) {
	return func(ctx context.Context) (interface{}, error) {
		return run(ctx, serviceName, svc, trigger, inputs, handler)
	}
}

func run(ctx context.Context, serviceName string, svc *bootstrap.Service, trigger string, inputs interface{}, handler JobFunc) (interface{}, error) {
	logger := slog.Default().With("service", serviceName)

	execID, err := execution.LogPending(ctx, svc.DB, serviceName, execution.Options{TriggerType: trigger})
	if err != nil {
		// Logging must not block the work itself.
		logger.Error("Failed to log execution pending", "error", err)
	}
	logger = logger.With("execution_id", execID)

	if err := execution.LogStart(ctx, svc.DB, execID, inputs); err != nil {
		logger.Warn("Failed to log execution start", "error", err)
	}
	logger.Info("Function started", "trigger", trigger)

	fwCtx := &FrameworkContext{
		Service:     svc,
		Logger:      logger,
		ExecutionID: execID,
	}
	outputs, handlerErr := handler(ctx, fwCtx)

	if handlerErr != nil {
		logger.Error("Function failed", "error", handlerErr)
		if logErr := execution.LogFailure(ctx, svc.DB, execID, handlerErr, outputs); logErr != nil {
			logger.Warn("Failed to log execution failure", "error", logErr)
		}
		return outputs, handlerErr
	}

	logger.Info("Function completed successfully")
	if logErr := execution.LogSuccess(ctx, svc.DB, execID, outputs); logErr != nil {
		logger.Warn("Failed to log execution success", "error", logErr)
	}
	return outputs, nil
}

func triggerFor(e event.Event) string {
	switch e.Type() {
	case types.EventTypePubSubPublished:
		return "pubsub"
	case types.EventTypeStorageFinalized:
		return "storage"
	default:
		return "cloudevent"
	}
}

func unwrapPubSub(e event.Event) event.Event {
	if e.Type() != types.EventTypePubSubPublished {
		return e
	}
	var msg types.PubSubMessage
	if err := json.Unmarshal(e.Data(), &msg); err != nil || len(msg.Message.Data) == 0 {
		return e
	}
	var inner event.Event
	if err := json.Unmarshal(msg.Message.Data, &inner); err != nil || inner.ID() == "" || inner.Type() == "" {
		return e
	}
	return inner
}
