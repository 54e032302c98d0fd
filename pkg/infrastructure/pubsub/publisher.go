package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"

	"cloud.google.com/go/pubsub"
	"github.com/cloudevents/sdk-go/v2/event"

	apperrors "github.com/Megloux/mosaic/pkg/errors"
)

// PubSubAdapter publishes CloudEvents as JSON Pub/Sub messages.
type PubSubAdapter struct {
	Client *pubsub.Client
}

func (a *PubSubAdapter) PublishCloudEvent(ctx context.Context, topicID string, e event.Event) (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("Failed to marshal CloudEvent", "topic", topicID, "error", err)
		return "", err
	}
	slog.Info("Publishing CloudEvent",
		"topic", topicID,
		"event_type", e.Type(),
		"event_id", e.ID(),
		"source", e.Source(),
		"size_bytes", len(data))

	res := a.Client.Topic(topicID).Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: eventAttributes(e),
	})
	msgID, err := res.Get(ctx)
	if err != nil {
		slog.Error("Failed to publish message", "topic", topicID, "error", err)
		return "", apperrors.ErrPubSubError.WithCause(err).WithMetadata("topic", topicID)
	}
	slog.Info("Message published successfully", "topic", topicID, "message_id", msgID)
	return msgID, nil
}

// LogPublisher logs events instead of publishing them. Used when
// ENABLE_PUBLISH is off.
type LogPublisher struct{}

func (p *LogPublisher) PublishCloudEvent(ctx context.Context, topicID string, e event.Event) (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	slog.Info("MOCK PUBLISH", "topic", topicID, "data", string(data), "attributes", eventAttributes(e))
	return "mock-" + e.ID(), nil
}

func eventAttributes(e event.Event) map[string]string {
	return map[string]string{
		"ce-id":     e.ID(),
		"ce-type":   e.Type(),
		"ce-source": e.Source(),
	}
}
