package pubsub

import (
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// NewCloudEvent builds a CloudEvent v1.0 with a fresh ID and JSON data.
func NewCloudEvent(source, eventType string, data interface{}) (cloudevents.Event, error) {
	e := cloudevents.NewEvent(cloudevents.VersionV1)
	e.SetID(uuid.NewString())
	e.SetType(eventType)
	e.SetSource(source)
	e.SetTime(time.Now().UTC())

	if data != nil {
		if err := e.SetData(cloudevents.ApplicationJSON, data); err != nil {
			return e, err
		}
	}
	return e, e.Validate()
}
