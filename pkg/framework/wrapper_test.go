package framework

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/google/go-cmp/cmp"

	"github.com/Megloux/mosaic/pkg/bootstrap"
	"github.com/Megloux/mosaic/pkg/execution"
	"github.com/Megloux/mosaic/pkg/testing/mocks"
	"github.com/Megloux/mosaic/pkg/types"
)

// statusRecorder captures the status transitions written for an execution.
func statusRecorder(statuses *[]string) *mocks.MockDatabase {
	return &mocks.MockDatabase{
		SetExecutionFunc: func(ctx context.Context, record *execution.Record) error {
			*statuses = append(*statuses, string(record.Status))
			return nil
		},
		UpdateExecutionFunc: func(ctx context.Context, id string, data map[string]interface{}) error {
			if s, ok := data["status"].(string); ok {
				*statuses = append(*statuses, s)
			}
			return nil
		},
	}
}

func TestWrapCloudEvent(t *testing.T) {
	var statuses []string
	svc := &bootstrap.Service{DB: statusRecorder(&statuses)}

	handler := func(ctx context.Context, e event.Event, fwCtx *FrameworkContext) (interface{}, error) {
		if fwCtx.Service != svc {
			t.Error("Service not injected correctly")
		}
		if fwCtx.ExecutionID == "" {
			t.Error("ExecutionID not generated")
		}
		if fwCtx.Logger == nil {
			t.Error("Logger not injected")
		}
		return "ok", nil
	}

	e := event.New()
	e.SetID("evt-1")
	e.SetType(types.EventTypeStorageFinalized)
	e.SetSource("//storage.googleapis.com/projects/_/buckets/seed")

	if err := WrapCloudEvent("test-service", svc, handler)(context.Background(), e); err != nil {
		t.Fatalf("Handler failed: %v", err)
	}

	want := []string{"PENDING", "STARTED", "SUCCESS"}
	if diff := cmp.Diff(want, statuses); diff != "" {
		t.Errorf("status transitions (-want +got):\n%s", diff)
	}
}

func TestWrapCloudEvent_Failure(t *testing.T) {
	var statuses []string
	svc := &bootstrap.Service{DB: statusRecorder(&statuses)}

	handler := func(ctx context.Context, e event.Event, fwCtx *FrameworkContext) (interface{}, error) {
		return nil, errors.New("simulated error")
	}

	err := WrapCloudEvent("test-service", svc, handler)(context.Background(), event.New())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	want := []string{"PENDING", "STARTED", "FAILED"}
	if diff := cmp.Diff(want, statuses); diff != "" {
		t.Errorf("status transitions (-want +got):\n%s", diff)
	}
}

func TestWrapCloudEvent_UnwrapsNestedEvent(t *testing.T) {
	svc := &bootstrap.Service{DB: &mocks.MockDatabase{}}

	expectedID := "inner-event-123"
	expectedType := "com.mosaic.exercises.imported"

	handler := func(ctx context.Context, e event.Event, fwCtx *FrameworkContext) (interface{}, error) {
		if e.ID() != expectedID {
			t.Errorf("Expected event ID %s, got %s", expectedID, e.ID())
		}
		if e.Type() != expectedType {
			t.Errorf("Expected event type %s, got %s", expectedType, e.Type())
		}
		return "ok", nil
	}

	inner := event.New()
	inner.SetID(expectedID)
	inner.SetType(expectedType)
	inner.SetSource("/test/source")
	_ = inner.SetData(event.ApplicationJSON, map[string]int{"importedCount": 5})
	innerBytes, _ := json.Marshal(inner)

	var psMsg types.PubSubMessage
	psMsg.Message.Data = innerBytes

	outer := event.New()
	outer.SetID("outer-msg-id")
	outer.SetType(types.EventTypePubSubPublished)
	outer.SetSource("//pubsub")
	_ = outer.SetData(event.ApplicationJSON, psMsg)

	if err := WrapCloudEvent("test-service", svc, handler)(context.Background(), outer); err != nil {
		t.Fatalf("Handler failed: %v", err)
	}
}

func TestWrapJob_ReturnsOutputsOnFailure(t *testing.T) {
	var statuses []string
	var startInputs interface{}
	db := statusRecorder(&statuses)
	record := db.UpdateExecutionFunc
	db.UpdateExecutionFunc = func(ctx context.Context, id string, data map[string]interface{}) error {
		if data["status"] == "STARTED" {
			startInputs = data["inputs_json"]
		}
		return record(ctx, id, data)
	}
	svc := &bootstrap.Service{DB: db}

	job := WrapJob("import-exercises", svc, "cli", map[string]string{"source": "x.json"},
		func(ctx context.Context, fwCtx *FrameworkContext) (interface{}, error) {
			return map[string]bool{"success": false}, errors.New("bad file")
		})

	out, err := job(context.Background())
	if err == nil || err.Error() != "bad file" {
		t.Fatalf("expected handler error, got %v", err)
	}
	if diff := cmp.Diff(map[string]bool{"success": false}, out); diff != "" {
		t.Errorf("outputs (-want +got):\n%s", diff)
	}
	if startInputs != `{"source":"x.json"}` {
		t.Errorf("inputs_json = %v", startInputs)
	}
	if diff := cmp.Diff([]string{"PENDING", "STARTED", "FAILED"}, statuses); diff != "" {
		t.Errorf("status transitions (-want +got):\n%s", diff)
	}
}

func TestWrapJob_ContinuesWhenLoggingFails(t *testing.T) {
	svc := &bootstrap.Service{DB: &mocks.MockDatabase{
		SetExecutionFunc: func(ctx context.Context, record *execution.Record) error {
			return errors.New("db down")
		},
		UpdateExecutionFunc: func(ctx context.Context, id string, data map[string]interface{}) error {
			return errors.New("db down")
		},
	}}

	ran := false
	job := WrapJob("svc", svc, "cli", nil, func(ctx context.Context, fwCtx *FrameworkContext) (interface{}, error) {
		ran = true
		return nil, nil
	})
	if _, err := job(context.Background()); err != nil {
		t.Fatalf("job failed: %v", err)
	}
	if !ran {
		t.Error("handler must run even when execution logging fails")
	}
}
