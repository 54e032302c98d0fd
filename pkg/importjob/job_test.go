package importjob

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudevents/sdk-go/v2/event"

	shared "github.com/Megloux/mosaic/pkg"
	"github.com/Megloux/mosaic/pkg/bootstrap"
	"github.com/Megloux/mosaic/pkg/exercises"
	"github.com/Megloux/mosaic/pkg/testing/mocks"
)

func writeSource(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "exercises.json")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNew_SuccessPublishesEvent(t *testing.T) {
	var upserted []exercises.Exercise
	var published []event.Event
	var topics []string
	svc := &bootstrap.Service{
		DB: &mocks.MockDatabase{
			UpsertExercisesFunc: func(ctx context.Context, batch []exercises.Exercise) error {
				upserted = append(upserted, batch...)
				return nil
			},
		},
		Pub: &mocks.MockPublisher{
			PublishCloudEventFunc: func(ctx context.Context, topic string, e event.Event) (string, error) {
				topics = append(topics, topic)
				published = append(published, e)
				return "msg-1", nil
			},
		},
	}

	src := writeSource(t, `[{"name":"Squat"},{"name":"Deadlift"}]`)
	res := New(svc, "cli", src)(context.Background())

	if !res.Success || res.ImportedCount != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(upserted) != 2 {
		t.Errorf("upserted %d exercises", len(upserted))
	}
	if len(published) != 1 || topics[0] != shared.TopicExercisesImported {
		t.Fatalf("expected one event on %s, got %v", shared.TopicExercisesImported, topics)
	}
	e := published[0]
	if e.Type() != shared.EventTypeExercisesImported {
		t.Errorf("event type = %s", e.Type())
	}
	var data ImportedEvent
	if err := json.Unmarshal(e.Data(), &data); err != nil {
		t.Fatal(err)
	}
	if data.ImportedCount != 2 || data.Source != src || !strings.HasPrefix(data.ExecutionID, ServiceName) {
		t.Errorf("unexpected event data %+v", data)
	}
}

func TestNew_FailureSkipsEvent(t *testing.T) {
	svc := &bootstrap.Service{
		DB: &mocks.MockDatabase{},
		Pub: &mocks.MockPublisher{
			PublishCloudEventFunc: func(ctx context.Context, topic string, e event.Event) (string, error) {
				t.Error("failed imports must not publish")
				return "", nil
			},
		},
	}

	res := New(svc, "cli", filepath.Join(t.TempDir(), "missing.json"))(context.Background())
	if res.Success || res.Error == "" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestNew_PublishFailureKeepsSuccess(t *testing.T) {
	svc := &bootstrap.Service{
		DB: &mocks.MockDatabase{},
		Pub: &mocks.MockPublisher{
			PublishCloudEventFunc: func(ctx context.Context, topic string, e event.Event) (string, error) {
				return "", errors.New("pubsub down")
			},
		},
	}

	res := New(svc, "cli", writeSource(t, `[{"name":"Plank"}]`))(context.Background())
	if !res.Success || res.ImportedCount != 1 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestNew_ReadsFromBlobStore(t *testing.T) {
	svc := &bootstrap.Service{
		DB: &mocks.MockDatabase{},
		Store: &mocks.MockBlobStore{
			ReadFunc: func(ctx context.Context, bucket, object string) ([]byte, error) {
				if bucket != "seed" || object != "ex.json" {
					t.Errorf("read gs://%s/%s", bucket, object)
				}
				return []byte(`[{"name":"Burpee"}]`), nil
			},
		},
	}

	res := New(svc, "storage", "gs://seed/ex.json")(context.Background())
	if !res.Success || res.ImportedCount != 1 {
		t.Errorf("unexpected result %+v", res)
	}
}
