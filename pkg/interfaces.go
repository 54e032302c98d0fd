package shared

import (
	"context"

	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/Megloux/mosaic/pkg/execution"
	"github.com/Megloux/mosaic/pkg/exercises"
	"github.com/Megloux/mosaic/pkg/routine"
)

// --- Persistence Interfaces ---

type ExerciseStore interface {
	UpsertExercises(ctx context.Context, batch []exercises.Exercise) error
	ListExercises(ctx context.Context) ([]exercises.Exercise, error)
	GetExercise(ctx context.Context, slug string) (*exercises.Exercise, error)
}

type RoutineStore interface {
	SaveRoutine(ctx context.Context, r *routine.Routine) error
	ListRoutines(ctx context.Context, userID string) ([]*routine.Routine, error)
}

type Database interface {
	execution.Database
	ExerciseStore
	RoutineStore
}

// --- Messaging Interfaces ---

type Publisher interface {
	PublishCloudEvent(ctx context.Context, topic string, e event.Event) (string, error)
}

// --- Storage Interfaces ---

type BlobStore interface {
	Write(ctx context.Context, bucket, object string, data []byte) error
	Read(ctx context.Context, bucket, object string) ([]byte, error)
}

// --- Secrets Interface ---

type SecretStore interface {
	GetSecret(ctx context.Context, projectID, name string) (string, error)
}
