package mocks

import (
	"context"

	"github.com/cloudevents/sdk-go/v2/event"

	apperrors "github.com/Megloux/mosaic/pkg/errors"
	"github.com/Megloux/mosaic/pkg/execution"
	"github.com/Megloux/mosaic/pkg/exercises"
	"github.com/Megloux/mosaic/pkg/routine"
)

// --- Mock Database ---
type MockDatabase struct {
	SetExecutionFunc    func(ctx context.Context, record *execution.Record) error
	UpdateExecutionFunc func(ctx context.Context, id string, data map[string]interface{}) error

	UpsertExercisesFunc func(ctx context.Context, batch []exercises.Exercise) error
	ListExercisesFunc   func(ctx context.Context) ([]exercises.Exercise, error)
	GetExerciseFunc     func(ctx context.Context, slug string) (*exercises.Exercise, error)

	SaveRoutineFunc  func(ctx context.Context, r *routine.Routine) error
	ListRoutinesFunc func(ctx context.Context, userID string) ([]*routine.Routine, error)
}

func (m *MockDatabase) SetExecution(ctx context.Context, record *execution.Record) error {
	if m.SetExecutionFunc != nil {
		return m.SetExecutionFunc(ctx, record)
	}
	return nil
}

func (m *MockDatabase) UpdateExecution(ctx context.Context, id string, data map[string]interface{}) error {
	if m.UpdateExecutionFunc != nil {
		return m.UpdateExecutionFunc(ctx, id, data)
	}
	return nil
}

func (m *MockDatabase) UpsertExercises(ctx context.Context, batch []exercises.Exercise) error {
	if m.UpsertExercisesFunc != nil {
		return m.UpsertExercisesFunc(ctx, batch)
	}
	return nil
}

func (m *MockDatabase) ListExercises(ctx context.Context) ([]exercises.Exercise, error) {
	if m.ListExercisesFunc != nil {
		return m.ListExercisesFunc(ctx)
	}
	return nil, nil
}

func (m *MockDatabase) GetExercise(ctx context.Context, slug string) (*exercises.Exercise, error) {
	if m.GetExerciseFunc != nil {
		return m.GetExerciseFunc(ctx, slug)
	}
	return nil, apperrors.ErrExerciseNotFound
}

func (m *MockDatabase) SaveRoutine(ctx context.Context, r *routine.Routine) error {
	if m.SaveRoutineFunc != nil {
		return m.SaveRoutineFunc(ctx, r)
	}
	return nil
}

func (m *MockDatabase) ListRoutines(ctx context.Context, userID string) ([]*routine.Routine, error) {
	if m.ListRoutinesFunc != nil {
		return m.ListRoutinesFunc(ctx, userID)
	}
	return nil, nil
}

// --- Mock Publisher ---
type MockPublisher struct {
	PublishCloudEventFunc func(ctx context.Context, topic string, e event.Event) (string, error)
}

func (m *MockPublisher) PublishCloudEvent(ctx context.Context, topic string, e event.Event) (string, error) {
	if m.PublishCloudEventFunc != nil {
		return m.PublishCloudEventFunc(ctx, topic, e)
	}
	return "msg-id", nil
}

// --- Mock Storage ---
type MockBlobStore struct {
	WriteFunc func(ctx context.Context, bucket, object string, data []byte) error
	ReadFunc  func(ctx context.Context, bucket, object string) ([]byte, error)
}

func (m *MockBlobStore) Write(ctx context.Context, bucket, object string, data []byte) error {
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, bucket, object, data)
	}
	return nil
}

func (m *MockBlobStore) Read(ctx context.Context, bucket, object string) ([]byte, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, bucket, object)
	}
	return []byte("[]"), nil
}

// --- Mock Secrets ---
type MockSecretStore struct {
	GetSecretFunc func(ctx context.Context, projectID, name string) (string, error)
}

func (m *MockSecretStore) GetSecret(ctx context.Context, projectID, name string) (string, error) {
	if m.GetSecretFunc != nil {
		return m.GetSecretFunc(ctx, projectID, name)
	}
	return "mock-secret-value", nil
}
