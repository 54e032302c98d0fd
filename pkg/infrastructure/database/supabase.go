package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	shared "github.com/Megloux/mosaic/pkg"
	"github.com/Megloux/mosaic/pkg/backend"
	apperrors "github.com/Megloux/mosaic/pkg/errors"
	"github.com/Megloux/mosaic/pkg/execution"
	"github.com/Megloux/mosaic/pkg/exercises"
	"github.com/Megloux/mosaic/pkg/routine"
)

// SupabaseAdapter implements the Database interface on Supabase tables
// through a PostgREST client.
type SupabaseAdapter struct {
	client *backend.Client
}

func NewSupabaseAdapter(client *backend.Client) *SupabaseAdapter {
	return &SupabaseAdapter{client: client}
}

// --- Executions ---

func (a *SupabaseAdapter) SetExecution(ctx context.Context, record *execution.Record) error {
	return a.client.From(shared.CollectionExecutions).Upsert(ctx, record, "execution_id")
}

func (a *SupabaseAdapter) UpdateExecution(ctx context.Context, id string, data map[string]interface{}) error {
	return a.client.From(shared.CollectionExecutions).Eq("execution_id", id).Update(ctx, data)
}

// --- Exercises ---

func (a *SupabaseAdapter) UpsertExercises(ctx context.Context, batch []exercises.Exercise) error {
	if len(batch) == 0 {
		return nil
	}
	return a.client.From(shared.CollectionExercises).Upsert(ctx, batch, "slug")
}

func (a *SupabaseAdapter) ListExercises(ctx context.Context) ([]exercises.Exercise, error) {
	var out []exercises.Exercise
	if err := a.client.From(shared.CollectionExercises).Order("name", true).Select(ctx, "*", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *SupabaseAdapter) GetExercise(ctx context.Context, slug string) (*exercises.Exercise, error) {
	var out []exercises.Exercise
	if err := a.client.From(shared.CollectionExercises).Eq("slug", slug).Limit(1).Select(ctx, "*", &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, apperrors.ErrExerciseNotFound.WithMetadata("slug", slug)
	}
	return &out[0], nil
}

// --- Routines ---

func (a *SupabaseAdapter) SaveRoutine(ctx context.Context, r *routine.Routine) error {
	if err := prepareRoutine(r); err != nil {
		return err
	}
	return a.client.From(shared.CollectionRoutines).Upsert(ctx, r, "id")
}

func (a *SupabaseAdapter) ListRoutines(ctx context.Context, userID string) ([]*routine.Routine, error) {
	var out []*routine.Routine
	err := a.client.From(shared.CollectionRoutines).
		Eq("user_id", userID).
		Order("created_at", false).
		Select(ctx, "*", &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// prepareRoutine validates r and fills its ID and creation time on first save.
func prepareRoutine(r *routine.Routine) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}
