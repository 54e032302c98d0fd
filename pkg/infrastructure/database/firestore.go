package database

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	shared "github.com/Megloux/mosaic/pkg"
	apperrors "github.com/Megloux/mosaic/pkg/errors"
	"github.com/Megloux/mosaic/pkg/execution"
	"github.com/Megloux/mosaic/pkg/exercises"
	"github.com/Megloux/mosaic/pkg/routine"
)

// FirestoreAdapter implements the Database interface on Firestore. Exercise
// documents are keyed by their deterministic ID so re-imports overwrite.
type FirestoreAdapter struct {
	Client *firestore.Client
}

func NewFirestoreAdapter(client *firestore.Client) *FirestoreAdapter {
	return &FirestoreAdapter{Client: client}
}

func (a *FirestoreAdapter) SetExecution(ctx context.Context, record *execution.Record) error {
	_, err := a.Client.Collection(shared.CollectionExecutions).Doc(record.ExecutionID).Set(ctx, record)
	return storageErr(err)
}

func (a *FirestoreAdapter) UpdateExecution(ctx context.Context, id string, data map[string]interface{}) error {
	_, err := a.Client.Collection(shared.CollectionExecutions).Doc(id).Set(ctx, data, firestore.MergeAll)
	return storageErr(err)
}

// --- Exercises ---

func (a *FirestoreAdapter) UpsertExercises(ctx context.Context, batch []exercises.Exercise) error {
	if len(batch) == 0 {
		return nil
	}
	col := a.Client.Collection(shared.CollectionExercises)
	bw := a.Client.BulkWriter(ctx)

	jobs := make([]*firestore.BulkWriterJob, 0, len(batch))
	for i := range batch {
		job, err := bw.Set(col.Doc(batch[i].ID), batch[i])
		if err != nil {
			bw.End()
			return storageErr(err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return storageErr(fmt.Errorf("exercise %s: %w", batch[i].Slug, err))
		}
	}
	return nil
}

func (a *FirestoreAdapter) ListExercises(ctx context.Context) ([]exercises.Exercise, error) {
	docs, err := a.Client.Collection(shared.CollectionExercises).OrderBy("name", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, storageErr(err)
	}
	out := make([]exercises.Exercise, 0, len(docs))
	for _, doc := range docs {
		var ex exercises.Exercise
		if err := doc.DataTo(&ex); err != nil {
			return nil, storageErr(err)
		}
		out = append(out, ex)
	}
	return out, nil
}

func (a *FirestoreAdapter) GetExercise(ctx context.Context, slug string) (*exercises.Exercise, error) {
	doc, err := a.Client.Collection(shared.CollectionExercises).Doc(exercises.IDForSlug(slug)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, apperrors.ErrExerciseNotFound.WithMetadata("slug", slug)
	}
	if err != nil {
		return nil, storageErr(err)
	}
	var ex exercises.Exercise
	if err := doc.DataTo(&ex); err != nil {
		return nil, storageErr(err)
	}
	return &ex, nil
}

// --- Routines ---

func (a *FirestoreAdapter) SaveRoutine(ctx context.Context, r *routine.Routine) error {
	if err := prepareRoutine(r); err != nil {
		return err
	}
	_, err := a.Client.Collection(shared.CollectionRoutines).Doc(r.ID).Set(ctx, r)
	return storageErr(err)
}

func (a *FirestoreAdapter) ListRoutines(ctx context.Context, userID string) ([]*routine.Routine, error) {
	docs, err := a.Client.Collection(shared.CollectionRoutines).
		Where("user_id", "==", userID).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, storageErr(err)
	}
	out := make([]*routine.Routine, 0, len(docs))
	for _, doc := range docs {
		r := &routine.Routine{}
		if err := doc.DataTo(r); err != nil {
			return nil, storageErr(err)
		}
		out = append(out, r)
	}
	return out, nil
}

func storageErr(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.ErrStorageError.WithCause(err)
}
