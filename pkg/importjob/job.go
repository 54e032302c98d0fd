// Package importjob runs an exercise import as a logged execution and
// announces successful imports on Pub/Sub. It backs both the CLI and the
// storage-triggered function.
package importjob

import (
	"context"
	"errors"

	shared "github.com/Megloux/mosaic/pkg"
	"github.com/Megloux/mosaic/pkg/bootstrap"
	"github.com/Megloux/mosaic/pkg/exercises"
	"github.com/Megloux/mosaic/pkg/framework"
	infrapubsub "github.com/Megloux/mosaic/pkg/infrastructure/pubsub"
)

// ServiceName identifies import executions.
const ServiceName = "import-exercises"

// ImportedEvent is the data of a com.mosaic.exercises.imported event.
type ImportedEvent struct {
	Source        string `json:"source"`
	ImportedCount int    `json:"importedCount"`
	ExecutionID   string `json:"executionId,omitempty"`
}

// Handle imports source into the service database. A failed import returns
// the failed Result together with an error carrying its message. Publishing
// the imported event is best effort.
func Handle(ctx context.Context, fwCtx *framework.FrameworkContext, source string) (exercises.Result, error) {
	svc := fwCtx.Service
	im := &exercises.Importer{
		Store:  svc.DB,
		Logger: fwCtx.Logger,
	}
	if svc.Store != nil {
		im.Blobs = svc.Store
	}

	res := im.ImportExercises(ctx, source)
	if !res.Success {
		return res, errors.New(res.Error)
	}

	if svc.Pub == nil {
		return res, nil
	}
	e, err := infrapubsub.NewCloudEvent(shared.EventSourceImporter, shared.EventTypeExercisesImported, ImportedEvent{
		Source:        source,
		ImportedCount: res.ImportedCount,
		ExecutionID:   fwCtx.ExecutionID,
	})
	if err != nil {
		fwCtx.Logger.Warn("Failed to build imported event", "error", err)
		return res, nil
	}
	if _, err := svc.Pub.PublishCloudEvent(ctx, shared.TopicExercisesImported, e); err != nil {
		fwCtx.Logger.Warn("Failed to publish imported event", "error", err)
	}
	return res, nil
}

// New returns an import function for source that records each run as an
// execution with the given trigger.
func New(svc *bootstrap.Service, trigger, source string) func(context.Context) exercises.Result {
	job := framework.WrapJob(ServiceName, svc, trigger, map[string]string{"source": source},
		func(ctx context.Context, fwCtx *framework.FrameworkContext) (interface{}, error) {
			return Handle(ctx, fwCtx, source)
		})

	return func(ctx context.Context) exercises.Result {
		out, err := job(ctx)
		if res, ok := out.(exercises.Result); ok {
			return res
		}
		if err != nil {
			return exercises.Result{Error: err.Error()}
		}
		return exercises.Result{Error: "import produced no result"}
	}
}
