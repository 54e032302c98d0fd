package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Megloux/mosaic/pkg/bootstrap"
	apperrors "github.com/Megloux/mosaic/pkg/errors"
	"github.com/Megloux/mosaic/pkg/exercises"
	"github.com/Megloux/mosaic/pkg/framework"
	"github.com/Megloux/mosaic/pkg/importjob"
	"github.com/Megloux/mosaic/pkg/types"
)

var (
	svc     *bootstrap.Service
	svcOnce sync.Once
	svcErr  error

	newService = bootstrap.NewService
)

func init() {
	// EventArc trigger on object finalize in the seed bucket
	functions.CloudEvent("ImportExercises", ImportExercises)
}

func initService(ctx context.Context) (*bootstrap.Service, error) {
	svcOnce.Do(func() {
		svc, svcErr = newService(ctx)
		if svcErr == nil {
			svcErr = requireBlobStore(svc)
		}
		if svcErr != nil {
			slog.Error("Failed to initialize service", "error", svcErr)
			svc = nil
		}
	})
	return svc, svcErr
}

// requireBlobStore fails when the service cannot read gs:// objects.
func requireBlobStore(s *bootstrap.Service) error {
	if s.Store == nil {
		return apperrors.ErrBackendConfigInvalid.WithMessage("ImportExercises requires ENABLE_GCS=true")
	}
	return nil
}

// ImportExercises imports the uploaded object into the exercise catalogue.
func ImportExercises(ctx context.Context, e cloudevents.Event) error {
	svc, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("service init failed: %v", err)
	}
	return framework.WrapCloudEvent(importjob.ServiceName, svc, importHandler)(ctx, e)
}

type skipped struct {
	Skipped bool   `json:"skipped"`
	Object  string `json:"object"`
	Reason  string `json:"reason"`
}

func importHandler(ctx context.Context, e cloudevents.Event, fwCtx *framework.FrameworkContext) (interface{}, error) {
	var obj types.StorageObjectData
	if err := e.DataAs(&obj); err != nil {
		return nil, apperrors.ErrValidation.WithMessage("invalid storage event payload").WithCause(err)
	}
	if obj.Bucket == "" || obj.Name == "" {
		return nil, apperrors.ErrValidation.WithMessage("storage event is missing bucket or object name")
	}

	if !exercises.Supported(obj.Name) {
		fwCtx.Logger.Info("Ignoring non-exercise object", "bucket", obj.Bucket, "object", obj.Name)
		return skipped{Skipped: true, Object: obj.Name, Reason: "unsupported file type"}, nil
	}

	source := fmt.Sprintf("gs://%s/%s", obj.Bucket, obj.Name)
	fwCtx.Logger.Info("Importing exercises from upload", "source", source)
	return importjob.Handle(ctx, fwCtx, source)
}
