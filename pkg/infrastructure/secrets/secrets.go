// Package secrets resolves secrets from the environment or Secret Manager.
package secrets

import (
	"context"
	"fmt"
	"hash/crc32"
	"log/slog"
	"os"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"

	apperrors "github.com/Megloux/mosaic/pkg/errors"
)

// AccessFunc fetches a secret version by resource name.
type AccessFunc func(ctx context.Context, name string) (*secretmanagerpb.SecretPayload, error)

// SecretsAdapter checks the environment first and falls back to the latest
// Secret Manager version. Access is nil in production and set in tests.
type SecretsAdapter struct {
	Access AccessFunc
}

func (a *SecretsAdapter) GetSecret(ctx context.Context, projectID, secretName string) (string, error) {
	if val := os.Getenv(secretName); val != "" {
		slog.Debug("Using local env var for secret", "component", "secrets", "secret", secretName)
		return val, nil
	}

	access := a.Access
	if access == nil {
		access = accessSecretManager
	}

	name := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, secretName)
	payload, err := access(ctx, name)
	if err != nil {
		return "", apperrors.ErrSecretError.WithCause(err).WithMetadata("secret", secretName)
	}

	crc32c := crc32.MakeTable(crc32.Castagnoli)
	checksum := int64(crc32.Checksum(payload.Data, crc32c))
	if payload.DataCrc32C != nil && *payload.DataCrc32C != checksum {
		return "", apperrors.New(apperrors.CodeSecretError, "secret payload checksum mismatch").WithMetadata("secret", secretName)
	}

	return string(payload.Data), nil
}

func accessSecretManager(ctx context.Context, name string) (*secretmanagerpb.SecretPayload, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create secretmanager client: %w", err)
	}
	defer client.Close()

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to access secret version: %w", err)
	}
	return result.Payload, nil
}
