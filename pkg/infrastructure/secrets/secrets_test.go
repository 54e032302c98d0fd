package secrets

import (
	"context"
	"errors"
	"hash/crc32"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"

	apperrors "github.com/Megloux/mosaic/pkg/errors"
)

func TestGetSecret_EnvVar(t *testing.T) {
	t.Setenv("MOSAIC_TEST_SECRET", "local_value")

	adapter := &SecretsAdapter{
		Access: func(ctx context.Context, name string) (*secretmanagerpb.SecretPayload, error) {
			t.Error("Secret Manager must not be called when the env var is set")
			return nil, nil
		},
	}

	val, err := adapter.GetSecret(context.Background(), "test-project", "MOSAIC_TEST_SECRET")
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if val != "local_value" {
		t.Errorf("Expected 'local_value', got '%s'", val)
	}
}

func TestGetSecret_SecretManager(t *testing.T) {
	data := []byte("sb_secret_abc")
	sum := int64(crc32.Checksum(data, crc32.MakeTable(crc32.Castagnoli)))

	var gotName string
	adapter := &SecretsAdapter{
		Access: func(ctx context.Context, name string) (*secretmanagerpb.SecretPayload, error) {
			gotName = name
			return &secretmanagerpb.SecretPayload{Data: data, DataCrc32C: &sum}, nil
		},
	}

	val, err := adapter.GetSecret(context.Background(), "proj", "MOSAIC_UNSET_SECRET")
	if err != nil {
		t.Fatalf("GetSecret: %v", err)
	}
	if val != "sb_secret_abc" {
		t.Errorf("got %q", val)
	}
	if gotName != "projects/proj/secrets/MOSAIC_UNSET_SECRET/versions/latest" {
		t.Errorf("got resource name %q", gotName)
	}
}

func TestGetSecret_ChecksumMismatch(t *testing.T) {
	bad := int64(42)
	adapter := &SecretsAdapter{
		Access: func(ctx context.Context, name string) (*secretmanagerpb.SecretPayload, error) {
			return &secretmanagerpb.SecretPayload{Data: []byte("x"), DataCrc32C: &bad}, nil
		},
	}

	_, err := adapter.GetSecret(context.Background(), "proj", "MOSAIC_UNSET_SECRET")
	if !errors.Is(err, apperrors.ErrSecretError) {
		t.Errorf("expected secret error, got %v", err)
	}
}

func TestGetSecret_AccessFailure(t *testing.T) {
	adapter := &SecretsAdapter{
		Access: func(ctx context.Context, name string) (*secretmanagerpb.SecretPayload, error) {
			return nil, errors.New("permission denied")
		},
	}

	_, err := adapter.GetSecret(context.Background(), "proj", "MOSAIC_UNSET_SECRET")
	if !apperrors.IsRetryable(err) {
		t.Errorf("access failures are retryable, got %v", err)
	}
}
