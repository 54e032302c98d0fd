package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Megloux/mosaic/pkg/exercises"
)

func fixed(res exercises.Result) ImportFunc {
	return func(ctx context.Context) exercises.Result { return res }
}

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		result     exercises.Result
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "success",
			result:     exercises.Result{Success: true, ImportedCount: 5},
			wantCode:   0,
			wantStdout: "Successfully imported 5 exercises",
		},
		{
			name:       "failure",
			result:     exercises.Result{Success: false, Error: "bad file"},
			wantCode:   1,
			wantStderr: "Import failed: bad file",
		},
		{
			name:       "failure without message",
			result:     exercises.Result{},
			wantCode:   1,
			wantStderr: "Import failed: unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), fixed(tt.result), &stdout, &stderr)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
			if tt.wantCode == 0 && stderr.Len() != 0 {
				t.Errorf("unexpected stderr %q", stderr.String())
			}
			if tt.wantCode == 1 && stdout.Len() != 0 {
				t.Errorf("unexpected stdout %q", stdout.String())
			}
		})
	}
}

func TestExecute(t *testing.T) {
	okSetup := func(ctx context.Context, stderr io.Writer) (ImportFunc, error) {
		return fixed(exercises.Result{Success: true, ImportedCount: 5}), nil
	}

	t.Run("success", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		if code := execute(context.Background(), nil, &stdout, &stderr, okSetup); code != 0 {
			t.Errorf("exit code = %d, stderr %q", code, stderr.String())
		}
		if !strings.Contains(stdout.String(), "5") {
			t.Errorf("stdout = %q", stdout.String())
		}
	})

	t.Run("setup failure", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		setup := func(ctx context.Context, stderr io.Writer) (ImportFunc, error) {
			return nil, errors.New("missing Supabase URL")
		}
		if code := execute(context.Background(), nil, &stdout, &stderr, setup); code != 1 {
			t.Errorf("exit code = %d", code)
		}
		if !strings.Contains(stderr.String(), "missing Supabase URL") {
			t.Errorf("stderr = %q", stderr.String())
		}
	})

	t.Run("rejects arguments", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		setup := func(ctx context.Context, stderr io.Writer) (ImportFunc, error) {
			t.Error("setup must not run for invalid invocations")
			return nil, nil
		}
		if code := execute(context.Background(), []string{"extra"}, &stdout, &stderr, setup); code != 1 {
			t.Errorf("exit code = %d", code)
		}
	})
}
