// Package execution records the lifecycle of jobs and event handlers
// (pending, started, success, failed) in the executions collection.
package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status of an execution.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusStarted Status = "STARTED"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Record is one execution document.
type Record struct {
	ExecutionID  string     `json:"execution_id" firestore:"execution_id"`
	Service      string     `json:"service" firestore:"service"`
	Status       Status     `json:"status" firestore:"status"`
	TriggerType  string     `json:"trigger_type,omitempty" firestore:"trigger_type,omitempty"`
	UserID       string     `json:"user_id,omitempty" firestore:"user_id,omitempty"`
	Timestamp    time.Time  `json:"timestamp" firestore:"timestamp"`
	StartTime    time.Time  `json:"start_time" firestore:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty" firestore:"end_time,omitempty"`
	InputsJSON   string     `json:"inputs_json,omitempty" firestore:"inputs_json,omitempty"`
	OutputsJSON  string     `json:"outputs_json,omitempty" firestore:"outputs_json,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty" firestore:"error_message,omitempty"`
}

// Database is the slice of persistence execution logging needs.
type Database interface {
	SetExecution(ctx context.Context, record *Record) error
	UpdateExecution(ctx context.Context, id string, data map[string]interface{}) error
}

// Options carries optional metadata for a new execution.
type Options struct {
	UserID      string
	TriggerType string
	Inputs      interface{}
}

var now = time.Now

// NewID returns a fresh execution ID for service.
func NewID(service string) string {
	return fmt.Sprintf("%s-%s", service, uuid.NewString())
}

func encode(v interface{}) (string, bool) {
	if v == nil {
		return "", false
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// LogPending creates the execution record in PENDING state and returns its ID.
// The ID is returned even when the write fails so callers can keep going.
func LogPending(ctx context.Context, db Database, service string, opts Options) (string, error) {
	execID := NewID(service)
	ts := now().UTC()

	record := &Record{
		ExecutionID: execID,
		Service:     service,
		Status:      StatusPending,
		TriggerType: opts.TriggerType,
		UserID:      opts.UserID,
		Timestamp:   ts,
		StartTime:   ts,
	}
	if inputs, ok := encode(opts.Inputs); ok {
		record.InputsJSON = inputs
	}

	if err := db.SetExecution(ctx, record); err != nil {
		return execID, fmt.Errorf("failed to log execution pending: %w", err)
	}
	return execID, nil
}

// LogStart moves the execution to STARTED and records its inputs.
func LogStart(ctx context.Context, db Database, execID string, inputs interface{}) error {
	updates := map[string]interface{}{
		"status":     string(StatusStarted),
		"start_time": now().UTC(),
	}
	if enc, ok := encode(inputs); ok {
		updates["inputs_json"] = enc
	}

	if err := db.UpdateExecution(ctx, execID, updates); err != nil {
		return fmt.Errorf("failed to log execution start: %w", err)
	}
	return nil
}

// LogSuccess closes the execution with SUCCESS.
func LogSuccess(ctx context.Context, db Database, execID string, outputs interface{}) error {
	return finish(ctx, db, execID, StatusSuccess, nil, outputs)
}

// LogFailure closes the execution with FAILED and the error message.
func LogFailure(ctx context.Context, db Database, execID string, err error, outputs interface{}) error {
	return finish(ctx, db, execID, StatusFailed, err, outputs)
}

func finish(ctx context.Context, db Database, execID string, status Status, cause error, outputs interface{}) error {
	ts := now().UTC()
	updates := map[string]interface{}{
		"status":    string(status),
		"timestamp": ts,
		"end_time":  ts,
	}
	if cause != nil {
		updates["error_message"] = cause.Error()
	}
	if enc, ok := encode(outputs); ok {
		updates["outputs_json"] = enc
	}

	if err := db.UpdateExecution(ctx, execID, updates); err != nil {
		return fmt.Errorf("failed to log execution %s: %w", status, err)
	}
	return nil
}
