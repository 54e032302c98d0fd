package exercises

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	apperrors "github.com/Megloux/mosaic/pkg/errors"
)

// DefaultBatchSize is the number of records sent per upsert call.
const DefaultBatchSize = 100

// Store persists exercises, upserting on slug.
type Store interface {
	UpsertExercises(ctx context.Context, batch []Exercise) error
}

// BlobReader reads gs:// sources.
type BlobReader interface {
	Read(ctx context.Context, bucket, object string) ([]byte, error)
}

// Result is the outcome of one import run.
type Result struct {
	Success       bool   `json:"success"`
	ImportedCount int    `json:"importedCount,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Importer loads an exercise file into a Store.
type Importer struct {
	Store     Store
	Blobs     BlobReader // optional, required for gs:// sources
	Logger    *slog.Logger
	BatchSize int
}

// ImportExercises runs Import and folds the outcome into a Result.
func (im *Importer) ImportExercises(ctx context.Context, source string) Result {
	n, err := im.Import(ctx, source)
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	return Result{Success: true, ImportedCount: n}
}

// Import reads source, normalizes and de-duplicates its records, then upserts
// them in batches. It returns the number of exercises written.
func (im *Importer) Import(ctx context.Context, source string) (int, error) {
	logger := im.logger().With("source", source)

	data, err := im.read(ctx, source)
	if err != nil {
		return 0, err
	}

	records, err := Parse(source, data)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, apperrors.ErrImportSourceError.WithMessage("source contains no exercises")
	}

	list, err := prepare(records, logger)
	if err != nil {
		return 0, err
	}
	logger.Info("Parsed exercise source", "records", len(records), "unique", len(list))

	size := im.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	written := 0
	for start := 0; start < len(list); start += size {
		end := min(start+size, len(list))
		if err := im.Store.UpsertExercises(ctx, list[start:end]); err != nil {
			logger.Error("Exercise batch upsert failed", "offset", start, "error", err)
			return written, fmt.Errorf("upsert exercises %d-%d: %w", start, end-1, err)
		}
		written = end
		logger.Debug("Upserted exercise batch", "offset", start, "size", end-start)
	}

	logger.Info("Imported exercises", "count", written)
	return written, nil
}

func (im *Importer) logger() *slog.Logger {
	if im.Logger != nil {
		return im.Logger.With("component", "exercise-importer")
	}
	return slog.Default().With("component", "exercise-importer")
}

func (im *Importer) read(ctx context.Context, source string) ([]byte, error) {
	if bucket, object, ok := ParseGCSURI(source); ok {
		if im.Blobs == nil {
			return nil, apperrors.ErrImportSourceError.WithMessage("no blob store configured for " + source)
		}
		data, err := im.Blobs.Read(ctx, bucket, object)
		if err != nil {
			return nil, apperrors.ErrImportSourceError.WithMessage("cannot read " + source).WithCause(err)
		}
		return data, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, apperrors.ErrImportSourceError.WithMessage("cannot read " + source).WithCause(err)
	}
	return data, nil
}

// ParseGCSURI splits gs://bucket/object.
func ParseGCSURI(uri string) (bucket, object string, ok bool) {
	rest, found := strings.CutPrefix(uri, "gs://")
	if !found {
		return "", "", false
	}
	bucket, object, found = strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}

// Parse decodes source data with the parser registered for the extension of
// name. Unknown extensions are sniffed as a JSON array or a CSV file.
func Parse(name string, data []byte) ([]Exercise, error) {
	if fn, ok := formatFor(name); ok {
		return fn(data)
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		return parseJSON(data)
	}
	return parseCSV(data)
}

// record accepts both snake_case and camelCase keys for the muscle fields.
type record struct {
	Exercise
	PrimaryMuscleAlt    string   `json:"primaryMuscle"`
	SecondaryMusclesAlt []string `json:"secondaryMuscles"`
}

func parseJSON(data []byte) ([]Exercise, error) {
	var recs []record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, apperrors.ErrImportSourceError.WithMessage("invalid exercise JSON").WithCause(err)
	}
	out := make([]Exercise, 0, len(recs))
	for _, r := range recs {
		ex := r.Exercise
		if ex.PrimaryMuscle == "" {
			ex.PrimaryMuscle = r.PrimaryMuscleAlt
		}
		if len(ex.SecondaryMuscles) == 0 {
			ex.SecondaryMuscles = r.SecondaryMusclesAlt
		}
		out = append(out, ex)
	}
	return out, nil
}

func parseCSV(data []byte) ([]Exercise, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, apperrors.ErrImportSourceError.WithMessage("missing CSV header").WithCause(err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, apperrors.ErrImportSourceError.WithMessage("CSV header has no name column")
	}

	var out []Exercise
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.ErrImportSourceError.WithMessage(fmt.Sprintf("invalid CSV at line %d", line)).WithCause(err)
		}
		get := func(col string) string {
			if i, ok := cols[col]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		out = append(out, Exercise{
			Slug:             get("slug"),
			Name:             get("name"),
			Category:         get("category"),
			Equipment:        get("equipment"),
			PrimaryMuscle:    get("primary_muscle"),
			SecondaryMuscles: splitList(get("secondary_muscles")),
			Instructions:     get("instructions"),
		})
	}
	return out, nil
}

// splitList splits a ";" or "|" separated cell.
func splitList(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.FieldsFunc(cell, func(r rune) bool { return r == ';' || r == '|' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// prepare normalizes records and keeps the last record for each slug, in
// first-seen order. Distinct names that share a slug are logged.
func prepare(records []Exercise, logger *slog.Logger) ([]Exercise, error) {
	index := map[string]int{}
	var out []Exercise
	for i, rec := range records {
		if strings.TrimSpace(rec.Name) == "" {
			return nil, apperrors.ErrValidation.WithMessage(fmt.Sprintf("exercise %d has no name", i+1))
		}
		ex := Normalize(rec)
		if ex.Slug == "" {
			return nil, apperrors.ErrValidation.WithMessage(fmt.Sprintf("exercise %q has no usable slug", rec.Name))
		}
		if pos, seen := index[ex.Slug]; seen {
			if out[pos].Name != ex.Name {
				logger.Warn("Exercise slug collision, keeping later record",
					"slug", ex.Slug, "replaced", out[pos].Name, "name", ex.Name)
			}
			out[pos] = ex
			continue
		}
		index[ex.Slug] = len(out)
		out = append(out, ex)
	}
	return out, nil
}
