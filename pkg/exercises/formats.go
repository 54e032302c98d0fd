package exercises

import (
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Megloux/mosaic/pkg/errors"
)

// ParseFunc decodes a source file into exercise records.
type ParseFunc func(data []byte) ([]Exercise, error)

var (
	formatsMu sync.RWMutex
	formats   = make(map[string]ParseFunc)
)

func init() {
	RegisterFormat(".json", parseJSON)
	RegisterFormat(".csv", parseCSV)
	RegisterFormat(".yaml", parseYAML)
	RegisterFormat(".yml", parseYAML)
}

// RegisterFormat registers the parser for sources with extension ext. A later
// registration for the same extension replaces the earlier one.
func RegisterFormat(ext string, fn ParseFunc) {
	formatsMu.Lock()
	defer formatsMu.Unlock()
	formats[strings.ToLower(ext)] = fn
}

// Formats returns the registered extensions, sorted.
func Formats() []string {
	formatsMu.RLock()
	defer formatsMu.RUnlock()
	out := make([]string, 0, len(formats))
	for ext := range formats {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Supported reports whether name has a registered extension.
func Supported(name string) bool {
	_, ok := formatFor(name)
	return ok
}

func formatFor(name string) (ParseFunc, bool) {
	formatsMu.RLock()
	defer formatsMu.RUnlock()
	fn, ok := formats[strings.ToLower(path.Ext(name))]
	return fn, ok
}

// yamlRecord mirrors the JSON record keys.
type yamlRecord struct {
	Slug             string   `yaml:"slug"`
	Name             string   `yaml:"name"`
	Category         string   `yaml:"category"`
	Equipment        string   `yaml:"equipment"`
	PrimaryMuscle    string   `yaml:"primary_muscle"`
	SecondaryMuscles []string `yaml:"secondary_muscles"`
	Instructions     string   `yaml:"instructions"`
}

func parseYAML(data []byte) ([]Exercise, error) {
	var recs []yamlRecord
	if err := yaml.Unmarshal(data, &recs); err != nil {
		return nil, apperrors.ErrImportSourceError.WithMessage("invalid exercise YAML").WithCause(err)
	}
	out := make([]Exercise, 0, len(recs))
	for _, r := range recs {
		out = append(out, Exercise{
			Slug:             r.Slug,
			Name:             r.Name,
			Category:         r.Category,
			Equipment:        r.Equipment,
			PrimaryMuscle:    r.PrimaryMuscle,
			SecondaryMuscles: r.SecondaryMuscles,
			Instructions:     r.Instructions,
		})
	}
	return out, nil
}
