package routinebuilder

import (
	"strings"

	apperrors "github.com/Megloux/mosaic/pkg/errors"
	"github.com/Megloux/mosaic/pkg/exercises"
)

// ExerciseSelection is the exercise picker.
type ExerciseSelection struct {
	b *Builder
}

// Catalog returns the exercises the user can pick from.
func (s *ExerciseSelection) Catalog() []exercises.Exercise {
	return append([]exercises.Exercise(nil), s.b.catalog...)
}

// Toggle adds or removes an exercise by slug.
func (s *ExerciseSelection) Toggle(id string) error {
	if _, ok := s.b.bySlug[id]; !ok {
		return apperrors.ErrExerciseNotFound.WithMetadata("exercise_id", id)
	}
	return s.b.exerciseIDs.Control().Toggle(id)
}

// Selected returns the chosen exercises in selection order.
func (s *ExerciseSelection) Selected() []exercises.Exercise {
	ids := s.b.exerciseIDs.Control().Value()
	out := make([]exercises.Exercise, 0, len(ids))
	for _, id := range ids {
		if ex, ok := s.b.bySlug[id]; ok {
			out = append(out, ex)
		}
	}
	return out
}

// Search returns catalogue entries whose name, slug, category, equipment or
// primary muscle contain query, ignoring case. Abbreviations such as "db" or
// "rdl" also match through their canonical exercise.
func (s *ExerciseSelection) Search(query string) []exercises.Exercise {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.Catalog()
	}

	canonical := ""
	if res := exercises.Lookup(query); res.Matched {
		canonical = strings.ToLower(res.CanonicalName)
	}

	var out []exercises.Exercise
	for _, ex := range s.b.catalog {
		fields := []string{ex.Name, ex.Slug, ex.Category, ex.Equipment, ex.PrimaryMuscle}
		if matches(q, fields) || (canonical != "" && strings.ToLower(ex.Name) == canonical) {
			out = append(out, ex)
		}
	}
	return out
}

func matches(q string, fields []string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
