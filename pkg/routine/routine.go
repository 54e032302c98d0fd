// Package routine defines workout routines and the built-in template catalogue.
package routine

import (
	"fmt"
	"time"

	apperrors "github.com/Megloux/mosaic/pkg/errors"
)

// Type is the training focus of a routine.
type Type string

const (
	TypeStrength    Type = "strength"
	TypeHypertrophy Type = "hypertrophy"
	TypeEndurance   Type = "endurance"
	TypeMobility    Type = "mobility"
	TypeCustom      Type = "custom"
)

// Types lists every routine type in display order.
func Types() []Type {
	return []Type{TypeStrength, TypeHypertrophy, TypeEndurance, TypeMobility, TypeCustom}
}

// Label is the human-readable name of the type.
func (t Type) Label() string {
	switch t {
	case TypeStrength:
		return "Strength"
	case TypeHypertrophy:
		return "Hypertrophy"
	case TypeEndurance:
		return "Endurance"
	case TypeMobility:
		return "Mobility"
	case TypeCustom:
		return "Custom"
	default:
		return string(t)
	}
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	for _, known := range Types() {
		if t == known {
			return true
		}
	}
	return false
}

// Weekdays are the day keys used in Routine.Days.
var Weekdays = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// Exercise is one exercise prescription inside a routine.
type Exercise struct {
	ExerciseID  string  `json:"exercise_id" yaml:"exercise_id" firestore:"exercise_id"`
	Name        string  `json:"name" yaml:"name" firestore:"name"`
	Sets        int     `json:"sets" yaml:"sets" firestore:"sets"`
	Reps        int     `json:"reps" yaml:"reps" firestore:"reps"`
	RestSeconds int     `json:"rest_seconds,omitempty" yaml:"rest_seconds,omitempty" firestore:"rest_seconds,omitempty"`
	WeightKg    float64 `json:"weight_kg,omitempty" yaml:"weight_kg,omitempty" firestore:"weight_kg,omitempty"`
	Notes       string  `json:"notes,omitempty" yaml:"notes,omitempty" firestore:"notes,omitempty"`
}

// Routine is a user's saved training plan.
type Routine struct {
	ID         string     `json:"id" firestore:"id"`
	UserID     string     `json:"user_id,omitempty" firestore:"user_id,omitempty"`
	Name       string     `json:"name" firestore:"name"`
	Type       Type       `json:"type" firestore:"type"`
	TemplateID string     `json:"template_id,omitempty" firestore:"template_id,omitempty"`
	Days       []string   `json:"days" firestore:"days"`
	StartTime  string     `json:"start_time,omitempty" firestore:"start_time,omitempty"`
	Exercises  []Exercise `json:"exercises" firestore:"exercises"`
	CreatedAt  time.Time  `json:"created_at" firestore:"created_at"`
}

// Validate checks the routine is complete enough to save.
func (r *Routine) Validate() error {
	fail := func(msg string) error {
		return apperrors.ErrRoutineInvalid.WithMessage(msg)
	}

	if r.Name == "" {
		return fail("routine name is required")
	}
	if !r.Type.Valid() {
		return fail(fmt.Sprintf("unknown routine type %q", r.Type))
	}
	if len(r.Exercises) == 0 {
		return fail("routine needs at least one exercise")
	}
	for _, d := range r.Days {
		if !isWeekday(d) {
			return fail(fmt.Sprintf("unknown day %q", d))
		}
	}
	for i, ex := range r.Exercises {
		if ex.ExerciseID == "" {
			return fail(fmt.Sprintf("exercise %d has no id", i))
		}
		if ex.Sets < 0 || ex.Reps < 0 || ex.RestSeconds < 0 || ex.WeightKg < 0 {
			return fail(fmt.Sprintf("exercise %q has a negative prescription", ex.ExerciseID))
		}
	}
	return nil
}

func isWeekday(d string) bool {
	for _, w := range Weekdays {
		if d == w {
			return true
		}
	}
	return false
}
