// Package routines is the public entry point for building and browsing
// routines. It re-exports the routine builder and the routine domain types
// under stable names.
package routines

import (
	"github.com/Megloux/mosaic/pkg/features/routinebuilder"
	"github.com/Megloux/mosaic/pkg/routine"
)

type (
	Builder           = routinebuilder.Builder
	BuilderOptions    = routinebuilder.Options
	TypeModal         = routinebuilder.TypeModal
	TemplateSelection = routinebuilder.TemplateSelection
	ExerciseSelection = routinebuilder.ExerciseSelection

	Routine  = routine.Routine
	Exercise = routine.Exercise
	Template = routine.Template
	Type     = routine.Type
)

var (
	// NewBuilder opens a form scope and mounts a routine builder on it.
	NewBuilder = routinebuilder.New

	Templates    = routine.Templates
	TemplatesFor = routine.TemplatesFor
	TemplateByID = routine.TemplateByID
	Types        = routine.Types
)
