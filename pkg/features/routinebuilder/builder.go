// Package routinebuilder implements the routine builder: a form scope whose
// fields are edited through store-bound controls and turned into a
// routine.Routine on save.
package routinebuilder

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	shared "github.com/Megloux/mosaic/pkg"
	apperrors "github.com/Megloux/mosaic/pkg/errors"
	"github.com/Megloux/mosaic/pkg/exercises"
	"github.com/Megloux/mosaic/pkg/forms"
	"github.com/Megloux/mosaic/pkg/formstore"
	"github.com/Megloux/mosaic/pkg/routine"
)

// Field names written by the builder.
const (
	FieldName        = "name"
	FieldType        = "routine_type"
	FieldTemplate    = "template_id"
	FieldDays        = "days"
	FieldStartTime   = "start_time"
	FieldExerciseIDs = "exercise_ids"
)

// Options configures a Builder.
type Options struct {
	UserID string
	Logger *slog.Logger
}

// prescription is the default sets/reps/rest for an exercise added outside a
// template.
type prescription struct {
	sets, reps, rest int
}

var defaultPrescriptions = map[routine.Type]prescription{
	routine.TypeStrength:    {sets: 5, reps: 5, rest: 180},
	routine.TypeHypertrophy: {sets: 3, reps: 10, rest: 90},
	routine.TypeEndurance:   {sets: 3, reps: 15, rest: 60},
	routine.TypeMobility:    {sets: 2, reps: 10, rest: 30},
	routine.TypeCustom:      {sets: 3, reps: 10, rest: 90},
}

// Builder owns one form scope and the controls mounted on it.
type Builder struct {
	store  *formstore.Store
	formID string
	userID string
	logger *slog.Logger

	catalog []exercises.Exercise
	bySlug  map[string]exercises.Exercise

	name        *formstore.Binding[string, *forms.TextInput]
	routineType *formstore.Binding[string, *forms.SelectInput]
	template    *formstore.Binding[string, *forms.SelectInput]
	days        *formstore.Binding[[]string, *forms.CheckboxGroup]
	startTime   *formstore.Binding[string, *forms.TimeInput]
	exerciseIDs *formstore.Binding[[]string, *forms.CheckboxGroup]

	TypeModal *TypeModal
	Templates *TemplateSelection
	Exercises *ExerciseSelection

	closeOnce sync.Once
}

type unmounter interface{ Unmount() }

// New opens formID on store and mounts the builder's controls. catalog lists
// the exercises a user may pick; its slugs are the routine's exercise IDs.
func New(store *formstore.Store, formID string, catalog []exercises.Exercise, opts Options) (*Builder, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := store.OpenScope(formID); err != nil {
		return nil, err
	}

	b := &Builder{
		store:  store,
		formID: formID,
		userID: opts.UserID,
		logger: logger.With("component", "routinebuilder", "form_id", formID),
		bySlug: make(map[string]exercises.Exercise, len(catalog)),
	}
	for _, ex := range catalog {
		if ex.Slug == "" {
			ex = exercises.Normalize(ex)
		}
		if _, dup := b.bySlug[ex.Slug]; dup {
			continue
		}
		b.bySlug[ex.Slug] = ex
		b.catalog = append(b.catalog, ex)
	}

	if err := b.mount(); err != nil {
		_ = store.CloseScope(formID)
		return nil, err
	}

	b.TypeModal = &TypeModal{b: b}
	b.Templates = &TemplateSelection{b: b}
	b.Exercises = &ExerciseSelection{b: b}

	b.logger.Debug("Routine builder opened", "catalog_size", len(b.catalog))
	return b, nil
}

func (b *Builder) mount() error {
	var mounted []unmounter
	fail := func(err error) error {
		for _, m := range mounted {
			m.Unmount()
		}
		return err
	}

	var err error
	if b.name, err = forms.FormInput.Mount(b.store, b.formID, FieldName); err != nil {
		return fail(err)
	}
	mounted = append(mounted, b.name)

	if b.routineType, err = forms.FormSelect.Mount(b.store, b.formID, FieldType); err != nil {
		return fail(err)
	}
	mounted = append(mounted, b.routineType)
	b.routineType.Control().SetOptions(typeOptions())

	if b.template, err = forms.FormSelect.Mount(b.store, b.formID, FieldTemplate); err != nil {
		return fail(err)
	}
	mounted = append(mounted, b.template)
	b.template.Control().SetOptions(templateOptions(routine.Templates()))

	if b.days, err = forms.FormCheckboxGroup.Mount(b.store, b.formID, FieldDays); err != nil {
		return fail(err)
	}
	mounted = append(mounted, b.days)
	dayOpts := make([]forms.Option, 0, len(routine.Weekdays))
	for _, d := range routine.Weekdays {
		dayOpts = append(dayOpts, forms.Option{Value: d, Label: d})
	}
	b.days.Control().SetOptions(dayOpts)

	if b.startTime, err = forms.FormTimeInput.Mount(b.store, b.formID, FieldStartTime); err != nil {
		return fail(err)
	}
	mounted = append(mounted, b.startTime)

	if b.exerciseIDs, err = forms.FormCheckboxGroup.Mount(b.store, b.formID, FieldExerciseIDs); err != nil {
		return fail(err)
	}
	exOpts := make([]forms.Option, 0, len(b.catalog))
	for _, ex := range b.catalog {
		exOpts = append(exOpts, forms.Option{Value: ex.Slug, Label: ex.Name})
	}
	b.exerciseIDs.Control().SetOptions(exOpts)
	return nil
}

func typeOptions() []forms.Option {
	out := make([]forms.Option, 0, len(routine.Types()))
	for _, t := range routine.Types() {
		out = append(out, forms.Option{Value: string(t), Label: t.Label()})
	}
	return out
}

func templateOptions(templates []routine.Template) []forms.Option {
	out := make([]forms.Option, 0, len(templates))
	for _, tpl := range templates {
		out = append(out, forms.Option{Value: tpl.ID, Label: tpl.Name})
	}
	return out
}

// FormID returns the scope the builder writes to.
func (b *Builder) FormID() string { return b.formID }

// SetName sets the routine name.
func (b *Builder) SetName(name string) error {
	return b.name.Control().Type(name)
}

// SetStartTime sets the session start time ("HH:MM").
func (b *Builder) SetStartTime(value string) error {
	return b.startTime.Control().SetTime(value)
}

// ToggleDay adds or removes a training day.
func (b *Builder) ToggleDay(day string) error {
	return b.days.Control().Toggle(day)
}

// Type returns the chosen routine type, or "" when none is chosen.
func (b *Builder) Type() routine.Type {
	return routine.Type(b.routineType.Control().Value())
}

// Build assembles a routine from the current field values. Exercises keep the
// prescription of the selected template when it lists them and get the
// defaults for the routine type otherwise.
func (b *Builder) Build() (*routine.Routine, error) {
	if !b.store.HasScope(b.formID) {
		return nil, apperrors.ErrFormScopeNotFound.WithMetadata("form_id", b.formID)
	}

	r := &routine.Routine{
		UserID:    b.userID,
		Name:      b.name.Control().Value(),
		Type:      b.Type(),
		Days:      orderDays(b.days.Control().Value()),
		StartTime: b.startTime.Control().Value(),
	}

	fromTemplate := map[string]routine.Exercise{}
	if tpl, ok := b.Templates.Selected(); ok {
		r.TemplateID = tpl.ID
		for _, ex := range tpl.Exercises {
			fromTemplate[ex.ExerciseID] = ex
		}
	}

	defaults, ok := defaultPrescriptions[r.Type]
	if !ok {
		defaults = defaultPrescriptions[routine.TypeCustom]
	}
	for _, id := range b.exerciseIDs.Control().Value() {
		if ex, ok := fromTemplate[id]; ok {
			if cat, ok := b.bySlug[id]; ok {
				ex.Name = cat.Name
			}
			r.Exercises = append(r.Exercises, ex)
			continue
		}
		ex := routine.Exercise{
			ExerciseID:  id,
			Sets:        defaults.sets,
			Reps:        defaults.reps,
			RestSeconds: defaults.rest,
		}
		if cat, ok := b.bySlug[id]; ok {
			ex.Name = cat.Name
		}
		r.Exercises = append(r.Exercises, ex)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Save builds the routine and persists it.
func (b *Builder) Save(ctx context.Context, rs shared.RoutineStore) (*routine.Routine, error) {
	r, err := b.Build()
	if err != nil {
		return nil, err
	}
	if err := rs.SaveRoutine(ctx, r); err != nil {
		b.logger.Error("Failed to save routine", "error", err)
		return nil, err
	}
	b.logger.Info("Routine saved", "routine_id", r.ID, "exercises", len(r.Exercises))
	return r, nil
}

// Close unmounts every control and closes the form scope. It is safe to call
// more than once.
func (b *Builder) Close() error {
	var err error
	b.closeOnce.Do(func() {
		for _, m := range []unmounter{b.name, b.routineType, b.template, b.days, b.startTime, b.exerciseIDs} {
			m.Unmount()
		}
		err = b.store.CloseScope(b.formID)
	})
	return err
}

func orderDays(days []string) []string {
	index := make(map[string]int, len(routine.Weekdays))
	for i, d := range routine.Weekdays {
		index[d] = i
	}
	out := append([]string(nil), days...)
	sort.SliceStable(out, func(i, j int) bool { return index[out[i]] < index[out[j]] })
	return out
}
