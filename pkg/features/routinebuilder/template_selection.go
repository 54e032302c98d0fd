package routinebuilder

import (
	apperrors "github.com/Megloux/mosaic/pkg/errors"
	"github.com/Megloux/mosaic/pkg/routine"
)

// TemplateSelection lets the user start from a built-in template.
type TemplateSelection struct {
	b *Builder
}

// Available returns the templates for the chosen routine type, or every
// template when no type is chosen yet.
func (s *TemplateSelection) Available() []routine.Template {
	if t := s.b.Type(); t != "" {
		return routine.TemplatesFor(t)
	}
	return routine.Templates()
}

// Selected returns the template currently chosen, if any.
func (s *TemplateSelection) Selected() (routine.Template, bool) {
	id := s.b.template.Control().Value()
	if id == "" {
		return routine.Template{}, false
	}
	return routine.TemplateByID(id)
}

// Select chooses a template and copies its type, days and exercises into the
// form. The name is only filled when it is still empty. Template exercises
// missing from the catalogue are left out.
func (s *TemplateSelection) Select(id string) error {
	tpl, ok := routine.TemplateByID(id)
	if !ok {
		return apperrors.ErrTemplateNotFound.WithMetadata("template_id", id)
	}

	b := s.b
	if err := b.routineType.Control().Choose(string(tpl.Type)); err != nil {
		return err
	}
	if err := b.template.Control().Choose(tpl.ID); err != nil {
		return err
	}
	if err := b.days.Control().SetChecked(tpl.Days); err != nil {
		return err
	}

	ids := make([]string, 0, len(tpl.Exercises))
	for _, exID := range tpl.ExerciseIDs() {
		if _, ok := b.bySlug[exID]; !ok {
			b.logger.Warn("Template exercise not in catalogue", "template_id", tpl.ID, "exercise_id", exID)
			continue
		}
		ids = append(ids, exID)
	}
	if err := b.exerciseIDs.Control().SetChecked(ids); err != nil {
		return err
	}

	if b.name.Control().Value() == "" {
		if err := b.SetName(tpl.Name); err != nil {
			return err
		}
	}
	return nil
}

// Clear deselects the template. Values it filled in are kept.
func (s *TemplateSelection) Clear() error {
	return s.b.template.Control().Choose("")
}
