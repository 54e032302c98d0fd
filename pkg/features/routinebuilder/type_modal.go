package routinebuilder

import (
	"sync"

	apperrors "github.com/Megloux/mosaic/pkg/errors"
	"github.com/Megloux/mosaic/pkg/forms"
	"github.com/Megloux/mosaic/pkg/routine"
)

// TypeModal is the dialog in which the user picks the routine type.
type TypeModal struct {
	b *Builder

	mu   sync.Mutex
	open bool
}

func (m *TypeModal) Open() {
	m.mu.Lock()
	m.open = true
	m.mu.Unlock()
}

func (m *TypeModal) Close() {
	m.mu.Lock()
	m.open = false
	m.mu.Unlock()
}

func (m *TypeModal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Options lists the routine types offered by the modal.
func (m *TypeModal) Options() []forms.Option {
	return m.b.routineType.Control().Options()
}

// Choose writes t to the type field and closes the modal. A selected
// template of another type is cleared.
func (m *TypeModal) Choose(t routine.Type) error {
	if !t.Valid() {
		return apperrors.ErrRoutineInvalid.WithMessage("unknown routine type " + string(t))
	}
	if err := m.b.routineType.Control().Choose(string(t)); err != nil {
		return err
	}
	if tpl, ok := m.b.Templates.Selected(); ok && tpl.Type != t {
		if err := m.b.Templates.Clear(); err != nil {
			return err
		}
	}
	m.Close()
	return nil
}
