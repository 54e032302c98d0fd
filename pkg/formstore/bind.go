package formstore

import (
	"sync"

	apperrors "github.com/Megloux/mosaic/pkg/errors"
)

// Props is everything a presentational control receives from its parent.
type Props[V any] struct {
	Value    V
	OnChange func(V) error
}

// Control is a presentational field control. It renders whatever props it is
// given and reports user edits through Props.OnChange.
type Control[V any] interface {
	Render(props Props[V])
}

// Bound describes a control type bound to the store for one field kind. It is
// created once, typically in a package-level var, and never changes.
type Bound[V any, C Control[V]] struct {
	newControl func() C
	kind       FieldKind
}

// Bind returns a store-backed variant of a control. Each Mount creates a new
// control instance with newControl.
//
//	var FormInput = formstore.Bind[string](NewTextInput, formstore.KindInput)
func Bind[V any, C Control[V]](newControl func() C, kind FieldKind) *Bound[V, C] {
	return &Bound[V, C]{newControl: newControl, kind: kind}
}

// Kind returns the field kind used for store writes.
func (b *Bound[V, C]) Kind() FieldKind {
	return b.kind
}

// Mount instantiates the control for (formID, name), subscribes it to store
// changes on that key and renders it once.
func (b *Bound[V, C]) Mount(store *Store, formID, name string) (*Binding[V, C], error) {
	bd := &Binding[V, C]{
		store:   store,
		kind:    b.kind,
		formID:  formID,
		name:    name,
		control: b.newControl(),
	}

	cancel, err := store.Subscribe(formID, name, bd.onStoreChange)
	if err != nil {
		return nil, err
	}
	bd.cancel = cancel

	if err := bd.Render(); err != nil {
		cancel()
		return nil, err
	}
	return bd, nil
}

// Binding is one mounted instance of a bound control.
type Binding[V any, C Control[V]] struct {
	store   *Store
	kind    FieldKind
	formID  string
	name    string
	control C

	mu     sync.Mutex
	cancel func()
	err    error
}

// Control returns the mounted control instance.
func (bd *Binding[V, C]) Control() C {
	return bd.control
}

// Name returns the field name the binding reads and writes.
func (bd *Binding[V, C]) Name() string {
	return bd.name
}

// Render looks the field up once and passes its value to the control.
func (bd *Binding[V, C]) Render() error {
	var renderErr error
	err := bd.store.read(bd.formID, bd.name, func(raw any) {
		renderErr = bd.renderValue(raw)
	})
	if err != nil {
		return err
	}
	return renderErr
}

// Err returns the last error raised while re-rendering after a store change.
func (bd *Binding[V, C]) Err() error {
	bd.mu.Lock()
	defer bd.mu.Unlock()
	return bd.err
}

// Unmount stops the control from receiving store changes.
func (bd *Binding[V, C]) Unmount() {
	bd.mu.Lock()
	cancel := bd.cancel
	bd.cancel = nil
	bd.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (bd *Binding[V, C]) onStoreChange(raw any) {
	err := bd.renderValue(raw)
	bd.mu.Lock()
	bd.err = err
	bd.mu.Unlock()
}

func (bd *Binding[V, C]) renderValue(raw any) error {
	var value V
	if raw != nil {
		v, ok := raw.(V)
		if !ok {
			return apperrors.ErrFieldTypeMismatch.
				WithMessage("stored value does not match the bound control").
				WithMetadata("field", bd.name)
		}
		value = v
	}
	bd.control.Render(Props[V]{Value: value, OnChange: bd.change})
	return nil
}

func (bd *Binding[V, C]) change(v V) error {
	return bd.store.Set(bd.formID, bd.name, bd.kind, v)
}
