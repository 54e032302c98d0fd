// Package forms provides the presentational field controls used by the
// routine builder, together with their store-bound variants.
package forms

import (
	"fmt"
	"sync"

	"github.com/Megloux/mosaic/pkg/formstore"
)

// field holds the props last rendered into a control.
type field[V any] struct {
	mu      sync.Mutex
	props   formstore.Props[V]
	renders int
}

// Render implements formstore.Control.
func (f *field[V]) Render(p formstore.Props[V]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.props = p
	f.renders++
}

// Value returns the value from the last render.
func (f *field[V]) Value() V {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.props.Value
}

// Renders returns how many times the control has been rendered.
func (f *field[V]) Renders() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.renders
}

func (f *field[V]) emit(v V) error {
	f.mu.Lock()
	onChange := f.props.OnChange
	f.mu.Unlock()
	if onChange == nil {
		return fmt.Errorf("control has not been rendered")
	}
	return onChange(v)
}

// TextInput is a single-line text field.
type TextInput struct{ field[string] }

func NewTextInput() *TextInput { return &TextInput{} }

// Type replaces the field's text.
func (c *TextInput) Type(text string) error { return c.emit(text) }

// Textarea is a multi-line text field.
type Textarea struct{ field[string] }

func NewTextarea() *Textarea { return &Textarea{} }

// Type replaces the field's text.
func (c *Textarea) Type(text string) error { return c.emit(text) }

// Option is one entry of a select or checkbox group.
type Option struct {
	Value string
	Label string
}

type options struct {
	mu    sync.Mutex
	items []Option
}

// SetOptions replaces the options offered by the control.
func (o *options) SetOptions(items []Option) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = append([]Option(nil), items...)
}

// Options returns the options offered by the control.
func (o *options) Options() []Option {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Option(nil), o.items...)
}

func (o *options) has(value string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	// No options configured means the control accepts any value.
	if len(o.items) == 0 {
		return true
	}
	for _, item := range o.items {
		if item.Value == value {
			return true
		}
	}
	return false
}

// SelectInput is a single-choice dropdown.
type SelectInput struct {
	field[string]
	options
}

func NewSelectInput() *SelectInput { return &SelectInput{} }

// Choose selects value, which must be one of the control's options.
func (c *SelectInput) Choose(value string) error {
	if value != "" && !c.has(value) {
		return fmt.Errorf("%q is not an option", value)
	}
	return c.emit(value)
}

// CheckboxGroup is a multi-choice list of checkboxes.
type CheckboxGroup struct {
	field[[]string]
	options
}

func NewCheckboxGroup() *CheckboxGroup { return &CheckboxGroup{} }

// Toggle checks value when unchecked and unchecks it otherwise.
func (c *CheckboxGroup) Toggle(value string) error {
	if !c.has(value) {
		return fmt.Errorf("%q is not an option", value)
	}
	current := c.Value()
	next := make([]string, 0, len(current)+1)
	found := false
	for _, v := range current {
		if v == value {
			found = true
			continue
		}
		next = append(next, v)
	}
	if !found {
		next = append(next, value)
	}
	return c.emit(next)
}

// SetChecked replaces the full set of checked values.
func (c *CheckboxGroup) SetChecked(values []string) error {
	for _, v := range values {
		if !c.has(v) {
			return fmt.Errorf("%q is not an option", v)
		}
	}
	return c.emit(values)
}

// IsChecked reports whether value is currently checked.
func (c *CheckboxGroup) IsChecked(value string) bool {
	for _, v := range c.Value() {
		if v == value {
			return true
		}
	}
	return false
}

// TimeInput is a time-of-day picker holding "HH:MM".
type TimeInput struct{ field[string] }

func NewTimeInput() *TimeInput { return &TimeInput{} }

// SetTime sets the time of day.
func (c *TimeInput) SetTime(value string) error { return c.emit(value) }

// NumberInput is a numeric field.
type NumberInput struct{ field[float64] }

func NewNumberInput() *NumberInput { return &NumberInput{} }

// SetNumber sets the numeric value.
func (c *NumberInput) SetNumber(value float64) error { return c.emit(value) }

// Switch is an on/off toggle.
type Switch struct{ field[bool] }

func NewSwitch() *Switch { return &Switch{} }

// Flip inverts the current state.
func (c *Switch) Flip() error { return c.emit(!c.Value()) }
