package formstore

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/Megloux/mosaic/pkg/errors"
)

// recorder is a minimal presentational control for tests.
type recorder[V any] struct {
	props   Props[V]
	renders int
}

func (r *recorder[V]) Render(p Props[V]) {
	r.props = p
	r.renders++
}

func newTextRecorder() *recorder[string]    { return &recorder[string]{} }
func newListRecorder() *recorder[[]string]  { return &recorder[[]string]{} }
func newNumberRecorder() *recorder[float64] { return &recorder[float64]{} }

var (
	boundText  = Bind[string](newTextRecorder, KindInput)
	boundList  = Bind[[]string](newListRecorder, KindCheckboxGroup)
	boundCount = Bind[float64](newNumberRecorder, KindNumberInput)
)

func TestBind_MountRendersCurrentValue(t *testing.T) {
	s := NewStore()
	_ = s.OpenScope("f")
	_ = s.Set("f", "name", KindInput, "Pull Day")

	b, err := boundText.Mount(s, "f", "name")
	if err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	c := b.Control()
	if c.renders != 1 {
		t.Errorf("expected 1 render on mount, got %d", c.renders)
	}
	if c.props.Value != "Pull Day" {
		t.Errorf("expected value %q, got %q", "Pull Day", c.props.Value)
	}
	if boundText.Kind() != KindInput {
		t.Errorf("unexpected kind %q", boundText.Kind())
	}
}

func TestBind_ZeroValueWhenUnset(t *testing.T) {
	s := NewStore()
	_ = s.OpenScope("f")

	b, err := boundList.Mount(s, "f", "days")
	if err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	if b.Control().props.Value != nil {
		t.Errorf("expected nil slice, got %v", b.Control().props.Value)
	}
}

func TestBind_ReadAfterWrite(t *testing.T) {
	s := NewStore()
	_ = s.OpenScope("f")

	b, _ := boundList.Mount(s, "f", "days")
	c := b.Control()

	if err := c.props.OnChange([]string{"tue", "thu"}); err != nil {
		t.Fatalf("OnChange failed: %v", err)
	}
	if diff := cmp.Diff([]string{"tue", "thu"}, c.props.Value); diff != "" {
		t.Errorf("rendered value mismatch (-want +got):\n%s", diff)
	}
	if c.renders != 2 {
		t.Errorf("expected exactly one re-render per change, got %d renders", c.renders)
	}
}

func TestBind_SharedKeyObservesWrites(t *testing.T) {
	s := NewStore()
	_ = s.OpenScope("f")

	a, _ := boundText.Mount(s, "f", "name")
	b, _ := boundText.Mount(s, "f", "name")

	if err := a.Control().props.OnChange("Full Body"); err != nil {
		t.Fatalf("OnChange failed: %v", err)
	}
	if got := b.Control().props.Value; got != "Full Body" {
		t.Errorf("second binding did not observe write, got %q", got)
	}
	if got := a.Control().props.Value; got != "Full Body" {
		t.Errorf("writer did not re-render, got %q", got)
	}
}

func TestBind_DifferentNamesAreIsolated(t *testing.T) {
	s := NewStore()
	_ = s.OpenScope("f")

	name, _ := boundText.Mount(s, "f", "name")
	notes, _ := boundText.Mount(s, "f", "notes")

	_ = name.Control().props.OnChange("Legs")

	if notes.Control().renders != 1 {
		t.Errorf("isolated binding re-rendered %d times", notes.Control().renders)
	}
	if notes.Control().props.Value != "" {
		t.Errorf("isolated binding observed %q", notes.Control().props.Value)
	}
}

func TestBind_DifferentFormsAreIsolated(t *testing.T) {
	s := NewStore()
	_ = s.OpenScope("a")
	_ = s.OpenScope("b")

	inA, _ := boundText.Mount(s, "a", "name")
	inB, _ := boundText.Mount(s, "b", "name")

	_ = inA.Control().props.OnChange("A")
	if inB.Control().props.Value != "" {
		t.Errorf("form b observed form a's write: %q", inB.Control().props.Value)
	}
}

func TestBind_MissingScope(t *testing.T) {
	s := NewStore()

	t.Run("Mount", func(t *testing.T) {
		_, err := boundText.Mount(s, "ghost", "name")
		if !errors.Is(err, apperrors.ErrFormScopeNotFound) {
			t.Errorf("expected ErrFormScopeNotFound, got %v", err)
		}
	})

	t.Run("Change after close", func(t *testing.T) {
		_ = s.OpenScope("f")
		b, err := boundText.Mount(s, "f", "name")
		if err != nil {
			t.Fatalf("Mount failed: %v", err)
		}
		_ = s.CloseScope("f")

		if err := b.Control().props.OnChange("late"); !errors.Is(err, apperrors.ErrFormScopeNotFound) {
			t.Errorf("expected ErrFormScopeNotFound, got %v", err)
		}
		if err := b.Render(); !errors.Is(err, apperrors.ErrFormScopeNotFound) {
			t.Errorf("expected ErrFormScopeNotFound from Render, got %v", err)
		}
	})
}

func TestBind_InvalidValueLeavesStoreUntouched(t *testing.T) {
	min := 1.0
	rules := DefaultRules()
	rules[KindNumberInput], _ = RuleSpec{Type: RuleNumber, Min: &min}.Rule()
	bounded := NewStore(WithRules(rules))
	_ = bounded.OpenScope("f")
	bb, _ := boundCount.Mount(bounded, "f", "reps")
	_ = bb.Control().props.OnChange(3)

	if err := bb.Control().props.OnChange(0); !errors.Is(err, apperrors.ErrFieldValueInvalid) {
		t.Fatalf("expected ErrFieldValueInvalid, got %v", err)
	}
	if got := bb.Control().props.Value; got != 3 {
		t.Errorf("expected value to stay 3, got %v", got)
	}
}

func TestBind_TypeMismatchOnRender(t *testing.T) {
	s := NewStore()
	_ = s.OpenScope("f")
	_ = s.Set("f", "days", KindCheckboxGroup, []string{"mon"})

	_, err := boundText.Mount(s, "f", "days")
	if !errors.Is(err, apperrors.ErrFieldTypeMismatch) {
		t.Errorf("expected ErrFieldTypeMismatch, got %v", err)
	}
}

func TestBind_Unmount(t *testing.T) {
	s := NewStore()
	_ = s.OpenScope("f")

	a, _ := boundText.Mount(s, "f", "name")
	b, _ := boundText.Mount(s, "f", "name")
	b.Unmount()
	b.Unmount()

	_ = a.Control().props.OnChange("after")
	if b.Control().renders != 1 {
		t.Errorf("unmounted binding re-rendered, renders=%d", b.Control().renders)
	}
	if b.Err() != nil {
		t.Errorf("unexpected binding error: %v", b.Err())
	}
}
