// Package formstore holds form field values keyed by (formID, name) and binds
// presentational controls to them.
//
// A Store is the single source of truth for every field in an open form
// scope. Controls never mutate it directly; they receive a value and a change
// callback from a Binding, and every write goes through Store.Set, which
// coerces the value for its field kind and notifies the subscribers of that
// key only.
package formstore

import (
	"log/slog"
	"sync"

	apperrors "github.com/Megloux/mosaic/pkg/errors"
)

// Store is safe for concurrent use. Writes to different keys are not ordered
// relative to each other.
type Store struct {
	mu     sync.RWMutex
	scopes map[string]*scope
	rules  Rules
	logger *slog.Logger
	nextID uint64
}

type scope struct {
	values map[string]any
	kinds  map[string]FieldKind
	subs   map[string]map[uint64]func(any)
	// keyMu serializes write-and-notify per name, so subscribers see writes
	// to one key in the order the store applied them.
	keyMu map[string]*sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithRules replaces the default coercion rules.
func WithRules(rules Rules) Option {
	return func(s *Store) {
		s.rules = rules
	}
}

// WithLogger sets the logger used for scope lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		scopes: make(map[string]*scope),
		rules:  DefaultRules(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "formstore")
	return s
}

func scopeNotFound(formID string) error {
	return apperrors.ErrFormScopeNotFound.WithMetadata("form_id", formID)
}

// OpenScope creates the scope for formID.
func (s *Store) OpenScope(formID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scopes[formID]; ok {
		return apperrors.ErrFormScopeExists.WithMetadata("form_id", formID)
	}
	s.scopes[formID] = &scope{
		values: make(map[string]any),
		kinds:  make(map[string]FieldKind),
		subs:   make(map[string]map[uint64]func(any)),
		keyMu:  make(map[string]*sync.Mutex),
	}
	s.logger.Debug("Form scope opened", "form_id", formID)
	return nil
}

// CloseScope drops every value and subscription in formID.
func (s *Store) CloseScope(formID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scopes[formID]; !ok {
		return scopeNotFound(formID)
	}
	delete(s.scopes, formID)
	s.logger.Debug("Form scope closed", "form_id", formID)
	return nil
}

// HasScope reports whether formID is open.
func (s *Store) HasScope(formID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.scopes[formID]
	return ok
}

// Get returns the current value of a field, or nil when it was never set.
func (s *Store) Get(formID, name string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.scopes[formID]
	if !ok {
		return nil, scopeNotFound(formID)
	}
	return clone(sc.values[name]), nil
}

// Set coerces value with the rule for kind, stores it and notifies the
// subscribers of (formID, name). Subscribers run on the caller's goroutine
// after the store lock has been released. Writes to the same key are applied
// and delivered one at a time, so a subscriber must not write the key it
// observes.
func (s *Store) Set(formID, name string, kind FieldKind, value any) error {
	rule, ok := s.rules[kind]
	if !ok {
		return apperrors.ErrFieldKindUnknown.WithMetadata("kind", string(kind))
	}
	coerced, err := rule(value)
	if err != nil {
		if mErr, ok := err.(*apperrors.MosaicError); ok {
			return mErr.WithMetadata("field", name)
		}
		return apperrors.ErrFieldValueInvalid.WithCause(err).WithMetadata("field", name)
	}

	unlock, err := s.lockKey(formID, name)
	if err != nil {
		return err
	}
	defer unlock()

	s.mu.Lock()
	sc, ok := s.scopes[formID]
	if !ok {
		s.mu.Unlock()
		return scopeNotFound(formID)
	}
	if existing, ok := sc.kinds[name]; ok && existing != kind {
		s.mu.Unlock()
		return apperrors.ErrFieldTypeMismatch.
			WithMessage("field already holds a " + string(existing) + " value").
			WithMetadata("field", name)
	}
	sc.kinds[name] = kind
	sc.values[name] = coerced

	listeners := make([]func(any), 0, len(sc.subs[name]))
	for _, fn := range sc.subs[name] {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(clone(coerced))
	}
	return nil
}

// lockKey acquires the write-and-notify lock of (formID, name).
func (s *Store) lockKey(formID, name string) (func(), error) {
	s.mu.Lock()
	sc, ok := s.scopes[formID]
	if !ok {
		s.mu.Unlock()
		return nil, scopeNotFound(formID)
	}
	mu, ok := sc.keyMu[name]
	if !ok {
		mu = &sync.Mutex{}
		sc.keyMu[name] = mu
	}
	s.mu.Unlock()

	mu.Lock()
	return mu.Unlock, nil
}

// read passes the current value of (formID, name) to fn while holding the
// key's write lock, so fn cannot interleave with a delivery of a newer value.
func (s *Store) read(formID, name string, fn func(any)) error {
	unlock, err := s.lockKey(formID, name)
	if err != nil {
		return err
	}
	defer unlock()

	raw, err := s.Get(formID, name)
	if err != nil {
		return err
	}
	fn(raw)
	return nil
}

// Subscribe registers fn for changes to (formID, name). The returned cancel
// func is idempotent and safe to call after the scope has closed.
func (s *Store) Subscribe(formID, name string, fn func(any)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.scopes[formID]
	if !ok {
		return nil, scopeNotFound(formID)
	}
	s.nextID++
	id := s.nextID
	if sc.subs[name] == nil {
		sc.subs[name] = make(map[uint64]func(any))
	}
	sc.subs[name][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(sc.subs[name], id)
		})
	}, nil
}

// Snapshot copies every value currently held in formID.
func (s *Store) Snapshot(formID string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.scopes[formID]
	if !ok {
		return nil, scopeNotFound(formID)
	}
	out := make(map[string]any, len(sc.values))
	for k, v := range sc.values {
		out[k] = clone(v)
	}
	return out, nil
}

func clone(v any) any {
	if list, ok := v.([]string); ok {
		out := make([]string, len(list))
		copy(out, list)
		return out
	}
	return v
}
