package schema

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/metrico/dvgrouper/frame"
	"github.com/metrico/dvgrouper/names"
)

var (
	ErrNotFound = errors.New("schema not found")
	ErrExists   = errors.New("schema already exists")
	// ErrExistsWarning is returned by Add under the Warn policy. The
	// registry is left unchanged and callers may treat it as non-fatal.
	ErrExistsWarning = errors.New("schema already exists, not added")
)

type Policy string

const (
	PolicyError   Policy = "error"
	PolicyWarn    Policy = "warn"
	PolicyIgnore  Policy = "ignore"
	PolicyReplace Policy = "replace"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(s)); p {
	case PolicyError, PolicyWarn, PolicyIgnore, PolicyReplace:
		return p, nil
	case "warning":
		return PolicyWarn, nil
	case "":
		return PolicyError, nil
	}
	return "", fmt.Errorf("unknown collision policy %q", s)
}

type addOptions struct {
	name     string
	onExists Policy
}

type AddOption func(o *addOptions)

// WithName registers the schema under name instead of its own.
func WithName(name string) AddOption {
	return func(o *addOptions) { o.name = name }
}

func OnExists(p Policy) AddOption {
	return func(o *addOptions) { o.onExists = p }
}

type Registry struct {
	mtx     sync.Mutex
	schemas map[string]*Schema
	order   []string
	logger  zerolog.Logger
}

func NewRegistry(logger zerolog.Logger, schemas ...*Schema) (*Registry, error) {
	r := &Registry{schemas: map[string]*Schema{}, logger: logger}
	for _, s := range schemas {
		if err := r.Add(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Add(s *Schema, opts ...AddOption) error {
	o := addOptions{name: s.Name, onExists: PolicyError}
	for _, opt := range opts {
		opt(&o)
	}
	if err := names.Validate(o.name); err != nil {
		return err
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()
	if _, ok := r.schemas[o.name]; ok {
		switch o.onExists {
		case PolicyReplace:
			r.schemas[o.name] = s
			return nil
		case PolicyIgnore:
			return nil
		case PolicyWarn:
			r.logger.Warn().Str("schema", o.name).Msg("schema already registered, not adding")
			return fmt.Errorf("%w: %q", ErrExistsWarning, o.name)
		default:
			return fmt.Errorf("%w: %q", ErrExists, o.name)
		}
	}
	r.schemas[o.name] = s
	r.order = append(r.order, o.name)
	return nil
}

func (r *Registry) Remove(name string) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if _, ok := r.schemas[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(r.schemas, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// RemoveSchema removes every name under which s is registered.
func (r *Registry) RemoveSchema(s *Schema) error {
	r.mtx.Lock()
	var found []string
	for _, n := range r.order {
		if r.schemas[n] == s {
			found = append(found, n)
		}
	}
	r.mtx.Unlock()
	if len(found) == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, s.Name)
	}
	for _, n := range found {
		if err := r.Remove(n); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) Get(name string) (*Schema, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	s, ok := r.schemas[name]
	return s, ok
}

// Names lists registered names in insertion order.
func (r *Registry) Names() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return append([]string(nil), r.order...)
}

func (r *Registry) Len() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.schemas)
}

// Validate checks f against the schema registered as name.
func (r *Registry) Validate(name string, f *frame.Frame) error {
	s, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return s.Validate(f)
}
