// Package schema declares expected table shapes and keeps them in a
// registry with explicit collision handling.
package schema

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/metrico/dvgrouper/data_types"
	"github.com/metrico/dvgrouper/frame"
)

var ErrValidation = errors.New("schema validation failed")

type Column struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Nullable bool   `yaml:"nullable" json:"nullable"`
}

type Schema struct {
	Name    string   `yaml:"name" json:"name"`
	Columns []Column `yaml:"columns" json:"columns"`
	// Strict rejects columns that are not declared.
	Strict bool `yaml:"strict" json:"strict"`
}

type ValidationError struct {
	Schema    string
	Problems  []string
	Remaining int
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("frame does not match schema %q: %s", e.Schema, strings.Join(e.Problems, "; "))
	if e.Remaining > 0 {
		msg += fmt.Sprintf("; ... (%d more)", e.Remaining)
	}
	return msg
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) add(format string, args ...any) {
	if len(e.Problems) < 3 {
		e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
		return
	}
	e.Remaining++
}

// Validate checks presence, type and nullability of the declared columns.
// Type names are compared after alias resolution, so BIGINT matches int64.
func (s *Schema) Validate(f *frame.Frame) error {
	verr := &ValidationError{Schema: s.Name}
	declared := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		declared[c.Name] = true
		i := f.ColumnIndex(c.Name)
		if i < 0 {
			verr.add("column %q is missing", c.Name)
			continue
		}
		if c.Type != "" {
			want := data_types.Canonical(c.Type)
			got := f.Schema().Field(i).Type.Name()
			if want != got {
				verr.add("column %q has type %s, expected %s", c.Name, got, want)
			}
		}
		if nulls := f.Column(i).Data().NullN(); !c.Nullable && nulls > 0 {
			verr.add("column %q has %d nulls", c.Name, nulls)
		}
	}
	if s.Strict {
		for _, n := range f.ColumnNames() {
			if !declared[n] {
				verr.add("column %q is not declared", n)
			}
		}
	}
	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}

type file struct {
	Schemas []*Schema `yaml:"schemas"`
}

// LoadFile reads schema definitions from a YAML file with a top-level
// "schemas" list.
func LoadFile(path string) ([]*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f file
	if err = yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse schema file %q: %w", path, err)
	}
	return f.Schemas, nil
}
