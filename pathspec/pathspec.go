// Package pathspec checks that input paths exist and hold only files of
// the accepted formats.
package pathspec

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/metrico/dvgrouper/model"
)

// DefaultIgnoreRegex exempts hidden files and python package markers.
const DefaultIgnoreRegex = `^\.|^__init__\.py$`

const maxReported = 3

var (
	ErrPathNotFound        = errors.New("path not found")
	ErrFormatMismatch      = errors.New("file format mismatch")
	ErrUnexpectedFileType  = errors.New("unexpected file type")
	ErrInvalidPattern      = errors.New("invalid ignore pattern")
	ErrUnsupportedPathKind = errors.New("unsupported path kind")
)

type InvalidPatternError struct {
	Pattern string
	Err     error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid ignore pattern %q: %v", e.Pattern, e.Err)
}

func (e *InvalidPatternError) Is(target error) bool { return target == ErrInvalidPattern }

func (e *InvalidPatternError) Unwrap() error { return e.Err }

// UnexpectedFileTypeError lists at most three offending files of a directory
// and counts the rest.
type UnexpectedFileTypeError struct {
	Dir       string
	Paths     []string
	Remaining int
	Formats   model.FileFormats
}

func (e *UnexpectedFileTypeError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "directory %q contains %d files not in [%s]: %s",
		e.Dir, len(e.Paths)+e.Remaining, e.Formats, strings.Join(e.Paths, ","))
	if e.Remaining > 0 {
		fmt.Fprintf(&sb, ", ... (%d more)", e.Remaining)
	}
	return sb.String()
}

func (e *UnexpectedFileTypeError) Is(target error) bool { return target == ErrUnexpectedFileType }

type Kind int

const (
	KindFile Kind = iota + 1
	KindDir
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "directory"
	}
	return "unknown"
}

// PathSpec is a path that passed validation.
type PathSpec struct {
	Path    string
	Kind    Kind
	Formats model.FileFormats
}

type Option func(v *Validator) error

// WithIgnoreFile adds gitignore-style rules read from file.
func WithIgnoreFile(file string) Option {
	return func(v *Validator) error {
		if file == "" {
			return nil
		}
		gi, err := ignore.CompileIgnoreFile(file)
		if err != nil {
			return fmt.Errorf("failed to read ignore file %q: %w", file, err)
		}
		v.gitignore = gi
		return nil
	}
}

// WithIgnoreLines adds gitignore-style rules.
func WithIgnoreLines(lines ...string) Option {
	return func(v *Validator) error {
		if len(lines) > 0 {
			v.gitignore = ignore.CompileIgnoreLines(lines...)
		}
		return nil
	}
}

type Validator struct {
	formats   model.FileFormats
	ignore    *regexp.Regexp
	gitignore *ignore.GitIgnore
}

// CompileIgnore compiles an ignore pattern. An empty pattern ignores nothing.
func CompileIgnore(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &InvalidPatternError{Pattern: pattern, Err: err}
	}
	return re, nil
}

func New(formats model.FileFormats, ignoreRegex string, opts ...Option) (*Validator, error) {
	re, err := CompileIgnore(ignoreRegex)
	if err != nil {
		return nil, err
	}
	v := &Validator{formats: formats, ignore: re}
	for _, o := range opts {
		if err := o(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (v *Validator) Formats() model.FileFormats {
	return v.formats
}

// Ignored reports whether the file at path, found under root, is exempt from
// format checks. The regex is searched in the base name, gitignore rules
// are matched against the path relative to root.
func (v *Validator) Ignored(root, path string) bool {
	if v.ignore != nil && v.ignore.MatchString(filepath.Base(path)) {
		return true
	}
	if v.gitignore == nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return v.gitignore.MatchesPath(filepath.ToSlash(rel))
}

// Validate checks path according to its kind.
func (v *Validator) Validate(path string) (*PathSpec, error) {
	kind, err := KindOf(path)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindFile:
		err = v.ValidateFile(path)
	case KindDir:
		err = v.ValidateDir(path)
	}
	if err != nil {
		return nil, err
	}
	return &PathSpec{Path: path, Kind: kind, Formats: v.formats}, nil
}

// KindOf stats path following symlinks.
func KindOf(path string) (Kind, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("%w: %q", ErrPathNotFound, path)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to stat %q: %w", path, err)
	}
	switch {
	case info.Mode().IsRegular():
		return KindFile, nil
	case info.IsDir():
		return KindDir, nil
	}
	return 0, fmt.Errorf("%w: %q is %s", ErrUnsupportedPathKind, path, info.Mode().Type())
}

func (v *Validator) ValidateFile(path string) error {
	kind, err := KindOf(path)
	if err != nil {
		return err
	}
	if kind != KindFile {
		return fmt.Errorf("%w: %q is a %s", ErrUnsupportedPathKind, path, kind)
	}
	if v.formats.Empty() || v.formats.Has(path) {
		return nil
	}
	return fmt.Errorf("%w: %q is not one of [%s]", ErrFormatMismatch, path, v.formats)
}

// ValidateDir checks every file below root at any depth.
func (v *Validator) ValidateDir(root string) error {
	kind, err := KindOf(root)
	if err != nil {
		return err
	}
	if kind != KindDir {
		return fmt.Errorf("%w: %q is a %s", ErrUnsupportedPathKind, root, kind)
	}
	if v.formats.Empty() {
		return nil
	}
	bad := &UnexpectedFileTypeError{Dir: root, Formats: v.formats}
	err = Walk(root, func(path string, mode fs.FileMode) error {
		if (mode.IsRegular() && v.formats.Has(path)) || v.Ignored(root, path) {
			return nil
		}
		if len(bad.Paths) < maxReported {
			bad.Paths = append(bad.Paths, path)
		} else {
			bad.Remaining++
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(bad.Paths) > 0 {
		return bad
	}
	return nil
}
