// Package names turns file-derived strings into identifiers usable as
// dataset names.
package names

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var ErrParse = errors.New("cannot parse name")

// ErrInvalidName is matched by every *InvalidNameError.
var ErrInvalidName = errors.New("invalid name")

type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid name %q: must match %s", e.Name, identifierCheck.String())
}

func (e *InvalidNameError) Is(target error) bool {
	return target == ErrInvalidName
}

// DefaultPrefixes are noise prefixes commonly found in dataset file names.
var DefaultPrefixes = []string{"exp", "data", "Data", "table"}

var (
	identifierCheck = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	separators      = strings.NewReplacer("/", "_", ".", "_", "-", "_", ",", "_")
	leadingInvalid  = regexp.MustCompile(`^[^A-Za-z_]+`)
	invalidChars    = regexp.MustCompile(`[^A-Za-z0-9_]`)
	alnum           = regexp.MustCompile(`[A-Za-z0-9]`)
)

const prefixSeparators = "._-"

func Validate(name string) error {
	if !identifierCheck.MatchString(name) {
		return &InvalidNameError{Name: name}
	}
	return nil
}

// Sanitize repairs s into an identifier. Valid identifiers are returned
// unchanged. Input without any letter or digit fails with ErrParse.
func Sanitize(s string) (string, error) {
	if !alnum.MatchString(s) {
		return "", fmt.Errorf("%w: %q has no letters or digits", ErrParse, s)
	}
	if identifierCheck.MatchString(s) {
		return s, nil
	}
	res := separators.Replace(s)
	res = leadingInvalid.ReplaceAllString(res, "")
	res = invalidChars.ReplaceAllString(res, "")
	if res == "" || !alnum.MatchString(res) {
		return "", fmt.Errorf("%w: %q", ErrParse, s)
	}
	return res, nil
}

// DatasetName derives a dataset name from a file base name. The first noise
// prefix followed by a separator is stripped together with the separators,
// unless nothing would remain. Prefixes are only matched at the start of
// the name, never as substrings elsewhere: "rules_data_2020" keeps its
// "data".
func DatasetName(base string, prefixes []string) (string, error) {
	name := base
	for _, p := range prefixes {
		if p == "" || len(name) <= len(p) || !strings.HasPrefix(name, p) ||
			!strings.ContainsRune(prefixSeparators, rune(name[len(p)])) {
			continue
		}
		rest := strings.TrimLeft(name[len(p):], prefixSeparators)
		if rest == "" {
			break
		}
		if !leadingInvalid.MatchString(rest) {
			name = rest
		} else {
			name = "_" + rest
		}
		break
	}
	return Sanitize(name)
}

// StandardBasename returns the base name of path without its extension when
// the extension is one of exts. Other extensions are kept.
func StandardBasename(path string, exts []string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return strings.TrimSuffix(base, ext)
		}
	}
	return base
}
