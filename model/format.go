package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrInvalidFormat = errors.New("invalid file format")
	ErrInvalidEngine = errors.New("invalid engine")
	ErrInvalidOption = errors.New("invalid option")
)

// FileFormat is a lower-case file extension with its leading dot.
type FileFormat string

const (
	FormatParquet FileFormat = ".parquet"
	FormatCSV     FileFormat = ".csv"
)

var knownFormats = map[FileFormat]bool{
	FormatParquet: true,
	FormatCSV:     true,
}

func ParseFileFormat(s string) (FileFormat, error) {
	f := strings.ToLower(strings.TrimSpace(s))
	if f != "" && !strings.HasPrefix(f, ".") {
		f = "." + f
	}
	if !knownFormats[FileFormat(f)] {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return FileFormat(f), nil
}

// FormatOf returns the format of path judged by its extension.
func FormatOf(path string) (FileFormat, bool) {
	f := FileFormat(strings.ToLower(filepath.Ext(path)))
	return f, knownFormats[f]
}

// FileFormats is a set of accepted formats. An empty set accepts anything.
type FileFormats map[FileFormat]struct{}

func NewFileFormats(formats ...FileFormat) FileFormats {
	res := make(FileFormats, len(formats))
	for _, f := range formats {
		res[f] = struct{}{}
	}
	return res
}

func ParseFileFormats(values []string) (FileFormats, error) {
	res := make(FileFormats, len(values))
	for _, v := range values {
		f, err := ParseFileFormat(v)
		if err != nil {
			return nil, err
		}
		res[f] = struct{}{}
	}
	return res, nil
}

func (f FileFormats) Empty() bool {
	return len(f) == 0
}

// Has reports whether the extension of path belongs to the set.
func (f FileFormats) Has(path string) bool {
	_, ok := f[FileFormat(strings.ToLower(filepath.Ext(path)))]
	return ok
}

func (f FileFormats) List() []string {
	res := make([]string, 0, len(f))
	for k := range f {
		res = append(res, string(k))
	}
	sort.Strings(res)
	return res
}

func (f FileFormats) String() string {
	return strings.Join(f.List(), ",")
}

type Engine string

const (
	EngineArrow  Engine = "arrow"
	EngineDuckDB Engine = "duckdb"
)

func ParseEngine(s string) (Engine, error) {
	switch e := Engine(strings.ToLower(s)); e {
	case EngineArrow, EngineDuckDB:
		return e, nil
	case "":
		return EngineArrow, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidEngine, s)
}
