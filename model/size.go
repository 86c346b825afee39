package model

import (
	"fmt"
	"strings"
)

type SizeUnit string

const (
	SizeMB SizeUnit = "MB"
	SizeKB SizeUnit = "KB"
	SizeB  SizeUnit = "B"
)

var sizeDivisors = map[SizeUnit]float64{
	SizeMB: 1e6,
	SizeKB: 1e3,
	SizeB:  1,
}

func ParseSizeUnit(s string) (SizeUnit, error) {
	u := SizeUnit(strings.ToUpper(s))
	if u == "" {
		return SizeMB, nil
	}
	if _, ok := sizeDivisors[u]; !ok {
		return "", fmt.Errorf("%w: size unit %q", ErrInvalidOption, s)
	}
	return u, nil
}

// Divisor converts a byte count into the unit.
func (u SizeUnit) Divisor() float64 {
	if d, ok := sizeDivisors[u]; ok {
		return d
	}
	return sizeDivisors[SizeMB]
}

func (u SizeUnit) Convert(bytes int64) float64 {
	return float64(bytes) / u.Divisor()
}

// SizeMode selects between a single total size and a per-column breakdown.
type SizeMode string

const (
	SizeModeTotal   SizeMode = "total"
	SizeModeColumns SizeMode = "cols"
)

func ParseSizeMode(s string) (SizeMode, error) {
	switch m := SizeMode(strings.ToLower(s)); m {
	case SizeModeTotal, SizeModeColumns:
		return m, nil
	case "":
		return SizeModeTotal, nil
	}
	return "", fmt.Errorf("%w: size mode %q", ErrInvalidOption, s)
}

type ColumnSchema struct {
	Type string   `json:"type" yaml:"type"`
	Size *float64 `json:"size,omitempty" yaml:"size,omitempty"`
}

// Schema maps a column name to its inferred type.
type Schema map[string]ColumnSchema
