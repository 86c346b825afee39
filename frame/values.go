package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
)

// Ints returns the non-null values of column i as integers. Floats must be
// integral and strings must parse.
func (f *Frame) Ints(i int) ([]int64, error) {
	var res []int64
	for _, chunk := range f.table.Column(i).Data().Chunks() {
		for j := 0; j < chunk.Len(); j++ {
			if chunk.IsNull(j) {
				continue
			}
			v, err := intAt(chunk, j)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", f.table.Schema().Field(i).Name, err)
			}
			res = append(res, v)
		}
	}
	return res, nil
}

func intAt(arr arrow.Array, j int) (int64, error) {
	switch a := arr.(type) {
	case *array.Int64:
		return a.Value(j), nil
	case *array.Int32:
		return int64(a.Value(j)), nil
	case *array.Int16:
		return int64(a.Value(j)), nil
	case *array.Int8:
		return int64(a.Value(j)), nil
	case *array.Uint64:
		return int64(a.Value(j)), nil
	case *array.Uint32:
		return int64(a.Value(j)), nil
	case *array.Uint16:
		return int64(a.Value(j)), nil
	case *array.Uint8:
		return int64(a.Value(j)), nil
	case *array.Float64:
		return integral(a.Value(j))
	case *array.Float32:
		return integral(float64(a.Value(j)))
	case *array.String:
		return strconv.ParseInt(strings.TrimSpace(a.Value(j)), 10, 64)
	case *array.LargeString:
		return strconv.ParseInt(strings.TrimSpace(a.Value(j)), 10, 64)
	}
	return 0, fmt.Errorf("unsupported type %s", arr.DataType())
}

func integral(v float64) (int64, error) {
	if v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%v is not an integer", v)
	}
	return int64(v), nil
}

// Strings returns the non-null values of a string column, or false when
// column i does not hold strings.
func (f *Frame) Strings(i int) ([]string, bool) {
	var res []string
	for _, chunk := range f.table.Column(i).Data().Chunks() {
		switch a := chunk.(type) {
		case *array.String:
			for j := 0; j < a.Len(); j++ {
				if a.IsValid(j) {
					res = append(res, a.Value(j))
				}
			}
		case *array.LargeString:
			for j := 0; j < a.Len(); j++ {
				if a.IsValid(j) {
					res = append(res, a.Value(j))
				}
			}
		default:
			return nil, false
		}
	}
	return res, true
}
