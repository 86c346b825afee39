package metadata

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/metrico/dvgrouper/frame"
)

// ErrType is returned for input of the wrong kind, e.g. a non-list year set.
var ErrType = errors.New("type error")

// NA is the only range reported for a dataset without years.
const NA = "NA"

// DefaultYearColumns are probed in order; the last present column is used.
var DefaultYearColumns = []string{"ruleYear", "yearofdata", "Year", "LatestYear", "year"}

// YearRanges collapses years into sorted consecutive ranges such as
// "2019-2021". Duplicates are ignored.
func YearRanges(years []int) []string {
	if len(years) == 0 {
		return []string{NA}
	}
	sorted := append([]int(nil), years...)
	sort.Ints(sorted)
	var res []string
	start, end := sorted[0], sorted[0]
	flush := func() {
		if start == end {
			res = append(res, strconv.Itoa(start))
		} else {
			res = append(res, fmt.Sprintf("%d-%d", start, end))
		}
	}
	for _, y := range sorted[1:] {
		switch {
		case y == end:
		case y == end+1:
			end = y
		default:
			flush()
			start, end = y, y
		}
	}
	flush()
	return res
}

// YearRangesOf accepts any slice or array of integers, or of integral
// floats. Other input fails with ErrType.
func YearRangesOf(v any) ([]string, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, fmt.Errorf("%w: years must be a list, got %T", ErrType, v)
	}
	years := make([]int, rv.Len())
	for i := range years {
		e := rv.Index(i)
		for e.Kind() == reflect.Interface || e.Kind() == reflect.Pointer {
			e = e.Elem()
		}
		switch e.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			years[i] = int(e.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			years[i] = int(e.Uint())
		case reflect.Float32, reflect.Float64:
			f := e.Float()
			if f != float64(int(f)) {
				return nil, fmt.Errorf("%w: year %v is not an integer", ErrType, f)
			}
			years[i] = int(f)
		default:
			return nil, fmt.Errorf("%w: year at %d has type %s", ErrType, i, e.Kind())
		}
	}
	return YearRanges(years), nil
}

// ExpandRanges reverses YearRanges.
func ExpandRanges(ranges []string) ([]int, error) {
	var res []int
	for _, r := range ranges {
		if r == NA {
			continue
		}
		from, to, found := strings.Cut(r, "-")
		start, err := strconv.Atoi(from)
		if err != nil {
			return nil, fmt.Errorf("invalid year range %q: %w", r, err)
		}
		end := start
		if found {
			if end, err = strconv.Atoi(to); err != nil {
				return nil, fmt.Errorf("invalid year range %q: %w", r, err)
			}
		}
		for y := start; y <= end; y++ {
			res = append(res, y)
		}
	}
	return res, nil
}

// YearColumn returns the position of the last candidate present in f, or -1.
func YearColumn(f *frame.Frame, candidates []string) int {
	idx := -1
	for _, c := range candidates {
		if i := f.ColumnIndex(c); i >= 0 {
			idx = i
		}
	}
	return idx
}

// YearsOf returns the distinct years of the year column of f.
func YearsOf(f *frame.Frame, candidates []string) ([]int, error) {
	i := YearColumn(f, candidates)
	if i < 0 {
		return nil, nil
	}
	values, err := f.Ints(i)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrType, err)
	}
	seen := map[int64]bool{}
	var res []int
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			res = append(res, int(v))
		}
	}
	sort.Ints(res)
	return res, nil
}

// ClosestN returns the element of sorted closest to n. Ties go to the
// larger element.
func ClosestN(n int, sorted []int) (int, error) {
	if len(sorted) == 0 {
		return 0, fmt.Errorf("%w: no values to match %d against", ErrType, n)
	}
	idx := sort.SearchInts(sorted, n)
	switch idx {
	case 0:
		return sorted[0], nil
	case len(sorted):
		return sorted[len(sorted)-1], nil
	}
	before, after := sorted[idx-1], sorted[idx]
	if after-n > n-before {
		return before, nil
	}
	return after, nil
}

// ClosestYears maps each year to the closest of the available years.
func ClosestYears(years []int, available []int) ([]int, error) {
	sorted := append([]int(nil), available...)
	sort.Ints(sorted)
	res := make([]int, len(years))
	for i, y := range years {
		c, err := ClosestN(y, sorted)
		if err != nil {
			return nil, err
		}
		res[i] = c
	}
	return res, nil
}
