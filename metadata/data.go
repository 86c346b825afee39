// Package metadata derives per-dataset metadata from loaded frames.
package metadata

import (
	"fmt"
	"sort"
)

// Keys of the metadata produced by Describe and the loader.
const (
	KeyData      = "data"
	KeyName      = "name"
	KeyYears     = "years_of_data"
	KeyTotalSize = "total_size"
	KeySizeUnit  = "size_unit"
	KeyIndexCol  = "index_col"
	KeySchema    = "schema"
	KeySchemaID  = "schema_id"
	KeyRows      = "rows"
	KeyPath      = "path"
	KeyFormat    = "format"
)

// Data is a free-form metadata map.
type Data map[string]any

func (d Data) Set(key string, value any) {
	d[key] = value
}

// Get returns the value under key when it has type T.
func Get[T any](d Data, key string) (T, bool) {
	v, ok := d[key].(T)
	return v, ok
}

func (d Data) Copy() Data {
	res := make(Data, len(d))
	for k, v := range d {
		res[k] = v
	}
	return res
}

// Without returns a copy of d without keys.
func (d Data) Without(keys ...string) Data {
	res := d.Copy()
	for _, k := range keys {
		delete(res, k)
	}
	return res
}

func (d Data) Keys() []string {
	res := make([]string, 0, len(d))
	for k := range d {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

// Override returns a copy of d updated with extra. Keys of extra win.
func (d Data) Override(extra Data) Data {
	res := d.Copy()
	for k, v := range extra {
		res[k] = v
	}
	return res
}

// MergeError reports a key present in two of the merged dicts.
type MergeError struct {
	Key    string
	First  int
	Second int
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("cannot merge metadata: key %q of dict #%d already set by dict #%d",
		e.Key, e.Second, e.First)
}

// Combine shallow-merges dicts. A key present in more than one dict is an
// error naming both dicts by position.
func Combine(dicts ...Data) (Data, error) {
	res := Data{}
	owner := map[string]int{}
	for i, d := range dicts {
		for _, k := range d.Keys() {
			if first, ok := owner[k]; ok {
				return nil, &MergeError{Key: k, First: first, Second: i}
			}
			owner[k] = i
			res[k] = d[k]
		}
	}
	return res, nil
}
