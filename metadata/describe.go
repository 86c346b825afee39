package metadata

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-faster/city"

	"github.com/metrico/dvgrouper/frame"
	"github.com/metrico/dvgrouper/model"
)

type Options struct {
	YearColumns []string
	SizeUnit    model.SizeUnit
	SizeMode    model.SizeMode
}

func (o Options) withDefaults() Options {
	if o.YearColumns == nil {
		o.YearColumns = DefaultYearColumns
	}
	if o.SizeUnit == "" {
		o.SizeUnit = model.SizeMB
	}
	if o.SizeMode == "" {
		o.SizeMode = model.SizeModeTotal
	}
	return o
}

// Describe computes the metadata of f. Keys of extra override computed ones.
func Describe(f *frame.Frame, opts Options, extra Data) (Data, error) {
	opts = opts.withDefaults()

	years, err := YearsOf(f, opts.YearColumns)
	if err != nil {
		return nil, err
	}

	indexCol := f.ColumnIndex(frame.UnnamedIndex)
	sizes := f.ColumnSizes()
	schema := model.Schema{}
	var total int64
	for i, name := range f.ColumnNames() {
		total += sizes[i]
		if i == indexCol {
			continue
		}
		col := model.ColumnSchema{Type: InferType(f, i)}
		if opts.SizeMode == model.SizeModeColumns {
			size := opts.SizeUnit.Convert(sizes[i])
			col.Size = &size
		}
		schema[name] = col
	}

	res := Data{
		KeyYears:    YearRanges(years),
		KeyIndexCol: nil,
		KeySchema:   schema,
		KeySchemaID: SchemaID(schema),
		KeyRows:     f.NumRows(),
	}
	if indexCol >= 0 {
		res[KeyIndexCol] = indexCol
	}
	if opts.SizeMode == model.SizeModeTotal {
		res[KeyTotalSize] = opts.SizeUnit.Convert(total)
		res[KeySizeUnit] = string(opts.SizeUnit)
	}
	return res.Override(extra), nil
}

// InferType names the arrow type of column i. Strings that all look
// numeric are reported as int64 or float64.
func InferType(f *frame.Frame, i int) string {
	values, ok := f.Strings(i)
	if !ok || len(values) == 0 {
		return f.Schema().Field(i).Type.Name()
	}
	isInt, isFloat := true, true
	for _, v := range values {
		v = strings.TrimSpace(v)
		if isInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			isFloat = false
			break
		}
	}
	switch {
	case isInt:
		return "int64"
	case isFloat:
		return "float64"
	}
	return f.Schema().Field(i).Type.Name()
}

// SchemaID fingerprints the column names and types of a schema.
func SchemaID(schema model.Schema) string {
	names := make([]string, 0, len(schema))
	for n := range schema {
		names = append(names, n)
	}
	sort.Strings(names)
	var sb strings.Builder
	for _, n := range names {
		sb.WriteString(n)
		sb.WriteByte(':')
		sb.WriteString(schema[n].Type)
		sb.WriteByte('\n')
	}
	return fmt.Sprintf("%016x", city.CH64([]byte(sb.String())))
}

func Years(d Data) []string {
	v, _ := Get[[]string](d, KeyYears)
	return v
}

func TotalSize(d Data) (float64, bool) {
	return Get[float64](d, KeyTotalSize)
}

func IndexCol(d Data) (int, bool) {
	return Get[int](d, KeyIndexCol)
}

func SchemaOf(d Data) model.Schema {
	v, _ := Get[model.Schema](d, KeySchema)
	return v
}

func Rows(d Data) int64 {
	v, _ := Get[int64](d, KeyRows)
	return v
}

func String(d Data, key string) string {
	v, _ := Get[string](d, key)
	return v
}
