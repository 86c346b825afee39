package data_types

import (
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
)

func WrapToColumn(name string, data any) (IColumn, error) {
	switch data.(type) {
	case []int64:
		return int64Builder(name, data)
	case []uint64:
		return uint64Builder(name, data)
	case []float64:
		return float64Builder(name, data)
	case []string:
		return strBuilder(name, data)
	}
	return nil, fmt.Errorf("unsupported data type: %T", data)
}

// DataTypes maps DuckDB, arrow and legacy type names to column builders.
var DataTypes = map[string]ColumnBuilder{
	"Int64":    int64Builder,
	"INT64":    int64Builder,
	"BIGINT":   int64Builder,
	"INT8":     int64Builder,
	"LONG":     int64Builder,
	"INTEGER":  int64Builder,
	"INT4":     int64Builder,
	"INT":      int64Builder,
	"SIGNED":   int64Builder,
	"SMALLINT": int64Builder,
	"INT2":     int64Builder,
	"SHORT":    int64Builder,
	"TINYINT":  int64Builder,
	"INT1":     int64Builder,

	"UInt64":    uint64Builder,
	"UINT64":    uint64Builder,
	"UBIGINT":   uint64Builder,
	"UINTEGER":  uint64Builder,
	"USMALLINT": uint64Builder,
	"UTINYINT":  uint64Builder,

	"Float64": float64Builder,
	"FLOAT64": float64Builder,
	"DOUBLE":  float64Builder,
	"FLOAT8":  float64Builder,
	"FLOAT":   float64Builder,
	"FLOAT4":  float64Builder,
	"REAL":    float64Builder,

	"String":  strBuilder,
	"STRING":  strBuilder,
	"UTF8":    strBuilder,
	"VARCHAR": strBuilder,
	"CHAR":    strBuilder,
	"BPCHAR":  strBuilder,
	"TEXT":    strBuilder,
}

type IColumn interface {
	AppendNulls(size int64)
	GetLength() int64
	ArrowDataType() arrow.DataType
	AppendOne(val any) error
	WriteToBatch(batch array.Builder) error
	GetName() string
	ParseFromStr(s string) error
	GetMinMax() (any, any)
}

type ColumnBuilder func(name string, data any, sizeAndCap ...int64) (IColumn, error)

func lookup(typeName string) (ColumnBuilder, bool) {
	if b, ok := DataTypes[typeName]; ok {
		return b, true
	}
	base := strings.ToUpper(strings.TrimSpace(typeName))
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	b, ok := DataTypes[base]
	return b, ok
}

// ForDatabaseType returns a builder for a database column type. Types
// without a typed column are kept as their string form.
func ForDatabaseType(typeName string) ColumnBuilder {
	if b, ok := lookup(typeName); ok {
		return b
	}
	return strBuilder
}

// Canonical returns the arrow name of a type alias, e.g. BIGINT -> int64.
// Unknown names are only lower-cased.
func Canonical(typeName string) string {
	b, ok := lookup(typeName)
	if !ok {
		return strings.ToLower(strings.TrimSpace(typeName))
	}
	col, err := b("", nil, 0)
	if err != nil {
		return strings.ToLower(typeName)
	}
	return col.ArrowDataType().Name()
}
