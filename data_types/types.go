package data_types

import (
	"strconv"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
)

func int64Builder(name string, data any, sizeAndCap ...int64) (IColumn, error) {
	return colBuilder(func() *Column[int64] {
		return &Column[int64]{
			typeName:  "BIGINT",
			arrowType: arrow.PrimitiveTypes.Int64,
			getBuilder: func(builder array.Builder) IArrowAppender[int64] {
				return builder.(*array.Int64Builder)
			},
			parseStr: func(s string) (int64, error) {
				return strconv.ParseInt(s, 10, 64)
			},
		}
	}, name, data, sizeAndCap...)
}

func uint64Builder(name string, data any, sizeAndCap ...int64) (IColumn, error) {
	return colBuilder(func() *Column[uint64] {
		return &Column[uint64]{
			typeName:  "UBIGINT",
			arrowType: arrow.PrimitiveTypes.Uint64,
			getBuilder: func(builder array.Builder) IArrowAppender[uint64] {
				return builder.(*array.Uint64Builder)
			},
			parseStr: func(s string) (uint64, error) {
				return strconv.ParseUint(s, 10, 64)
			},
		}
	}, name, data, sizeAndCap...)
}

func float64Builder(name string, data any, sizeAndCap ...int64) (IColumn, error) {
	return colBuilder(func() *Column[float64] {
		return &Column[float64]{
			typeName:  "DOUBLE",
			arrowType: arrow.PrimitiveTypes.Float64,
			getBuilder: func(builder array.Builder) IArrowAppender[float64] {
				return builder.(*array.Float64Builder)
			},
			parseStr: func(s string) (float64, error) {
				return strconv.ParseFloat(s, 64)
			},
		}
	}, name, data, sizeAndCap...)
}

func strBuilder(name string, data any, sizeAndCap ...int64) (IColumn, error) {
	return colBuilder(func() *Column[string] {
		return &Column[string]{
			typeName:  "VARCHAR",
			arrowType: arrow.BinaryTypes.String,
			getBuilder: func(builder array.Builder) IArrowAppender[string] {
				return builder.(*array.StringBuilder)
			},
			parseStr: func(s string) (string, error) {
				return s, nil
			},
		}
	}, name, data, sizeAndCap...)
}
