package data_types

import (
	"fmt"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"golang.org/x/exp/constraints"
)

type IArrowAppender[T constraints.Ordered] interface {
	AppendValues(values []T, valid []bool)
}

var _ IColumn = &Column[int64]{}

type Column[T constraints.Ordered] struct {
	data       []T
	valids     []bool
	name       string
	typeName   string
	arrowType  arrow.DataType
	getBuilder func(builder array.Builder) IArrowAppender[T]
	parseStr   func(s string) (T, error)
}

func colBuilder[T constraints.Ordered](createColumn func() *Column[T], name string, data any,
	sizeAndCap ...int64) (IColumn, error) {
	col := createColumn()
	col.name = name
	if data == nil {
		col.InitializeData(sizeAndCap...)
		return col, nil
	}
	err := col.ValidateData(data)
	if err != nil {
		return nil, err
	}
	col.data = data.([]T)
	col.valids = make([]bool, len(col.data))
	FastFillArray(col.valids, true)
	return col, nil
}

// InitializeData resets the column to zero length with the given capacity.
func (c *Column[T]) InitializeData(sizeAndCap ...int64) {
	var capacity int64 = 1000
	if len(sizeAndCap) > 0 {
		capacity = sizeAndCap[0]
	}
	if len(sizeAndCap) > 1 && sizeAndCap[1] > capacity {
		capacity = sizeAndCap[1]
	}
	c.data = make([]T, 0, capacity)
	c.valids = make([]bool, 0, capacity)
}

func (c *Column[T]) GetMinMax() (any, any) {
	var (
		lo, hi T
		found  bool
	)
	for i, v := range c.data {
		if !c.valids[i] {
			continue
		}
		if !found || v < lo {
			lo = v
		}
		if !found || v > hi {
			hi = v
		}
		found = true
	}
	if !found {
		return nil, nil
	}
	return lo, hi
}

func (c *Column[T]) AppendNulls(size int64) {
	c.data = append(c.data, make([]T, size)...)
	c.valids = append(c.valids, make([]bool, size)...)
}

func (c *Column[T]) GetLength() int64 {
	return int64(len(c.data))
}

func (c *Column[T]) ValidateData(data any) error {
	if _, ok := data.([]T); !ok {
		return fmt.Errorf("invalid data type %T for %s column", data, c.typeName)
	}
	return nil
}

func (c *Column[T]) ArrowDataType() arrow.DataType {
	return c.arrowType
}

// AppendOne appends a scanned value. Values of a foreign type go through
// their string form; nil appends a null.
func (c *Column[T]) AppendOne(val any) error {
	switch v := val.(type) {
	case nil:
		c.AppendNulls(1)
		return nil
	case T:
		c.data = append(c.data, v)
		c.valids = append(c.valids, true)
		return nil
	case []byte:
		return c.ParseFromStr(string(v))
	}
	return c.ParseFromStr(fmt.Sprint(val))
}

func (c *Column[T]) WriteToBatch(batch array.Builder) error {
	c.getBuilder(batch).AppendValues(c.data, c.valids)
	return nil
}

func (c *Column[T]) GetName() string {
	return c.name
}

func (c *Column[T]) ParseFromStr(s string) error {
	val, err := c.parseStr(s)
	if err != nil {
		return fmt.Errorf("column %q: %w", c.name, err)
	}
	c.data = append(c.data, val)
	c.valids = append(c.valids, true)
	return nil
}
