// Package frame holds loaded tables and reads them from parquet and csv
// files.
package frame

import (
	"fmt"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
)

// UnnamedIndex is the header pandas writes for an unnamed index column.
const UnnamedIndex = "Unnamed: 0"

// Frame is an in-memory table with an optional index column moved out of
// the data columns.
type Frame struct {
	table arrow.Table
	index *arrow.Column
}

// New takes ownership of table.
func New(table arrow.Table) *Frame {
	return &Frame{table: table}
}

func FromRecords(schema *arrow.Schema, records ...arrow.Record) *Frame {
	return New(array.NewTableFromRecords(schema, records))
}

func (f *Frame) Table() arrow.Table { return f.table }
func (f *Frame) Schema() *arrow.Schema { return f.table.Schema() }
func (f *Frame) NumRows() int64 { return f.table.NumRows() }
func (f *Frame) NumCols() int { return int(f.table.NumCols()) }
func (f *Frame) Column(i int) *arrow.Column { return f.table.Column(i) }
func (f *Frame) Index() *arrow.Column { return f.index }

func (f *Frame) ColumnNames() []string {
	res := make([]string, f.NumCols())
	for i := range res {
		res[i] = f.table.Schema().Field(i).Name
	}
	return res
}

// ColumnIndex returns the position of the first column called name, or -1.
func (f *Frame) ColumnIndex(name string) int {
	idx := f.table.Schema().FieldIndices(name)
	if len(idx) == 0 {
		return -1
	}
	return idx[0]
}

// ColumnSizes returns the bytes held by each column's buffers.
func (f *Frame) ColumnSizes() []int64 {
	res := make([]int64, f.NumCols())
	for i := range res {
		for _, chunk := range f.table.Column(i).Data().Chunks() {
			res[i] += dataSize(chunk.Data())
		}
	}
	return res
}

func dataSize(d arrow.ArrayData) int64 {
	var size int64
	for _, b := range d.Buffers() {
		if b != nil {
			size += int64(b.Len())
		}
	}
	for _, c := range d.Children() {
		size += dataSize(c)
	}
	return size
}

// SetIndex moves column i out of the data columns into the index.
func (f *Frame) SetIndex(i int) error {
	if i < 0 || i >= f.NumCols() {
		return fmt.Errorf("index column %d out of range [0, %d)", i, f.NumCols())
	}
	schema := f.table.Schema()
	fields := make([]arrow.Field, 0, f.NumCols()-1)
	cols := make([]arrow.Column, 0, f.NumCols()-1)
	for j := 0; j < f.NumCols(); j++ {
		if j == i {
			continue
		}
		col := arrow.NewColumn(schema.Field(j), f.table.Column(j).Data())
		fields = append(fields, schema.Field(j))
		cols = append(cols, *col)
	}
	md := schema.Metadata()
	table := array.NewTable(arrow.NewSchema(fields, &md), cols, f.table.NumRows())
	for j := range cols {
		cols[j].Release()
	}
	if f.index != nil {
		f.index.Release()
	}
	f.index = arrow.NewColumn(schema.Field(i), f.table.Column(i).Data())
	f.table.Release()
	f.table = table
	return nil
}

func (f *Frame) Release() {
	if f.index != nil {
		f.index.Release()
		f.index = nil
	}
	if f.table != nil {
		f.table.Release()
		f.table = nil
	}
}
