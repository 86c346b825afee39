package frame

import (
	"fmt"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/metrico/dvgrouper/data_types"
)

// Build assembles a single-record frame from filled columns of equal length.
func Build(mem memory.Allocator, columns []data_types.IColumn) (*Frame, error) {
	fields := make([]arrow.Field, len(columns))
	for i, c := range columns {
		if i > 0 && c.GetLength() != columns[0].GetLength() {
			return nil, fmt.Errorf("column %q has %d rows, expected %d",
				c.GetName(), c.GetLength(), columns[0].GetLength())
		}
		fields[i] = arrow.Field{Name: c.GetName(), Type: c.ArrowDataType(), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)
	rb := array.NewRecordBuilder(mem, schema)
	defer rb.Release()
	for i, c := range columns {
		if err := c.WriteToBatch(rb.Field(i)); err != nil {
			return nil, err
		}
	}
	record := rb.NewRecord()
	defer record.Release()
	return FromRecords(schema, record), nil
}
