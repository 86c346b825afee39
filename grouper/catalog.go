package grouper

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/metrico/dvgrouper/data_types"
	"github.com/metrico/dvgrouper/frame"
	"github.com/metrico/dvgrouper/metadata"
)

// Catalog builds a frame with one row per loaded entry, ordered by group
// then name. Years and total size are null when unknown.
func (g *Grouper) Catalog(mem memory.Allocator) (*frame.Frame, error) {
	entries := g.entries()
	var (
		names, groups, paths, formats []string
		rows                          []int64
	)
	totalSize, err := data_types.ForDatabaseType("DOUBLE")("total_size", nil, int64(len(entries)))
	if err != nil {
		return nil, err
	}
	firstYear, err := data_types.ForDatabaseType("BIGINT")("first_year", nil, int64(len(entries)))
	if err != nil {
		return nil, err
	}
	lastYear, err := data_types.ForDatabaseType("BIGINT")("last_year", nil, int64(len(entries)))
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		names = append(names, e.Name)
		groups = append(groups, e.Group)
		paths = append(paths, e.Path())
		formats = append(formats, e.Format())
		rows = append(rows, e.Rows())

		var size any
		if total, ok := e.TotalSize(); ok {
			size = total
		}
		if err = totalSize.AppendOne(size); err != nil {
			return nil, err
		}

		lo, hi, err := yearBounds(e.YearsOfData())
		if err != nil {
			return nil, fmt.Errorf("dataset %q: %w", e.Name, err)
		}
		if err = firstYear.AppendOne(lo); err != nil {
			return nil, err
		}
		if err = lastYear.AppendOne(hi); err != nil {
			return nil, err
		}
	}

	columns := []data_types.IColumn{}
	for _, c := range []struct {
		name string
		data any
	}{
		{"name", names},
		{"group", groups},
		{"path", paths},
		{"format", formats},
		{"rows", rows},
	} {
		col, err := data_types.WrapToColumn(c.name, c.data)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	columns = append(columns, totalSize, firstYear, lastYear)
	return frame.Build(mem, columns)
}

// yearBounds returns the first and last year of the ranges, nil for "NA".
func yearBounds(ranges []string) (any, any, error) {
	years, err := metadata.ExpandRanges(ranges)
	if err != nil {
		return nil, nil, err
	}
	values := make([]int64, len(years))
	for i, y := range years {
		values[i] = int64(y)
	}
	col, err := data_types.WrapToColumn("year", values)
	if err != nil {
		return nil, nil, err
	}
	lo, hi := col.GetMinMax()
	return lo, hi, nil
}

// WriteCatalog writes Catalog as parquet.
func (g *Grouper) WriteCatalog(w io.Writer) error {
	f, err := g.Catalog(memory.DefaultAllocator)
	if err != nil {
		return err
	}
	defer f.Release()
	return frame.WriteParquet(w, f)
}
