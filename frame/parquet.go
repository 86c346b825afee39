package frame

import (
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
)

func ReadParquet(ctx context.Context, path string, mem memory.Allocator) (*Frame, error) {
	pf, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file %q: %w", path, err)
	}
	defer pf.Close()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{Parallel: true}, mem)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader for %q: %w", path, err)
	}
	table, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file %q: %w", path, err)
	}
	return New(table), nil
}

// WriteParquet writes the data columns of f to w.
func WriteParquet(w io.Writer, f *Frame) error {
	writerProps := parquet.NewWriterProperties(
		parquet.WithMaxRowGroupLength(8124),
	)
	arrprops := pqarrow.NewArrowWriterProperties()

	writer, err := pqarrow.NewFileWriter(f.Schema(), w, writerProps, arrprops)
	if err != nil {
		return err
	}
	if err = writer.WriteTable(f.Table(), 8124); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}
