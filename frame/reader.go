package frame

import (
	"context"
	"fmt"

	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/metrico/dvgrouper/model"
)

type Reader interface {
	Read(ctx context.Context, path string, format model.FileFormat) (*Frame, error)
	Close() error
}

// ArrowReader decodes files in process with the arrow libraries.
type ArrowReader struct {
	mem memory.Allocator
}

func NewArrowReader() *ArrowReader {
	return &ArrowReader{mem: memory.DefaultAllocator}
}

func (r *ArrowReader) Read(ctx context.Context, path string, format model.FileFormat) (*Frame, error) {
	switch format {
	case model.FormatParquet:
		return ReadParquet(ctx, path, r.mem)
	case model.FormatCSV:
		return ReadCSV(ctx, path, r.mem)
	}
	return nil, fmt.Errorf("%w: %q", model.ErrInvalidFormat, format)
}

func (r *ArrowReader) Close() error { return nil }

type ReaderOptions struct {
	DuckDBPath     string
	DuckDBSettings map[string]string
}

func NewReader(ctx context.Context, engine model.Engine, opts ReaderOptions) (Reader, error) {
	switch engine {
	case model.EngineArrow, "":
		return NewArrowReader(), nil
	case model.EngineDuckDB:
		return NewDuckDBReader(ctx, opts.DuckDBPath, opts.DuckDBSettings)
	}
	return nil, fmt.Errorf("%w: %q", model.ErrInvalidEngine, engine)
}
