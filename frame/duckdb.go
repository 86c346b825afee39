package frame

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/metrico/dvgrouper/data_types"
	"github.com/metrico/dvgrouper/model"
	"github.com/metrico/dvgrouper/service/db"
)

// DuckDBReader reads files through DuckDB table functions.
type DuckDBReader struct {
	conn *sql.DB
	mem  memory.Allocator
}

func NewDuckDBReader(ctx context.Context, dbPath string, settings map[string]string) (*DuckDBReader, error) {
	conn, err := db.ConnectDuckDB(ctx, dbPath, settings)
	if err != nil {
		return nil, err
	}
	return &DuckDBReader{conn: conn, mem: memory.DefaultAllocator}, nil
}

func parquetQuery(path string) string {
	return fmt.Sprintf("SELECT * FROM read_parquet(%s)", db.QuoteLiteral(path))
}

// csvQuery pins the separator and column names to the ones read from the
// raw header, DuckDB would otherwise call a blank header "column0".
func csvQuery(path string, names []string, sep rune) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = db.QuoteLiteral(n)
	}
	return fmt.Sprintf("SELECT * FROM read_csv(%s, header=true, all_varchar=true, delim=%s, names=[%s])",
		db.QuoteLiteral(path), db.QuoteLiteral(string(sep)), strings.Join(quoted, ", "))
}

func (r *DuckDBReader) Read(ctx context.Context, path string, format model.FileFormat) (*Frame, error) {
	var (
		query string
		names []string
	)
	switch format {
	case model.FormatParquet:
		query = parquetQuery(path)
	case model.FormatCSV:
		var sep rune
		var err error
		if names, sep, err = ReadCSVHeader(path); err != nil {
			return nil, err
		}
		query = csvQuery(path, names, sep)
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidFormat, format)
	}
	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	if format == model.FormatCSV {
		return r.readStrings(rows, names)
	}
	var header []string
	for _, t := range types {
		header = append(header, t.Name())
	}
	names = HeaderNames(header)

	columns := make([]data_types.IColumn, len(types))
	for i, t := range types {
		if columns[i], err = data_types.ForDatabaseType(t.DatabaseTypeName())(names[i], nil); err != nil {
			return nil, err
		}
	}
	vals := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err = rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, c := range columns {
			if err = c.AppendOne(vals[i]); err != nil {
				return nil, err
			}
		}
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return Build(r.mem, columns)
}

// readStrings infers csv column types the same way as the arrow engine so
// both engines agree on the schema.
func (r *DuckDBReader) readStrings(rows *sql.Rows, names []string) (*Frame, error) {
	values := make([][]string, len(names))
	cells := make([]sql.NullString, len(names))
	ptrs := make([]any, len(names))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, c := range cells {
			values[i] = append(values[i], c.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	columns := make([]data_types.IColumn, len(names))
	for i, name := range names {
		var err error
		if columns[i], err = data_types.InferColumn(name, values[i]); err != nil {
			return nil, err
		}
	}
	return Build(r.mem, columns)
}

func (r *DuckDBReader) Close() error {
	return r.conn.Close()
}
