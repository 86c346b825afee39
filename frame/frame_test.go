package frame

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrico/dvgrouper/data_types"
	"github.com/metrico/dvgrouper/model"
)

func sample(t *testing.T) *Frame {
	t.Helper()
	year, err := data_types.WrapToColumn("Year", []int64{2019, 2020, 2021, 2023})
	require.NoError(t, err)
	value, err := data_types.WrapToColumn("value", []float64{1.5, 2, 2.5, 3})
	require.NoError(t, err)
	name, err := data_types.WrapToColumn("name", []string{"a", "b", "c", "d"})
	require.NoError(t, err)
	f, err := Build(memory.DefaultAllocator, []data_types.IColumn{year, value, name})
	require.NoError(t, err)
	return f
}

func writeFixture(t *testing.T, path string, f *Frame) {
	t.Helper()
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()
	require.NoError(t, WriteParquet(out, f))
}

func TestParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.parquet")
	src := sample(t)
	defer src.Release()
	writeFixture(t, path, src)

	f, err := NewArrowReader().Read(context.Background(), path, model.FormatParquet)
	require.NoError(t, err)
	defer f.Release()
	assert.Equal(t, int64(4), f.NumRows())
	assert.Equal(t, []string{"Year", "value", "name"}, f.ColumnNames())
	years, err := f.Ints(f.ColumnIndex("Year"))
	require.NoError(t, err)
	assert.Equal(t, []int64{2019, 2020, 2021, 2023}, years)
}

func TestReadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		";year;rate;label\n0;2019;0.5;x\n1;2020;;y\n2;2021;1;\n"), 0o644))

	f, err := NewArrowReader().Read(context.Background(), path, model.FormatCSV)
	require.NoError(t, err)
	defer f.Release()
	assert.Equal(t, []string{UnnamedIndex, "year", "rate", "label"}, f.ColumnNames())
	assert.Equal(t, "int64", f.Schema().Field(1).Type.Name())
	assert.Equal(t, "float64", f.Schema().Field(2).Type.Name())
	assert.Equal(t, "utf8", f.Schema().Field(3).Type.Name())
	labels, ok := f.Strings(3)
	assert.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, labels)
}

func TestDetectSeparator(t *testing.T) {
	for line, want := range map[string]rune{
		"a;b;c":   ';',
		"a\tb":    '\t',
		"a|b|c,d": '|',
		"single":  ',',
	} {
		f, err := os.CreateTemp(t.TempDir(), "sep")
		require.NoError(t, err)
		_, _ = f.WriteString(line + "\n")
		_, _ = f.Seek(0, 0)
		got, err := DetectSeparator(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, want, got, line)
	}
}

func TestSetIndex(t *testing.T) {
	f := sample(t)
	defer f.Release()
	require.NoError(t, f.SetIndex(2))
	assert.Equal(t, []string{"Year", "value"}, f.ColumnNames())
	require.NotNil(t, f.Index())
	assert.Equal(t, "name", f.Index().Name())
	assert.Equal(t, int64(4), f.NumRows())
	assert.Error(t, f.SetIndex(5))
}

func TestColumnSizes(t *testing.T) {
	f := sample(t)
	defer f.Release()
	sizes := f.ColumnSizes()
	require.Len(t, sizes, 3)
	assert.GreaterOrEqual(t, sizes[0], int64(32))
	assert.GreaterOrEqual(t, sizes[1], int64(32))
	assert.Greater(t, sizes[2], int64(4))
}

func TestDuckDBReader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.parquet")
	src := sample(t)
	defer src.Release()
	writeFixture(t, path, src)

	r, err := NewReader(context.Background(), model.EngineDuckDB, ReaderOptions{})
	require.NoError(t, err)
	defer r.Close()

	f, err := r.Read(context.Background(), path, model.FormatParquet)
	require.NoError(t, err)
	defer f.Release()
	assert.Equal(t, []string{"Year", "value", "name"}, f.ColumnNames())
	assert.Equal(t, "int64", f.Schema().Field(0).Type.Name())
	assert.Equal(t, "float64", f.Schema().Field(1).Type.Name())

	csvPath := filepath.Join(dir, "rules.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("year,label\n2019,x\n2020,y\n"), 0o644))
	f2, err := r.Read(context.Background(), csvPath, model.FormatCSV)
	require.NoError(t, err)
	defer f2.Release()
	assert.Equal(t, "int64", f2.Schema().Field(0).Type.Name())
	assert.Equal(t, "utf8", f2.Schema().Field(1).Type.Name())
}
