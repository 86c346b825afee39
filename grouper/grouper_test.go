package grouper

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/go-faster/jx"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrico/dvgrouper/data_types"
	"github.com/metrico/dvgrouper/frame"
	"github.com/metrico/dvgrouper/loader"
	"github.com/metrico/dvgrouper/model"
	"github.com/metrico/dvgrouper/pathspec"
)

func writeParquet(t *testing.T, path string, years ...int64) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	year, err := data_types.WrapToColumn("Year", years)
	require.NoError(t, err)
	f, err := frame.Build(memory.DefaultAllocator, []data_types.IColumn{year})
	require.NoError(t, err)
	defer f.Release()
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()
	require.NoError(t, frame.WriteParquet(out, f))
	return path
}

func options(paths ...string) Options {
	return Options{
		Engine:      model.EngineArrow,
		Paths:       paths,
		Formats:     model.NewFileFormats(model.FormatParquet),
		IgnoreRegex: pathspec.DefaultIgnoreRegex,
		Logger:      zerolog.Nop(),
	}
}

func fixture(t *testing.T) string {
	root := t.TempDir()
	writeParquet(t, filepath.Join(root, "emissions", "data_cement.parquet"), 2019, 2020, 2021, 2023)
	writeParquet(t, filepath.Join(root, "emissions", "steel.parquet"), 2015)
	writeParquet(t, filepath.Join(root, "rules", "table_limits.parquet"))
	return root
}

func TestGrouperLoad(t *testing.T) {
	root := fixture(t)
	g, err := New(context.Background(), options(root))
	require.NoError(t, err)
	defer g.Close()

	assert.Equal(t, []string{"cement", "limits", "steel"}, g.Datasets())
	e, ok := g.Dataset("cement")
	require.True(t, ok)
	assert.Equal(t, "emissions", e.Group)
	assert.Equal(t, []string{"2019-2021", "2023"}, e.YearsOfData())

	f, ok := g.Frame("limits")
	require.True(t, ok)
	assert.Equal(t, int64(0), f.NumRows())

	md := g.Metadata()
	assert.Equal(t, []string{"NA"}, md["limits"]["years_of_data"])
	assert.NotContains(t, md["steel"], "data")
	_, ok = g.Dataset("nope")
	assert.False(t, ok)
	assert.Len(t, g.LoadID(), 36)
}

func TestMissingFiles(t *testing.T) {
	root := fixture(t)
	opts := options(filepath.Join(root, "emissions", "steel.parquet"))
	opts.ExpectedFiles = []string{"steel.parquet", "iron", "copper.parquet"}
	_, err := New(context.Background(), opts)
	var mfe *MissingFilesError
	require.True(t, errors.As(err, &mfe))
	assert.Equal(t, []string{"copper", "iron"}, mfe.Missing)
	assert.ErrorIs(t, err, ErrMissingFiles)
	assert.True(t, strings.HasPrefix(err.Error(), "2 expected files missing"))
}

func TestExtraFilesFiltered(t *testing.T) {
	root := fixture(t)
	steel := filepath.Join(root, "emissions", "steel.parquet")
	cement := filepath.Join(root, "emissions", "data_cement.parquet")
	opts := options(steel, cement)
	opts.ExpectedFiles = []string{"steel"}

	g, err := New(context.Background(), opts)
	require.NoError(t, err)
	defer g.Close()
	assert.Equal(t, []string{"steel"}, g.Datasets())
	assert.Equal(t, []string{cement}, g.Unexpected())
	assert.Equal(t, []string{steel}, g.Paths())
}

func TestSharedNameAcrossGroups(t *testing.T) {
	root := t.TempDir()
	writeParquet(t, filepath.Join(root, "2019", "emissions.parquet"), 2019)
	writeParquet(t, filepath.Join(root, "2020", "emissions.parquet"), 2020, 2021)
	g, err := New(context.Background(), options(root))
	require.NoError(t, err)
	defer g.Close()

	assert.Equal(t, []string{"emissions"}, g.Datasets())
	assert.Equal(t, 2, g.Groups().Len())
	e, ok := g.Dataset("emissions")
	require.True(t, ok)
	assert.Equal(t, "2020", e.Group)
	assert.Equal(t, []string{"2020-2021"}, e.YearsOfData())

	all := g.Lookup("emissions")
	require.Len(t, all, 2)
	assert.Equal(t, "2019", all[0].Group)
	assert.Equal(t, []string{"2019"}, all[0].YearsOfData())

	m := g.Manifest()
	require.Len(t, m.Datasets, 2)
	assert.Equal(t, "2019", m.Datasets[0].Group)
	assert.Equal(t, "2020", m.Datasets[1].Group)
}

func TestDuplicateWithinGroup(t *testing.T) {
	root := t.TempDir()
	writeParquet(t, filepath.Join(root, "a", "x.parquet"), 2000)
	writeParquet(t, filepath.Join(root, "a", "data_x.parquet"), 2000)
	_, err := New(context.Background(), options(root))
	assert.ErrorIs(t, err, loader.ErrDuplicateDataset)
}

type countingReader struct {
	*frame.ArrowReader
	closed int
}

func (r *countingReader) Close() error {
	r.closed++
	return nil
}

func TestCallerReaderStaysOpen(t *testing.T) {
	r := &countingReader{ArrowReader: frame.NewArrowReader()}

	opts := options(filepath.Join(t.TempDir(), "missing"))
	opts.Reader = r
	_, err := New(context.Background(), opts)
	require.ErrorIs(t, err, pathspec.ErrPathNotFound)
	assert.Equal(t, 0, r.closed)

	opts = options(fixture(t))
	opts.Reader = r
	g, err := New(context.Background(), opts)
	require.NoError(t, err)
	require.NoError(t, g.Close())
	assert.Equal(t, 0, r.closed)
}

func TestInvalidIgnoreRegex(t *testing.T) {
	opts := options(filepath.Join(t.TempDir(), "missing"))
	opts.IgnoreRegex = "(["
	_, err := New(context.Background(), opts)
	assert.ErrorIs(t, err, pathspec.ErrInvalidPattern)
}

func TestRemotePathWithoutEndpoint(t *testing.T) {
	_, err := New(context.Background(), options("s3://bucket/data"))
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	g, err := New(context.Background(), options(fixture(t)))
	require.NoError(t, err)
	defer g.Close()
	want := "Dataset Years Available\n" +
		"------- ---------------\n" +
		"cement  (2019-2021, 2023)\n" +
		"limits  (NA)\n" +
		"steel   (2015)\n"
	assert.Equal(t, want, g.Summary())
}

func TestFilter(t *testing.T) {
	g, err := New(context.Background(), options(fixture(t)))
	require.NoError(t, err)
	defer g.Close()

	got, err := g.Filter(`2020 in years`)
	require.NoError(t, err)
	assert.Equal(t, []string{"cement"}, got)

	got, err = g.Filter(`group == "emissions" && rows >= 1`)
	require.NoError(t, err)
	assert.Equal(t, []string{"cement", "steel"}, got)

	_, err = g.Filter(`rows +`)
	assert.Error(t, err)
	_, err = g.Filter(`rows`)
	assert.Error(t, err)
}

func TestEncodeDatasets(t *testing.T) {
	g, err := New(context.Background(), options(fixture(t)))
	require.NoError(t, err)
	defer g.Close()

	var e jx.Encoder
	g.EncodeDatasets(&e, "steel", "absent")
	var out []map[string]any
	require.NoError(t, jsoniter.Unmarshal(e.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "steel", out[0]["name"])
	assert.Equal(t, "emissions", out[0]["group"])
	assert.Equal(t, []any{"2015"}, out[0]["years_of_data"])
	assert.Nil(t, out[0]["index_col"])
	cols := out[0]["columns"].([]any)
	assert.Equal(t, "Year", cols[0].(map[string]any)["name"])
}

func TestCatalog(t *testing.T) {
	g, err := New(context.Background(), options(fixture(t)))
	require.NoError(t, err)
	defer g.Close()

	f, err := g.Catalog(memory.DefaultAllocator)
	require.NoError(t, err)
	defer f.Release()
	assert.Equal(t, []string{"name", "group", "path", "format", "rows", "total_size", "first_year", "last_year"},
		f.ColumnNames())
	assert.Equal(t, int64(3), f.NumRows())

	names, ok := f.Strings(f.ColumnIndex("name"))
	require.True(t, ok)
	assert.Equal(t, []string{"cement", "steel", "limits"}, names)
	first, err := f.Ints(f.ColumnIndex("first_year"))
	require.NoError(t, err)
	assert.Equal(t, []int64{2019, 2015}, first)
	last, err := f.Ints(f.ColumnIndex("last_year"))
	require.NoError(t, err)
	assert.Equal(t, []int64{2023, 2015}, last)
	assert.True(t, f.Column(f.ColumnIndex("first_year")).Data().Chunk(0).IsNull(2))

	var buf bytes.Buffer
	require.NoError(t, g.WriteCatalog(&buf))
	assert.NotZero(t, buf.Len())
}

func TestManifestRoundTrip(t *testing.T) {
	g, err := New(context.Background(), options(fixture(t)))
	require.NoError(t, err)
	defer g.Close()

	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, g.SaveManifest(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	m, err := ReadManifest(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, g.LoadID(), m.LoadID)
	require.Len(t, m.Datasets, 3)
	assert.Equal(t, "cement", m.Datasets[0].Name)
	assert.Equal(t, []string{"2019-2021", "2023"}, m.Datasets[0].YearsOfData)
	assert.Equal(t, "int64", m.Datasets[0].Schema["Year"].Type)
	require.NotNil(t, m.Datasets[0].TotalSize)
	assert.Nil(t, m.Datasets[0].IndexCol)
	assert.Equal(t, "MB", m.Datasets[0].SizeUnit)
}
