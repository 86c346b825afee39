package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v18/arrow/memory"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrico/dvgrouper/data_types"
	"github.com/metrico/dvgrouper/frame"
	"github.com/metrico/dvgrouper/grouper"
	"github.com/metrico/dvgrouper/model"
)

func writeParquet(t *testing.T, path string, years ...int64) {
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
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func fixture(t *testing.T) string {
	dir := t.TempDir()
	writeParquet(t, filepath.Join(dir, "emissions", "data_cement.parquet"), 2019, 2020)
	writeParquet(t, filepath.Join(dir, "emissions", "steel.parquet"), 2015)
	return dir
}

func TestLoadSummary(t *testing.T) {
	out, err := run(t, "load", fixture(t), "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Years Available")
	assert.Regexp(t, `(?m)^cement +\(2019-2020\)$`, out)
	assert.Regexp(t, `(?m)^steel +\(2015\)$`, out)
}

func TestLoadJSONWhere(t *testing.T) {
	dir := fixture(t)
	manifest := filepath.Join(t.TempDir(), "manifest.json")
	out, err := run(t, "load", dir, "--json", "--where", "rows > 1", "--manifest", manifest)
	require.NoError(t, err)
	var list []map[string]any
	require.NoError(t, jsoniter.UnmarshalFromString(out, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "cement", list[0]["name"])

	fh, err := os.Open(manifest)
	require.NoError(t, err)
	defer fh.Close()
	m, err := grouper.ReadManifest(fh)
	require.NoError(t, err)
	assert.Len(t, m.Datasets, 2)
}

func TestLoadCatalog(t *testing.T) {
	catalog := filepath.Join(t.TempDir(), "catalog.parquet")
	_, err := run(t, "load", fixture(t), "--catalog", catalog)
	require.NoError(t, err)
	f, err := frame.ReadParquet(context.Background(), catalog, memory.DefaultAllocator)
	require.NoError(t, err)
	defer f.Release()
	assert.Equal(t, int64(2), f.NumRows())
	first, err := f.Ints(f.ColumnIndex("first_year"))
	require.NoError(t, err)
	assert.Equal(t, []int64{2019, 2015}, first)
}

func TestLoadExpectedMissing(t *testing.T) {
	_, err := run(t, "load", fixture(t), "--expected", "cement,iron")
	var missing *grouper.MissingFilesError
	require.ErrorAs(t, err, &missing)
}

func TestLoadBadEngine(t *testing.T) {
	_, err := run(t, "load", fixture(t), "--engine", "pandas")
	assert.ErrorIs(t, err, model.ErrInvalidEngine)
}

func TestValidate(t *testing.T) {
	dir := fixture(t)
	schemas := filepath.Join(t.TempDir(), "schemas.yaml")
	require.NoError(t, os.WriteFile(schemas, []byte(`
schemas:
  - name: cement
    columns:
      - {name: Year, type: BIGINT}
  - name: steel
    strict: true
    columns:
      - {name: Year, type: VARCHAR}
`), 0o644))

	out, err := run(t, "validate", dir, "--schemas", schemas)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
	assert.Contains(t, out, "cement: ok")
	assert.Contains(t, out, "steel: ")
	assert.NotContains(t, out, "steel: ok")
}

func TestValidateWithoutSchemas(t *testing.T) {
	_, err := run(t, "validate", fixture(t))
	assert.EqualError(t, err, "no schemas file configured")
}
