package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrico/dvgrouper/data_types"
	"github.com/metrico/dvgrouper/frame"
)

func sample(t *testing.T) *frame.Frame {
	year, err := data_types.WrapToColumn("Year", []int64{2019, 2020})
	require.NoError(t, err)
	label, err := data_types.InferColumn("label", []string{"a", ""})
	require.NoError(t, err)
	f, err := frame.Build(memory.DefaultAllocator, []data_types.IColumn{year, label})
	require.NoError(t, err)
	t.Cleanup(f.Release)
	return f
}

func TestValidate(t *testing.T) {
	f := sample(t)
	ok := &Schema{Name: "s", Columns: []Column{
		{Name: "Year", Type: "BIGINT"},
		{Name: "label", Type: "VARCHAR", Nullable: true},
	}, Strict: true}
	assert.NoError(t, ok.Validate(f))

	bad := &Schema{Name: "s", Columns: []Column{
		{Name: "Year", Type: "DOUBLE"},
		{Name: "label", Type: "TEXT"},
		{Name: "missing"},
		{Name: "other"},
	}}
	err := bad.Validate(f)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 3)
	assert.Equal(t, 1, verr.Remaining)
	assert.Contains(t, err.Error(), `column "Year" has type int64, expected float64`)

	strict := &Schema{Name: "s", Columns: []Column{{Name: "Year"}}, Strict: true}
	assert.ErrorContains(t, strict.Validate(f), `column "label" is not declared`)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
schemas:
  - name: emissions
    strict: true
    columns:
      - name: Year
        type: BIGINT
      - name: value
        type: DOUBLE
        nullable: true
  - name: rules
    columns:
      - {name: ruleYear, type: INTEGER}
`), 0o644))
	schemas, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, schemas, 2)
	assert.Equal(t, "emissions", schemas[0].Name)
	assert.True(t, schemas[0].Strict)
	assert.True(t, schemas[0].Columns[1].Nullable)
	assert.Equal(t, "INTEGER", schemas[1].Columns[0].Type)
}
