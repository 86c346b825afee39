package pathspec

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrico/dvgrouper/model"
)

var parquetOnly = model.NewFileFormats(model.FormatParquet)

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}

func tree(t *testing.T) string {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.parquet"))
	touch(t, filepath.Join(root, "sub", "b.parquet"))
	touch(t, filepath.Join(root, "sub", "deeper", "c.parquet"))
	touch(t, filepath.Join(root, "sub", ".hidden"))
	touch(t, filepath.Join(root, "__init__.py"))
	return root
}

func TestValidateDir(t *testing.T) {
	root := tree(t)
	v, err := New(parquetOnly, DefaultIgnoreRegex)
	require.NoError(t, err)
	spec, err := v.Validate(root)
	require.NoError(t, err)
	assert.Equal(t, KindDir, spec.Kind)

	bad := touch(t, filepath.Join(root, "sub", "deeper", "notes.txt"))
	_, err = v.Validate(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedFileType)
	assert.Contains(t, err.Error(), bad)
}

func TestValidateDirTruncates(t *testing.T) {
	root := t.TempDir()
	for _, n := range []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"} {
		touch(t, filepath.Join(root, n))
	}
	v, err := New(parquetOnly, "")
	require.NoError(t, err)
	err = v.ValidateDir(root)
	var ufe *UnexpectedFileTypeError
	require.True(t, errors.As(err, &ufe))
	assert.Len(t, ufe.Paths, 3)
	assert.Equal(t, 2, ufe.Remaining)
	assert.Contains(t, err.Error(), "(2 more)")
	assert.NotContains(t, err.Error(), "d.txt")
}

func TestValidateFile(t *testing.T) {
	root := tree(t)
	v, err := New(parquetOnly, DefaultIgnoreRegex)
	require.NoError(t, err)

	spec, err := v.Validate(filepath.Join(root, "a.parquet"))
	require.NoError(t, err)
	assert.Equal(t, KindFile, spec.Kind)

	_, err = v.Validate(filepath.Join(root, "__init__.py"))
	assert.ErrorIs(t, err, ErrFormatMismatch)

	_, err = v.Validate(filepath.Join(root, "missing.parquet"))
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestNoFormatsAcceptsAnything(t *testing.T) {
	root := tree(t)
	touch(t, filepath.Join(root, "notes.txt"))
	v, err := New(nil, "")
	require.NoError(t, err)
	_, err = v.Validate(root)
	assert.NoError(t, err)
	_, err = v.Validate(filepath.Join(root, "notes.txt"))
	assert.NoError(t, err)
}

func TestInvalidPattern(t *testing.T) {
	_, err := New(parquetOnly, "([a-z")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestIgnoreLines(t *testing.T) {
	root := tree(t)
	touch(t, filepath.Join(root, "docs", "README.md"))
	v, err := New(parquetOnly, DefaultIgnoreRegex, WithIgnoreLines("docs"))
	require.NoError(t, err)
	assert.NoError(t, v.ValidateDir(root))
	assert.True(t, v.Ignored(root, filepath.Join(root, "docs", "README.md")))
}

func TestWalkSymlinkCycle(t *testing.T) {
	root := tree(t)
	if err := os.Symlink(root, filepath.Join(root, "sub", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	var seen []string
	err := Walk(root, func(path string, mode fs.FileMode) error {
		seen = append(seen, path)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 5)
	assert.Equal(t, filepath.Join(root, "__init__.py"), seen[0])
}

func TestValidateDirDanglingLink(t *testing.T) {
	root := tree(t)
	link := filepath.Join(root, "sub", "gone.parquet")
	if err := os.Symlink(filepath.Join(root, "missing.parquet"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "sub", ".gone")))

	var modes []fs.FileMode
	require.NoError(t, Walk(root, func(path string, mode fs.FileMode) error {
		if path == link {
			modes = append(modes, mode)
		}
		return nil
	}))
	require.Len(t, modes, 1)
	assert.NotZero(t, modes[0]&fs.ModeSymlink)

	v, err := New(parquetOnly, DefaultIgnoreRegex)
	require.NoError(t, err)
	err = v.ValidateDir(root)
	var bad *UnexpectedFileTypeError
	require.True(t, errors.As(err, &bad))
	assert.Equal(t, []string{link}, bad.Paths)
	assert.Zero(t, bad.Remaining)
}
