package pathsafe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInputRejectsShapeViolations(t *testing.T) {
	v := New(t.TempDir())

	_, err := v.ValidateInput("")
	assert.Error(t, err)

	_, err = v.ValidateInput("bad\x00path")
	assert.Error(t, err)

	_, err = v.ValidateInput("file:///etc/passwd")
	assert.Error(t, err)

	_, err = v.ValidateInput("../../etc/passwd")
	assert.Error(t, err)
}

func TestValidateInputAcceptsExistingFileUnderRoot(t *testing.T) {
	root := t.TempDir()
	v := New(root)

	p := filepath.Join(root, "data.csv")
	require.NoError(t, os.WriteFile(p, []byte("a,b\n"), 0o644))

	canon, err := v.ValidateInput(p)
	require.NoError(t, err)
	assert.NotEmpty(t, canon)
}

func TestValidateInputRejectsMissingFile(t *testing.T) {
	root := t.TempDir()
	v := New(root)
	_, err := v.ValidateInput(filepath.Join(root, "nope.csv"))
	assert.Error(t, err)
}

func TestValidateInputRejectsDirectory(t *testing.T) {
	root := t.TempDir()
	v := New(root)
	_, err := v.ValidateInput(root)
	assert.Error(t, err)
}

func TestValidateInputRejectsPathEscapingRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	v := New(root)
	// Both temp dirs sit under the system temp directory, which the
	// validator also accepts; narrow that second root to root itself so
	// outside lies beyond every allowed root.
	v.tempDir = root

	p := filepath.Join(outside, "escape.csv")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))

	_, err := v.ValidateInput(p)
	assert.Error(t, err)
}

func TestValidateOutputAcceptsWritableParent(t *testing.T) {
	root := t.TempDir()
	v := New(root)

	out, err := v.ValidateOutput(filepath.Join(root, "result.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, "result.xlsx", filepath.Base(out))
}

func TestValidateOutputRejectsMissingParentDir(t *testing.T) {
	root := t.TempDir()
	v := New(root)
	_, err := v.ValidateOutput(filepath.Join(root, "missing-dir", "out.xlsx"))
	assert.Error(t, err)
}
