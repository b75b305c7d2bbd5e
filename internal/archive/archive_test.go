package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemblerProducesReadableArchive(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.xlsx")

	asm, err := NewAssembler(outPath)
	require.NoError(t, err)
	require.NoError(t, asm.WriteFixedParts())
	require.NoError(t, asm.AddSheetStream(strings.NewReader("<worksheet/>")))
	require.NoError(t, asm.Close())

	r, err := Open(outPath)
	require.NoError(t, err)
	defer r.Close()

	assert.True(t, r.Has("[Content_Types].xml"))
	assert.True(t, r.Has("_rels/.rels"))
	assert.True(t, r.Has("xl/workbook.xml"))
	assert.True(t, r.Has("xl/_rels/workbook.xml.rels"))
	assert.True(t, r.Has("xl/worksheets/sheet1.xml"))
	assert.False(t, r.Has("xl/does-not-exist.xml"))

	data, err := r.ReadAll("xl/worksheets/sheet1.xml")
	require.NoError(t, err)
	assert.Equal(t, "<worksheet/>", string(data))
}

func TestAssemblerAbortRemovesOutputFile(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "aborted.xlsx")

	asm, err := NewAssembler(outPath)
	require.NoError(t, err)
	require.NoError(t, asm.WriteFixedParts())
	asm.Abort()

	_, err = os.Stat(outPath)
	assert.True(t, os.IsNotExist(err))
}

func TestFindWorksheetEntries(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "multi.xlsx")

	asm, err := NewAssembler(outPath)
	require.NoError(t, err)
	require.NoError(t, asm.WriteFixedParts())
	require.NoError(t, asm.AddSheetStream(strings.NewReader("<worksheet/>")))
	require.NoError(t, asm.Close())

	r, err := Open(outPath)
	require.NoError(t, err)
	defer r.Close()

	entries := r.FindWorksheetEntries()
	assert.Equal(t, []string{"xl/worksheets/sheet1.xml"}, entries)
}

func TestFindMatchingSortsResults(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "multi-entry.xlsx")

	f, err := os.Create(outPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	// Written out of lexicographic order on purpose, and including a
	// non-matching entry, to prove FindMatching both filters and sorts
	// rather than returning archive order.
	for _, name := range []string{"xl/worksheets/sheet10.xml", "xl/styles.xml", "xl/worksheets/sheet2.xml", "xl/worksheets/sheet1.xml"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte("<x/>"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	r, err := Open(outPath)
	require.NoError(t, err)
	defer r.Close()

	pattern := regexp.MustCompile(`^xl/worksheets/.*\.xml$`)
	got := r.FindMatching(pattern)
	assert.Equal(t, []string{"xl/worksheets/sheet1.xml", "xl/worksheets/sheet10.xml", "xl/worksheets/sheet2.xml"}, got)
}

func TestNormalizeTarget(t *testing.T) {
	assert.Equal(t, "xl/worksheets/sheet1.xml", NormalizeTarget("worksheets/sheet1.xml"))
	assert.Equal(t, "xl/worksheets/sheet1.xml", NormalizeTarget("/xl/worksheets/sheet1.xml"))
	assert.Equal(t, "xl/worksheets/sheet1.xml", NormalizeTarget(`worksheets\sheet1.xml`))
	assert.Equal(t, "xl/sharedStrings.xml", NormalizeTarget("sharedStrings.xml"))
}
