package sheet

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeltaShift/hookswitch/internal/sst"
)

func collectRows(t *testing.T, xmlDoc string, store *sst.Store) []*Row {
	t.Helper()
	rs := NewRowStreamer(strings.NewReader(xmlDoc), store)
	var rows []*Row
	for {
		row, err := rs.Next(context.Background())
		require.NoError(t, err)
		if row == nil {
			break
		}
		rows = append(rows, row)
	}
	return rows
}

func TestRowStreamerSimpleInlineStrings(t *testing.T) {
	doc := `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="inlineStr"><is><t>hi</t></is></c><c r="B1" t="inlineStr"><is><t>there</t></is></c></row>
</sheetData></worksheet>`
	rows := collectRows(t, doc, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"hi", "there"}, rows[0].Fields)
	assert.Equal(t, 1, rows[0].Number)
}

func TestRowStreamerSharedStringResolution(t *testing.T) {
	builder, err := sst.NewBuilder(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, builder.Add("foo"))
	require.NoError(t, builder.Add("bar"))
	store, err := builder.Finish()
	require.NoError(t, err)
	defer store.Close()

	doc := `<worksheet xmlns="..."><sheetData>
<row r="1"><c r="A1" t="s"><v>1</v></c><c r="B1" t="s"><v>0</v></c></row>
</sheetData></worksheet>`
	rows := collectRows(t, doc, store)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"bar", "foo"}, rows[0].Fields)
}

func TestRowStreamerBooleanCells(t *testing.T) {
	doc := `<worksheet xmlns="..."><sheetData>
<row r="1"><c r="A1" t="b"><v>1</v></c><c r="B1" t="b"><v>0</v></c></row>
</sheetData></worksheet>`
	rows := collectRows(t, doc, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"TRUE", "FALSE"}, rows[0].Fields)
}

func TestRowStreamerHandlesGapsAsBlankLines(t *testing.T) {
	doc := `<worksheet xmlns="..."><sheetData>
<row r="1"><c r="A1" t="inlineStr"><is><t>one</t></is></c></row>
<row r="3"><c r="A3" t="inlineStr"><is><t>three</t></is></c></row>
</sheetData></worksheet>`
	rows := collectRows(t, doc, nil)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"one"}, rows[0].Fields)
	assert.Nil(t, rows[1].Fields)
	assert.Equal(t, 2, rows[1].Number)
	assert.Equal(t, []string{"three"}, rows[2].Fields)
}

func TestRowStreamerEmptyDeclaredRowIsBlank(t *testing.T) {
	doc := `<worksheet xmlns="..."><sheetData>
<row r="1"></row>
</sheetData></worksheet>`
	rows := collectRows(t, doc, nil)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Fields)
}

func TestRowStreamerSelfClosingEmptyCell(t *testing.T) {
	doc := `<worksheet xmlns="..."><sheetData>
<row r="1"><c r="A1"/><c r="B1" t="inlineStr"><is><t>x</t></is></c></row>
</sheetData></worksheet>`
	rows := collectRows(t, doc, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"", "x"}, rows[0].Fields)
}

func TestRowStreamerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rs := NewRowStreamer(strings.NewReader(`<worksheet><sheetData></sheetData></worksheet>`), nil)
	_, err := rs.Next(ctx)
	assert.Error(t, err)
}
