package csvio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterWritesCommaSeparatedLFRows(t *testing.T) {
	var buf strings.Builder
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRow([]string{"a", "b", "c"}))
	require.NoError(t, w.WriteRow([]string{"1", "2", "3"}))

	assert.Equal(t, "a,b,c\n1,2,3\n", buf.String())
}

func TestWriterQuotesFieldsContainingDelimiter(t *testing.T) {
	var buf strings.Builder
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRow([]string{"a,b", "c\"d"}))
	assert.Equal(t, "\"a,b\",\"c\"\"d\"\n", buf.String())
}

func TestWriterNilFieldsEmitsBlankLine(t *testing.T) {
	var buf strings.Builder
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRow([]string{"a"}))
	require.NoError(t, w.WriteRow(nil))
	require.NoError(t, w.WriteRow([]string{"b"}))

	assert.Equal(t, "a\n\nb\n", buf.String())
}
