package sst

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexRecordIsExactly21Bytes(t *testing.T) {
	assert.Equal(t, 21, indexRecordLen)
	assert.Equal(t, 20, offsetDigits)
}

func TestBuilderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b, err := NewBuilder(dir)
	require.NoError(t, err)

	strs := []string{"hello", "", "world with spaces", "日本語"}
	for _, s := range strs {
		require.NoError(t, b.Add(s))
	}
	assert.Equal(t, len(strs), b.Count())

	store, err := b.Finish()
	require.NoError(t, err)
	defer store.Close()

	require.Equal(t, len(strs), store.Count())
	for i, want := range strs {
		got, err := store.Lookup(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestLookupOutOfRangeReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	b, err := NewBuilder(dir)
	require.NoError(t, err)
	require.NoError(t, b.Add("only"))

	store, err := b.Finish()
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Lookup(5)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestNilStoreLookupIsTolerant(t *testing.T) {
	var s *Store
	got, err := s.Lookup(0)
	require.NoError(t, err)
	assert.Equal(t, "", got)
	assert.Equal(t, 0, s.Count())
	assert.NotPanics(t, func() { s.Close() })
}

func TestBuildFromXMLResolvesEntries(t *testing.T) {
	xmlDoc := `<?xml version="1.0"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="3" uniqueCount="3">
  <si><t>Alpha</t></si>
  <si><t xml:space="preserve">Beta  </t></si>
  <si><r><t>Ga</t></r><r><t>mma</t></r></si>
</sst>`
	store, err := BuildFromXML(strings.NewReader(xmlDoc), t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.Equal(t, 3, store.Count())

	got0, err := store.Lookup(0)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got0)

	got1, err := store.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, "Beta  ", got1)

	got2, err := store.Lookup(2)
	require.NoError(t, err)
	assert.Equal(t, "Gamma", got2)
}

func TestBuildFromXMLMalformedDocument(t *testing.T) {
	_, err := BuildFromXML(strings.NewReader("<sst><si><t>unterminated"), t.TempDir())
	assert.Error(t, err)
}
