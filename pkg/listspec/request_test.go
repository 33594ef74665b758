package listspec

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListRequestDefaults(t *testing.T) {
	req := ParseListRequest(url.Values{})
	assert.Equal(t, "", req.FreeText)
	assert.Nil(t, req.Filters)
	assert.Equal(t, 1, req.Page)
	assert.False(t, req.All)
	assert.False(t, req.Compact)
	assert.Empty(t, req.ExplicitIDs)
}

func TestParseListRequest(t *testing.T) {
	values := url.Values{
		"query":        {"foo"},
		"sort":         {"name"},
		"sort_reverse": {"true"},
		"page":         {"3"},
		"all":          {"true"},
		"compact":      {"1"},
		"filters":      {`{"name":{"0":{"value":"foo"}}}`},
	}
	req := ParseListRequest(values)
	assert.Equal(t, "foo", req.FreeText)
	assert.Equal(t, "name", req.SortField)
	assert.Equal(t, "true", req.SortReverse)
	assert.Equal(t, 3, req.Page)
	assert.True(t, req.All)
	assert.True(t, req.Compact)
	require.Len(t, req.Filters, 1)
	assert.Equal(t, "name", req.Filters[0].Field)
}

func TestParseListRequestBadPage(t *testing.T) {
	for _, page := range []string{"", "0", "-2", "abc"} {
		req := ParseListRequest(url.Values{"page": {page}})
		assert.Equal(t, 1, req.Page, "page %q should fall back to 1", page)
	}
}

func TestParseListRequestBulkIDs(t *testing.T) {
	req := ParseListRequest(url.Values{"bulk_ids[]": {"1", " 2 ", "", "9"}})
	assert.Equal(t, []string{"1", "2", "9"}, req.ExplicitIDs)
}

func TestParseFiltersPreservesOrder(t *testing.T) {
	raw := `{
		"zulu":  {"0": {"value": "z"}},
		"alpha": {"0": {"value": "a"}},
		"mike":  {"0": {"value": "m"}}
	}`
	filters := ParseFilters(raw)
	require.Len(t, filters, 3)
	assert.Equal(t, "zulu", filters[0].Field)
	assert.Equal(t, "alpha", filters[1].Field)
	assert.Equal(t, "mike", filters[2].Field)
}

func TestParseFiltersEntries(t *testing.T) {
	raw := `{"name": {
		"0": {"value": "foo"},
		"1": {"value": "bar", "operator": "is", "disabled": true},
		"2": {"value": ["a", "b"], "operator": "default"}
	}}`
	filters := ParseFilters(raw)
	require.Len(t, filters, 1)
	entries := filters[0].Entries
	require.Len(t, entries, 3)

	assert.Equal(t, "foo", entries[0].Value)
	assert.Equal(t, "", entries[0].Operator)
	assert.False(t, entries[0].Disabled)

	assert.Equal(t, "bar", entries[1].Value)
	assert.Equal(t, "is", entries[1].Operator)
	assert.True(t, entries[1].Disabled)

	assert.Equal(t, []string{"a", "b"}, entries[2].Value)
}

func TestParseFiltersMalformed(t *testing.T) {
	for _, raw := range []string{"", "not json", "[1,2,3]", `"scalar"`, `{"name": "scalar"}`} {
		assert.Nil(t, ParseFilters(raw), "raw %q should parse to nil", raw)
	}
}
