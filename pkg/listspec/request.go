package listspec

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// FilterEntry is one raw filter clause for a field. Value is a string for
// scalar operators or a []string for membership operators like enum IN.
type FilterEntry struct {
	Value    interface{}
	Operator string
	Disabled bool
}

// FieldFilters groups the entries for one field, in document order.
type FieldFilters struct {
	Field   string
	Entries []FilterEntry
}

// Filters is the ordered per-field filter collection. Order matters:
// compiled groups appear in the WHERE clause in the order fields appear
// in the request.
type Filters []FieldFilters

// ListRequest carries the parsed parameters of one list invocation.
type ListRequest struct {
	FreeText    string
	Filters     Filters
	SortField   string
	SortReverse string
	Page        int
	All         bool
	Compact     bool
	ExplicitIDs []string
}

// ParseListRequest reads the list parameters from a query string. Parsing
// never fails: unusable parts are dropped and the compiler deals with the
// rest. The filters parameter is a JSON object keyed by field name; each
// field maps to a collection of {value, operator, disabled} entries, kept
// in document order.
//
//	filters={"name":{"0":{"value":"foo"},"1":{"value":"bar","operator":"is"}}}
func ParseListRequest(values url.Values) ListRequest {
	req := ListRequest{
		FreeText:    values.Get("query"),
		SortField:   values.Get("sort"),
		SortReverse: values.Get("sort_reverse"),
		Page:        1,
		All:         parseBool(values.Get("all")),
		Compact:     parseBool(values.Get("compact")),
	}
	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		req.Page = page
	}
	if raw := values.Get("filters"); raw != "" {
		req.Filters = ParseFilters(raw)
	}
	for _, id := range values["bulk_ids[]"] {
		if id = strings.TrimSpace(id); id != "" {
			req.ExplicitIDs = append(req.ExplicitIDs, id)
		}
	}
	return req
}

// ParseFilters decodes the JSON filter document. gjson.ForEach walks
// members in document order, which the compiler relies on for stable
// fragment ordering. Malformed JSON yields an empty collection.
func ParseFilters(raw string) Filters {
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return nil
	}
	var filters Filters
	doc.ForEach(func(field, entries gjson.Result) bool {
		ff := FieldFilters{Field: field.String()}
		entries.ForEach(func(_, entry gjson.Result) bool {
			if !entry.IsObject() {
				return true
			}
			ff.Entries = append(ff.Entries, FilterEntry{
				Value:    filterValue(entry.Get("value")),
				Operator: entry.Get("operator").String(),
				Disabled: entry.Get("disabled").Bool(),
			})
			return true
		})
		if len(ff.Entries) > 0 {
			filters = append(filters, ff)
		}
		return true
	})
	return filters
}

func filterValue(v gjson.Result) interface{} {
	if v.IsArray() {
		var members []string
		for _, m := range v.Array() {
			members = append(members, m.String())
		}
		return members
	}
	return v.String()
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "t", "1", "yes":
		return true
	}
	return false
}
