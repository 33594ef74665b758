package listspec

import (
	"reflect"
	"testing"
	"time"

	"github.com/SecondBureau/adminsgrid/pkg/fieldspec"
)

// fixedNow pins the clock for date-window tests: Wednesday 2024-05-15 10:30 UTC.
var fixedNow = time.Date(2024, 5, 15, 10, 30, 0, 0, time.UTC)

func newTestBuilder() *StatementBuilder {
	b := NewStatementBuilder(false)
	b.now = func() time.Time { return fixedNow }
	return b
}

func dayRange(y int, m time.Month, d int) (time.Time, time.Time) {
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func weekRange(y int, m time.Month, d int) (time.Time, time.Time) {
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 7).Add(-time.Nanosecond)
}

// TestBuildSentinelOperators tests the kind-independent unary operators
func TestBuildSentinelOperators(t *testing.T) {
	b := newTestBuilder()

	tests := []struct {
		name             string
		kind             fieldspec.Kind
		value            interface{}
		operator         string
		expectedFragment string
	}{
		{
			name:             "blank as operator",
			kind:             fieldspec.KindString,
			value:            "anything",
			operator:         "blank",
			expectedFragment: "(name IS NULL OR name = '')",
		},
		{
			name:             "blank as value",
			kind:             fieldspec.KindString,
			value:            "blank",
			operator:         "default",
			expectedFragment: "(name IS NULL OR name = '')",
		},
		{
			name:             "present",
			kind:             fieldspec.KindString,
			value:            "",
			operator:         "present",
			expectedFragment: "(name IS NOT NULL AND name != '')",
		},
		{
			name:             "null",
			kind:             fieldspec.KindInteger,
			value:            "",
			operator:         "null",
			expectedFragment: "(name IS NULL)",
		},
		{
			name:             "not_null",
			kind:             fieldspec.KindInteger,
			value:            "",
			operator:         "not_null",
			expectedFragment: "(name IS NOT NULL)",
		},
		{
			name:             "empty",
			kind:             fieldspec.KindString,
			value:            "",
			operator:         "empty",
			expectedFragment: "(name = '')",
		},
		{
			name:             "not_empty",
			kind:             fieldspec.KindString,
			value:            "",
			operator:         "not_empty",
			expectedFragment: "(name != '')",
		},
		{
			name:             "sentinel wins over boolean parsing",
			kind:             fieldspec.KindBoolean,
			value:            "true",
			operator:         "null",
			expectedFragment: "(name IS NULL)",
		},
		{
			name:             "sentinel wins over datetime parsing",
			kind:             fieldspec.KindDateTime,
			value:            "blank",
			operator:         "today",
			expectedFragment: "(name IS NULL OR name = '')",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := b.Build("name", tt.kind, tt.value, tt.operator)
			if s == nil {
				t.Fatal("Expected a statement, got nil")
			}
			if s.Fragment != tt.expectedFragment {
				t.Errorf("Expected fragment %q, got %q", tt.expectedFragment, s.Fragment)
			}
			if len(s.Values) != 0 {
				t.Errorf("Sentinel statements carry no bind values, got %v", s.Values)
			}
		})
	}
}

func TestBuildDiscard(t *testing.T) {
	b := newTestBuilder()

	if s := b.Build("name", fieldspec.KindString, "foo", "discard"); s != nil {
		t.Errorf("Expected nil for discard operator, got %+v", s)
	}
	if s := b.Build("name", fieldspec.KindString, "discard", "default"); s != nil {
		t.Errorf("Expected nil for discard value, got %+v", s)
	}
	// discard beats a sentinel that would otherwise fire
	if s := b.Build("name", fieldspec.KindString, "blank", "discard"); s != nil {
		t.Errorf("Expected discard to win over sentinel, got %+v", s)
	}
}

// TestBuildByKind tests type-specific resolution
func TestBuildByKind(t *testing.T) {
	b := newTestBuilder()

	todayStart, todayEnd := dayRange(2024, 5, 15)
	yesterdayStart, yesterdayEnd := dayRange(2024, 5, 14)
	thisWeekStart, thisWeekEnd := weekRange(2024, 5, 13)
	lastWeekStart, lastWeekEnd := weekRange(2024, 5, 6)

	tests := []struct {
		name             string
		kind             fieldspec.Kind
		value            interface{}
		operator         string
		expectedFragment string
		expectedValues   []interface{}
		expectNil        bool
	}{
		{
			name:             "boolean false",
			kind:             fieldspec.KindBoolean,
			value:            "false",
			operator:         "default",
			expectedFragment: "(active IS NULL OR active = ?)",
			expectedValues:   []interface{}{false},
		},
		{
			name:             "boolean f",
			kind:             fieldspec.KindBoolean,
			value:            "f",
			operator:         "default",
			expectedFragment: "(active IS NULL OR active = ?)",
			expectedValues:   []interface{}{false},
		},
		{
			name:             "boolean 0",
			kind:             fieldspec.KindBoolean,
			value:            "0",
			operator:         "default",
			expectedFragment: "(active IS NULL OR active = ?)",
			expectedValues:   []interface{}{false},
		},
		{
			name:             "boolean true",
			kind:             fieldspec.KindBoolean,
			value:            "t",
			operator:         "default",
			expectedFragment: "(active = ?)",
			expectedValues:   []interface{}{true},
		},
		{
			name:      "boolean garbage",
			kind:      fieldspec.KindBoolean,
			value:     "maybe",
			operator:  "default",
			expectNil: true,
		},
		{
			name:             "integer round-trips",
			kind:             fieldspec.KindInteger,
			value:            "42",
			operator:         "default",
			expectedFragment: "(active = ?)",
			expectedValues:   []interface{}{42},
		},
		{
			name:      "integer with trailing garbage",
			kind:      fieldspec.KindInteger,
			value:     "12abc",
			operator:  "default",
			expectNil: true,
		},
		{
			name:      "integer with leading zero does not round-trip",
			kind:      fieldspec.KindInteger,
			value:     "012",
			operator:  "default",
			expectNil: true,
		},
		{
			name:      "integer blank",
			kind:      fieldspec.KindInteger,
			value:     "",
			operator:  "default",
			expectNil: true,
		},
		{
			name:             "belongs-to uses integer parsing",
			kind:             fieldspec.KindBelongsTo,
			value:            "7",
			operator:         "default",
			expectedFragment: "(active = ?)",
			expectedValues:   []interface{}{7},
		},
		{
			name:             "string default wraps",
			kind:             fieldspec.KindString,
			value:            "foo",
			operator:         "default",
			expectedFragment: "(active LIKE ?)",
			expectedValues:   []interface{}{"%foo%"},
		},
		{
			name:             "string like wraps",
			kind:             fieldspec.KindString,
			value:            "foo",
			operator:         "like",
			expectedFragment: "(active LIKE ?)",
			expectedValues:   []interface{}{"%foo%"},
		},
		{
			name:             "string starts_with",
			kind:             fieldspec.KindString,
			value:            "foo",
			operator:         "starts_with",
			expectedFragment: "(active LIKE ?)",
			expectedValues:   []interface{}{"foo%"},
		},
		{
			name:             "string ends_with",
			kind:             fieldspec.KindText,
			value:            "foo",
			operator:         "ends_with",
			expectedFragment: "(active LIKE ?)",
			expectedValues:   []interface{}{"%foo"},
		},
		{
			name:             "string is",
			kind:             fieldspec.KindString,
			value:            "foo",
			operator:         "is",
			expectedFragment: "(active LIKE ?)",
			expectedValues:   []interface{}{"foo"},
		},
		{
			name:             "string equals sign",
			kind:             fieldspec.KindString,
			value:            "foo",
			operator:         "=",
			expectedFragment: "(active LIKE ?)",
			expectedValues:   []interface{}{"foo"},
		},
		{
			name:      "string blank value",
			kind:      fieldspec.KindString,
			value:     "",
			operator:  "default",
			expectNil: true,
		},
		{
			name:      "string unknown operator",
			kind:      fieldspec.KindString,
			value:     "foo",
			operator:  "between",
			expectNil: true,
		},
		{
			name:             "datetime today",
			kind:             fieldspec.KindDateTime,
			value:            "",
			operator:         "today",
			expectedFragment: "(active BETWEEN ? AND ?)",
			expectedValues:   []interface{}{todayStart, todayEnd},
		},
		{
			name:             "datetime yesterday",
			kind:             fieldspec.KindDate,
			value:            "",
			operator:         "yesterday",
			expectedFragment: "(active BETWEEN ? AND ?)",
			expectedValues:   []interface{}{yesterdayStart, yesterdayEnd},
		},
		{
			name:             "datetime this_week starts Monday",
			kind:             fieldspec.KindTimestamp,
			value:            "",
			operator:         "this_week",
			expectedFragment: "(active BETWEEN ? AND ?)",
			expectedValues:   []interface{}{thisWeekStart, thisWeekEnd},
		},
		{
			name:             "datetime last_week",
			kind:             fieldspec.KindDateTime,
			value:            "",
			operator:         "last_week",
			expectedFragment: "(active BETWEEN ? AND ?)",
			expectedValues:   []interface{}{lastWeekStart, lastWeekEnd},
		},
		{
			name:             "datetime less_than",
			kind:             fieldspec.KindDateTime,
			value:            "3",
			operator:         "less_than",
			expectedFragment: "(active BETWEEN ? AND ?)",
			expectedValues:   []interface{}{fixedNow.AddDate(0, 0, -3), fixedNow},
		},
		{
			name:             "datetime more_than",
			kind:             fieldspec.KindDateTime,
			value:            "3",
			operator:         "more_than",
			expectedFragment: "(active BETWEEN ? AND ?)",
			expectedValues:   []interface{}{fixedNow.AddDate(-2000, 0, 0), fixedNow.AddDate(0, 0, -3)},
		},
		{
			name:      "datetime less_than without day count",
			kind:      fieldspec.KindDateTime,
			value:     "",
			operator:  "less_than",
			expectNil: true,
		},
		{
			name:      "datetime default operator",
			kind:      fieldspec.KindDateTime,
			value:     "2024-05-15",
			operator:  "default",
			expectNil: true,
		},
		{
			name:             "enum scalar",
			kind:             fieldspec.KindEnum,
			value:            "draft",
			operator:         "default",
			expectedFragment: "(active IN (?))",
			expectedValues:   []interface{}{"draft"},
		},
		{
			name:             "enum list",
			kind:             fieldspec.KindEnum,
			value:            []string{"draft", "published"},
			operator:         "default",
			expectedFragment: "(active IN (?,?))",
			expectedValues:   []interface{}{"draft", "published"},
		},
		{
			name:      "enum empty list",
			kind:      fieldspec.KindEnum,
			value:     []string{},
			operator:  "default",
			expectNil: true,
		},
		{
			name:      "has_many never filters",
			kind:      fieldspec.KindHasMany,
			value:     "foo",
			operator:  "default",
			expectNil: true,
		},
		{
			name:      "other kind never filters",
			kind:      fieldspec.KindOther,
			value:     "foo",
			operator:  "default",
			expectNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := b.Build("active", tt.kind, tt.value, tt.operator)
			if tt.expectNil {
				if s != nil {
					t.Fatalf("Expected no statement, got %+v", s)
				}
				return
			}
			if s == nil {
				t.Fatal("Expected a statement, got nil")
			}
			if s.Fragment != tt.expectedFragment {
				t.Errorf("Expected fragment %q, got %q", tt.expectedFragment, s.Fragment)
			}
			if !reflect.DeepEqual(s.Values, tt.expectedValues) {
				t.Errorf("Expected values %v, got %v", tt.expectedValues, s.Values)
			}
		})
	}
}

func TestBuildCaseInsensitiveLike(t *testing.T) {
	b := NewStatementBuilder(true)
	s := b.Build("name", fieldspec.KindString, "foo", "default")
	if s == nil {
		t.Fatal("Expected a statement, got nil")
	}
	if s.Fragment != "(name ILIKE ?)" {
		t.Errorf("Expected ILIKE fragment, got %q", s.Fragment)
	}
}
