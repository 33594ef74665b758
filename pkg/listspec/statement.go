package listspec

import (
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/SecondBureau/adminsgrid/pkg/fieldspec"
)

// Operator tokens shared by every field kind. They bypass type-specific
// value parsing and fire when either the operator or the raw value equals
// the token.
const (
	OpBlank    = "blank"
	OpPresent  = "present"
	OpNull     = "null"
	OpNotNull  = "not_null"
	OpEmpty    = "empty"
	OpNotEmpty = "not_empty"

	// OpDiscard drops the clause entirely. The UI sends it to keep a hidden
	// widget's state in the page without it affecting the query.
	OpDiscard = "discard"
)

// String operator tokens.
const (
	OpDefault    = "default"
	OpLike       = "like"
	OpStartsWith = "starts_with"
	OpEndsWith   = "ends_with"
	OpIs         = "is"
	OpEquals     = "="
)

// Datetime operator tokens.
const (
	OpToday     = "today"
	OpYesterday = "yesterday"
	OpThisWeek  = "this_week"
	OpLastWeek  = "last_week"
	OpLessThan  = "less_than"
	OpMoreThan  = "more_than"
)

// Statement is one compiled predicate fragment with its bind values. The
// fragment uses positional placeholders only; user input is never
// interpolated into the text.
type Statement struct {
	Fragment string
	Values   []interface{}
}

// StatementBuilder resolves one (column, kind, value, operator) tuple into a
// Statement, or nil when the input cannot produce a predicate. Malformed
// input is never an error: the clause is simply dropped.
type StatementBuilder struct {
	likeOperator string

	// now is injectable so date windows are deterministic under test.
	now func() time.Time
}

// NewStatementBuilder builds a resolver. caseInsensitiveLike selects the
// engine's case-insensitive pattern operator (Postgres ILIKE) over plain
// LIKE.
func NewStatementBuilder(caseInsensitiveLike bool) *StatementBuilder {
	op := "LIKE"
	if caseInsensitiveLike {
		op = "ILIKE"
	}
	return &StatementBuilder{likeOperator: op, now: time.Now}
}

// Build resolves one filter clause. The raw value is a string, or a string
// slice for multi-select enum filters.
func (b *StatementBuilder) Build(column string, kind fieldspec.Kind, value interface{}, operator string) *Statement {
	scalar := scalarValue(value)

	if operator == OpDiscard || scalar == OpDiscard {
		return nil
	}

	// Unary operators first; they ignore the declared kind.
	switch sentinelToken(operator, scalar) {
	case OpBlank:
		return &Statement{Fragment: "(" + column + " IS NULL OR " + column + " = '')"}
	case OpPresent:
		return &Statement{Fragment: "(" + column + " IS NOT NULL AND " + column + " != '')"}
	case OpNull:
		return &Statement{Fragment: "(" + column + " IS NULL)"}
	case OpNotNull:
		return &Statement{Fragment: "(" + column + " IS NOT NULL)"}
	case OpEmpty:
		return &Statement{Fragment: "(" + column + " = '')"}
	case OpNotEmpty:
		return &Statement{Fragment: "(" + column + " != '')"}
	}

	switch kind {
	case fieldspec.KindBoolean:
		return b.buildBoolean(column, scalar)
	case fieldspec.KindInteger, fieldspec.KindBelongsTo:
		return b.buildInteger(column, scalar)
	case fieldspec.KindString, fieldspec.KindText:
		return b.buildString(column, scalar, operator)
	case fieldspec.KindDate, fieldspec.KindDateTime, fieldspec.KindTimestamp:
		return b.buildDateTime(column, scalar, operator)
	case fieldspec.KindEnum:
		return b.buildEnum(column, value)
	case fieldspec.KindHasOne, fieldspec.KindHasMany, fieldspec.KindOther:
		return nil
	default:
		return nil
	}
}

func sentinelToken(operator, value string) string {
	for _, tok := range []string{OpBlank, OpPresent, OpNull, OpNotNull, OpEmpty, OpNotEmpty} {
		if operator == tok || value == tok {
			return tok
		}
	}
	return ""
}

func (b *StatementBuilder) buildBoolean(column, value string) *Statement {
	switch value {
	case "false", "f", "0":
		return &Statement{
			Fragment: "(" + column + " IS NULL OR " + column + " = ?)",
			Values:   []interface{}{false},
		}
	case "true", "t", "1":
		return &Statement{
			Fragment: "(" + column + " = ?)",
			Values:   []interface{}{true},
		}
	}
	return nil
}

func (b *StatementBuilder) buildInteger(column, value string) *Statement {
	if value == "" {
		return nil
	}
	// The value must round-trip losslessly, so "12abc" never matches id 12.
	n, err := strconv.Atoi(value)
	if err != nil || strconv.Itoa(n) != value {
		return nil
	}
	return &Statement{
		Fragment: "(" + column + " = ?)",
		Values:   []interface{}{n},
	}
}

func (b *StatementBuilder) buildString(column, value, operator string) *Statement {
	if value == "" {
		return nil
	}
	var bound string
	switch operator {
	case OpDefault, OpLike, "":
		bound = "%" + value + "%"
	case OpStartsWith:
		bound = value + "%"
	case OpEndsWith:
		bound = "%" + value
	case OpIs, OpEquals:
		bound = value
	default:
		return nil
	}
	return &Statement{
		Fragment: "(" + column + " " + b.likeOperator + " ?)",
		Values:   []interface{}{bound},
	}
}

func (b *StatementBuilder) buildDateTime(column, value, operator string) *Statement {
	now := b.now()
	var start, end time.Time

	switch operator {
	case OpToday:
		start, end = dayWindow(now)
	case OpYesterday:
		start, end = dayWindow(now.AddDate(0, 0, -1))
	case OpThisWeek:
		start, end = weekWindow(now)
	case OpLastWeek:
		start, end = weekWindow(now.AddDate(0, 0, -7))
	case OpLessThan:
		days, ok := parseDays(value)
		if !ok {
			return nil
		}
		start, end = now.AddDate(0, 0, -days), now
	case OpMoreThan:
		days, ok := parseDays(value)
		if !ok {
			return nil
		}
		// Bounded far past rather than an open range, matching the
		// behaviour filter links were built against.
		start, end = now.AddDate(-2000, 0, 0), now.AddDate(0, 0, -days)
	default:
		// Free text alone cannot filter a date range meaningfully.
		return nil
	}

	return &Statement{
		Fragment: "(" + column + " BETWEEN ? AND ?)",
		Values:   []interface{}{start, end},
	}
}

func (b *StatementBuilder) buildEnum(column string, value interface{}) *Statement {
	members := listValue(value)
	if len(members) == 0 {
		return nil
	}
	values := make([]interface{}, len(members))
	for i, m := range members {
		values[i] = m
	}
	return &Statement{
		Fragment: "(" + column + " IN (" + sq.Placeholders(len(members)) + "))",
		Values:   values,
	}
}

func parseDays(value string) (int, bool) {
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

func dayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// weekWindow returns the Monday-to-Sunday window containing t.
func weekWindow(t time.Time) (time.Time, time.Time) {
	offset := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -offset)
	start := time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 7).Add(-time.Nanosecond)
}

// scalarValue flattens the raw filter value to a single string. A list
// value contributes its first member for the sentinel and scalar branches.
func scalarValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// listValue flattens the raw filter value to a string list.
func listValue(value interface{}) []string {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		out := make([]string, 0, len(v))
		for _, m := range v {
			if m != "" {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}
