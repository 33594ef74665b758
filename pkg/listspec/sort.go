package listspec

import (
	"strconv"
	"strings"

	"github.com/SecondBureau/adminsgrid/pkg/fieldspec"
)

// ResolvedSort is a physical ORDER BY target. Column is table-qualified (or
// a verbatim configured expression); Reversed is the final direction after
// combining the request with the field's natural default.
type ResolvedSort struct {
	Column   string
	Reversed bool
}

// OrderExpr renders the sort as an ORDER BY expression.
func (s ResolvedSort) OrderExpr() string {
	if s.Reversed {
		return s.Column + " DESC"
	}
	return s.Column + " ASC"
}

// ResolveSort maps a requested sort field to a column and direction. A
// request naming a field outside the entity's visible set is discarded
// wholesale, reverse flag included, and the entity default takes over.
// Resolution never fails: the worst input still sorts by the default.
//
// The direction is string equality between the requested reverse flag and
// the field's default reverse flag: the final sort is reversed exactly when
// the two match. The admin UI's column links are built against this
// equality, so a repeated click on the same header flips the order.
func ResolveSort(entity *fieldspec.Entity, requestedField, requestedReverse string) ResolvedSort {
	if !containsString(entity.VisibleFieldNames(), requestedField) {
		requestedField = ""
		requestedReverse = ""
	}
	if requestedField == "" {
		requestedField = entity.DefaultSortField
	}
	if requestedReverse == "" {
		requestedReverse = "false"
	}

	field, _ := entity.Field(requestedField)
	column := sortColumn(entity, field, requestedField)

	defaultReverse := entity.DefaultSortReverse
	if field != nil {
		defaultReverse = field.SortReverse
	}
	return ResolvedSort{
		Column:   column,
		Reversed: requestedReverse == strconv.FormatBool(defaultReverse),
	}
}

func sortColumn(entity *fieldspec.Entity, field *fieldspec.Field, requested string) string {
	if field == nil {
		// No field resolved: the entity configured no default sort field,
		// so the primary key carries the order.
		return entity.DefaultSortColumn()
	}
	switch field.Sortable.Kind() {
	case fieldspec.SortDisabled:
		return entity.DefaultSortColumn()
	case fieldspec.SortColumn:
		column := field.Sortable.Column()
		if strings.Contains(column, ".") {
			return column
		}
		if field.Kind.IsAssociation() && field.TargetTable != "" {
			return field.TargetTable + "." + column
		}
		return entity.Table + "." + column
	case fieldspec.SortJoin:
		table, column := field.Sortable.Join()
		return table + "." + column
	default:
		return entity.Table + "." + requested
	}
}

func containsString(names []string, name string) bool {
	if name == "" {
		return false
	}
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
