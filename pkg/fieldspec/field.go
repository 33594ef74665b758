package fieldspec

// Kind identifies the declared type of a logical field. The query core
// switches behaviour on it, so the set is closed: adding a kind without
// handling it in the statement builder is a compile-time error there.
type Kind int

const (
	KindOther Kind = iota
	KindBoolean
	KindInteger
	KindString
	KindText
	KindDate
	KindDateTime
	KindTimestamp
	KindEnum
	KindBelongsTo
	KindHasOne
	KindHasMany
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindString:
		return "string"
	case KindText:
		return "text"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	case KindTimestamp:
		return "timestamp"
	case KindEnum:
		return "enum"
	case KindBelongsTo:
		return "belongs_to"
	case KindHasOne:
		return "has_one"
	case KindHasMany:
		return "has_many"
	default:
		return "other"
	}
}

// IsDateTime reports whether the kind belongs to the date/time family.
func (k Kind) IsDateTime() bool {
	return k == KindDate || k == KindDateTime || k == KindTimestamp
}

// IsAssociation reports whether the kind references another entity.
func (k Kind) IsAssociation() bool {
	return k == KindBelongsTo || k == KindHasOne || k == KindHasMany
}

// SearchColumn is one physical column a logical field is searched on.
// A single field may fan out to several columns (polymorphic or computed
// fields); association fields resolve through the related entity's table.
type SearchColumn struct {
	Column string
	Kind   Kind
}

// SortableKind tags the SortableSpec variant.
type SortableKind int

const (
	// SortOwnColumn sorts on the field's own column on the base table.
	SortOwnColumn SortableKind = iota
	// SortDisabled falls back to the entity's default sort field.
	SortDisabled
	// SortColumn sorts on a configured column. A dotted value is used
	// verbatim; an undotted value is qualified with the base table, or with
	// the association target table for association fields.
	SortColumn
	// SortJoin sorts on joinTable.joinColumn.
	SortJoin
)

// SortableSpec is the closed variant behind a field's sortable setting:
// true, false, a "table.column" string, or a one-entry join mapping.
type SortableSpec struct {
	kind       SortableKind
	column     string
	joinTable  string
	joinColumn string
}

// Sortable returns the default spec: sort on the field's own column.
func Sortable() SortableSpec { return SortableSpec{kind: SortOwnColumn} }

// NotSortable disables sorting on the field.
func NotSortable() SortableSpec { return SortableSpec{kind: SortDisabled} }

// SortableOn sorts on the given column (dotted values used verbatim).
func SortableOn(column string) SortableSpec {
	return SortableSpec{kind: SortColumn, column: column}
}

// SortableJoin sorts on table.column of an arbitrary join target.
func SortableJoin(table, column string) SortableSpec {
	return SortableSpec{kind: SortJoin, joinTable: table, joinColumn: column}
}

func (s SortableSpec) Kind() SortableKind { return s.kind }
func (s SortableSpec) Column() string     { return s.column }

// Join returns the join target for SortJoin specs.
func (s SortableSpec) Join() (table, column string) { return s.joinTable, s.joinColumn }

// Field is the static descriptor for one logical entity field. Descriptors
// are built once at configuration load and shared read-only across requests.
type Field struct {
	Name string
	Kind Kind

	// Column is the physical column on the base table. Empty means Name.
	Column string

	// SearchColumns lists the physical columns free-text search and filters
	// run against. Empty means the field's own column with its own kind.
	SearchColumns []SearchColumn

	Queryable  bool
	Filterable bool
	Sortable   SortableSpec

	// SortReverse is the field's natural reverse-sort default.
	SortReverse bool

	// Hidden excludes the field from the visible set used for sort
	// resolution and the rendered column list.
	Hidden bool

	// Association metadata. Relation is the Go relation name used for
	// preloading; TargetTable is the related entity's table.
	Relation    string
	TargetTable string
	Polymorphic bool
}

// searchColumns returns the resolved (column, kind) pairs for this field on
// the given base table.
func (f *Field) searchColumns(baseTable string) []SearchColumn {
	if len(f.SearchColumns) > 0 {
		return f.SearchColumns
	}
	table := baseTable
	kind := f.Kind
	if f.Kind.IsAssociation() && f.TargetTable != "" {
		table = f.TargetTable
	}
	if f.Kind == KindBelongsTo {
		// An unconfigured belongs-to searches its foreign key id.
		kind = KindInteger
		table = baseTable
	}
	return []SearchColumn{{Column: table + "." + f.columnName(), Kind: kind}}
}

func (f *Field) columnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}
