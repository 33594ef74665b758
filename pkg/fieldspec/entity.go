package fieldspec

import "fmt"

// Entity describes one browsable entity: its table, its field descriptors
// and its list defaults. Immutable after registration.
type Entity struct {
	Name  string
	Table string

	// PrimaryKey defaults to "id".
	PrimaryKey string

	// Model is the Go struct records scan into. Optional; raw map scanning
	// is used when nil.
	Model interface{}

	// LabelColumn backs the compact id+label projection. Defaults to "name".
	LabelColumn string

	Fields []Field

	// DefaultSortField names the field used when a request names no sort
	// field or an unknown one. Empty means the primary key.
	DefaultSortField   string
	DefaultSortReverse bool

	// PageSize is the per-page record count. Zero means DefaultPageSize.
	PageSize int
}

// DefaultPageSize is used when an entity does not configure its own.
const DefaultPageSize = 20

// Normalize fills defaults and validates the descriptor set.
func (e *Entity) Normalize() error {
	if e.Name == "" {
		return fmt.Errorf("entity name is required")
	}
	if e.Table == "" {
		return fmt.Errorf("entity %s: table is required", e.Name)
	}
	if e.PrimaryKey == "" {
		e.PrimaryKey = "id"
	}
	if e.LabelColumn == "" {
		e.LabelColumn = "name"
	}
	if e.PageSize <= 0 {
		e.PageSize = DefaultPageSize
	}
	seen := make(map[string]bool, len(e.Fields))
	for i := range e.Fields {
		f := &e.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("entity %s: field %d has no name", e.Name, i)
		}
		if seen[f.Name] {
			return fmt.Errorf("entity %s: duplicate field %s", e.Name, f.Name)
		}
		seen[f.Name] = true
		if f.Kind.IsAssociation() && !f.Polymorphic && f.TargetTable == "" {
			return fmt.Errorf("entity %s: association field %s has no target table", e.Name, f.Name)
		}
	}
	if e.DefaultSortField != "" {
		if _, ok := e.Field(e.DefaultSortField); !ok {
			return fmt.Errorf("entity %s: default sort field %s not declared", e.Name, e.DefaultSortField)
		}
	}
	return nil
}

// Field returns the descriptor with the given name.
func (e *Entity) Field(name string) (*Field, bool) {
	for i := range e.Fields {
		if e.Fields[i].Name == name {
			return &e.Fields[i], true
		}
	}
	return nil, false
}

// VisibleFieldNames returns the names of the non-hidden fields, in
// declaration order.
func (e *Entity) VisibleFieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for i := range e.Fields {
		if !e.Fields[i].Hidden {
			names = append(names, e.Fields[i].Name)
		}
	}
	return names
}

// QueryableFields returns the fields participating in free-text search.
func (e *Entity) QueryableFields() []*Field {
	fields := make([]*Field, 0, len(e.Fields))
	for i := range e.Fields {
		if e.Fields[i].Queryable {
			fields = append(fields, &e.Fields[i])
		}
	}
	return fields
}

// FilterableField returns the named field when it accepts structured
// filters.
func (e *Entity) FilterableField(name string) (*Field, bool) {
	f, ok := e.Field(name)
	if !ok || !f.Filterable {
		return nil, false
	}
	return f, true
}

// SearchColumnsFor returns the resolved physical search columns of a field.
func (e *Entity) SearchColumnsFor(f *Field) []SearchColumn {
	return f.searchColumns(e.Table)
}

// DefaultSortColumn returns the qualified column backing the entity's
// default sort.
func (e *Entity) DefaultSortColumn() string {
	if e.DefaultSortField != "" {
		if f, ok := e.Field(e.DefaultSortField); ok {
			return e.Table + "." + f.columnName()
		}
	}
	return e.Table + "." + e.PrimaryKey
}

// PreloadRelations returns the relation names of non-polymorphic belongs-to
// fields. The list pipeline preloads them to avoid per-row fetches during
// rendering.
func (e *Entity) PreloadRelations() []string {
	relations := make([]string, 0)
	for i := range e.Fields {
		f := &e.Fields[i]
		if f.Kind == KindBelongsTo && !f.Polymorphic && f.Relation != "" {
			relations = append(relations, f.Relation)
		}
	}
	return relations
}
