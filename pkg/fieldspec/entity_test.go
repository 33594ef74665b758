package fieldspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	entity := &Entity{
		Name:  "teams",
		Table: "teams",
		Fields: []Field{
			{Name: "name", Kind: KindString},
		},
	}
	require.NoError(t, entity.Normalize())

	assert.Equal(t, "id", entity.PrimaryKey)
	assert.Equal(t, "name", entity.LabelColumn)
	assert.Equal(t, DefaultPageSize, entity.PageSize)
}

func TestNormalizeValidation(t *testing.T) {
	tests := []struct {
		name   string
		entity Entity
	}{
		{
			name:   "missing name",
			entity: Entity{Table: "teams"},
		},
		{
			name:   "missing table",
			entity: Entity{Name: "teams"},
		},
		{
			name: "unnamed field",
			entity: Entity{Name: "teams", Table: "teams", Fields: []Field{
				{Kind: KindString},
			}},
		},
		{
			name: "duplicate field",
			entity: Entity{Name: "teams", Table: "teams", Fields: []Field{
				{Name: "name", Kind: KindString},
				{Name: "name", Kind: KindText},
			}},
		},
		{
			name: "association without target table",
			entity: Entity{Name: "players", Table: "players", Fields: []Field{
				{Name: "team", Kind: KindBelongsTo},
			}},
		},
		{
			name: "unknown default sort field",
			entity: Entity{
				Name: "teams", Table: "teams",
				Fields:           []Field{{Name: "name", Kind: KindString}},
				DefaultSortField: "missing",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.entity.Normalize())
		})
	}
}

func TestPolymorphicAssociationNeedsNoTargetTable(t *testing.T) {
	entity := &Entity{
		Name: "comments", Table: "comments",
		Fields: []Field{
			{Name: "commentable", Kind: KindBelongsTo, Polymorphic: true},
		},
	}
	assert.NoError(t, entity.Normalize())
}

func TestSearchColumnsFor(t *testing.T) {
	entity := &Entity{
		Name: "players", Table: "players",
		Fields: []Field{
			{Name: "name", Kind: KindString},
			{Name: "nickname", Kind: KindString, Column: "nick"},
			{Name: "team", Kind: KindBelongsTo, Column: "team_id", TargetTable: "teams"},
			{Name: "division", Kind: KindHasOne, TargetTable: "divisions", Column: "name"},
			{
				Name: "subject", Kind: KindString,
				SearchColumns: []SearchColumn{
					{Column: "players.title", Kind: KindString},
					{Column: "players.body", Kind: KindText},
				},
			},
		},
	}
	require.NoError(t, entity.Normalize())

	tests := []struct {
		field    string
		expected []SearchColumn
	}{
		{"name", []SearchColumn{{Column: "players.name", Kind: KindString}}},
		{"nickname", []SearchColumn{{Column: "players.nick", Kind: KindString}}},
		// An unconfigured belongs-to searches its integer foreign key on
		// the base table.
		{"team", []SearchColumn{{Column: "players.team_id", Kind: KindInteger}}},
		{"division", []SearchColumn{{Column: "divisions.name", Kind: KindHasOne}}},
		{"subject", []SearchColumn{
			{Column: "players.title", Kind: KindString},
			{Column: "players.body", Kind: KindText},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f, ok := entity.Field(tt.field)
			require.True(t, ok)
			assert.Equal(t, tt.expected, entity.SearchColumnsFor(f))
		})
	}
}

func TestVisibleFieldNames(t *testing.T) {
	entity := &Entity{
		Name: "players", Table: "players",
		Fields: []Field{
			{Name: "name", Kind: KindString},
			{Name: "secret", Kind: KindString, Hidden: true},
			{Name: "age", Kind: KindInteger},
		},
	}
	require.NoError(t, entity.Normalize())
	assert.Equal(t, []string{"name", "age"}, entity.VisibleFieldNames())
}

func TestFilterableField(t *testing.T) {
	entity := &Entity{
		Name: "players", Table: "players",
		Fields: []Field{
			{Name: "name", Kind: KindString, Filterable: true},
			{Name: "age", Kind: KindInteger},
		},
	}
	require.NoError(t, entity.Normalize())

	_, ok := entity.FilterableField("name")
	assert.True(t, ok)
	_, ok = entity.FilterableField("age")
	assert.False(t, ok)
	_, ok = entity.FilterableField("missing")
	assert.False(t, ok)
}

func TestPreloadRelations(t *testing.T) {
	entity := &Entity{
		Name: "players", Table: "players",
		Fields: []Field{
			{Name: "team", Kind: KindBelongsTo, TargetTable: "teams", Relation: "Team"},
			{Name: "owner", Kind: KindBelongsTo, Polymorphic: true, Relation: "Owner"},
			{Name: "matches", Kind: KindHasMany, TargetTable: "matches", Relation: "Matches"},
			{Name: "coach", Kind: KindBelongsTo, TargetTable: "coaches"},
		},
	}
	require.NoError(t, entity.Normalize())

	// Only non-polymorphic belongs-to fields with a relation name preload.
	assert.Equal(t, []string{"Team"}, entity.PreloadRelations())
}

func TestDefaultSortColumn(t *testing.T) {
	entity := &Entity{
		Name: "players", Table: "players",
		Fields:           []Field{{Name: "label", Kind: KindString, Column: "display_name"}},
		DefaultSortField: "label",
	}
	require.NoError(t, entity.Normalize())
	assert.Equal(t, "players.display_name", entity.DefaultSortColumn())

	bare := &Entity{Name: "teams", Table: "teams"}
	require.NoError(t, bare.Normalize())
	assert.Equal(t, "teams.id", bare.DefaultSortColumn())
}
