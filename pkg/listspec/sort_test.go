package listspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SecondBureau/adminsgrid/pkg/fieldspec"
)

func sortEntity(t *testing.T) *fieldspec.Entity {
	t.Helper()
	entity := &fieldspec.Entity{
		Name:  "players",
		Table: "players",
		Fields: []fieldspec.Field{
			{Name: "name", Kind: fieldspec.KindString, Sortable: fieldspec.Sortable()},
			{Name: "rating", Kind: fieldspec.KindInteger, Sortable: fieldspec.Sortable(), SortReverse: true},
			{Name: "notes", Kind: fieldspec.KindText, Sortable: fieldspec.NotSortable()},
			{Name: "label", Kind: fieldspec.KindString, Sortable: fieldspec.SortableOn("display_name")},
			{Name: "origin", Kind: fieldspec.KindString, Sortable: fieldspec.SortableOn("legacy.origin_name")},
			{Name: "division", Kind: fieldspec.KindString, Sortable: fieldspec.SortableJoin("divisions", "rank")},
			{
				Name: "team", Kind: fieldspec.KindBelongsTo, Column: "team_id",
				TargetTable: "teams", Relation: "Team",
				Sortable: fieldspec.SortableOn("name"),
			},
			{Name: "secret", Kind: fieldspec.KindString, Hidden: true, Sortable: fieldspec.Sortable()},
		},
		DefaultSortField: "name",
	}
	require.NoError(t, entity.Normalize())
	return entity
}

func TestResolveSortColumns(t *testing.T) {
	entity := sortEntity(t)

	tests := []struct {
		name           string
		field          string
		expectedColumn string
	}{
		{"own column", "name", "players.name"},
		{"not sortable falls back to default", "notes", "players.name"},
		{"configured column on base table", "label", "players.display_name"},
		{"dotted configured column used verbatim", "origin", "legacy.origin_name"},
		{"join mapping", "division", "divisions.rank"},
		{"association uses target table", "team", "teams.name"},
		{"unknown field uses entity default", "nope", "players.name"},
		{"hidden field uses entity default", "secret", "players.name"},
		{"empty field uses entity default", "", "players.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sort := ResolveSort(entity, tt.field, "false")
			assert.Equal(t, tt.expectedColumn, sort.Column)
		})
	}
}

// The final sort is reversed exactly when the requested flag equals the
// field's default reverse flag as a string.
func TestResolveSortDirection(t *testing.T) {
	entity := sortEntity(t)

	tests := []struct {
		name             string
		field            string
		reverse          string
		expectedReversed bool
	}{
		{"default-false field, flag matches default", "name", "false", true},
		{"default-false field, flag differs", "name", "true", false},
		{"default-true field, flag differs", "rating", "false", false},
		{"default-true field, flag matches default", "rating", "true", true},
		{"empty flag is read as false", "name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sort := ResolveSort(entity, tt.field, tt.reverse)
			assert.Equal(t, tt.expectedReversed, sort.Reversed)
		})
	}
}

func TestResolveSortInvisibleFieldDiscardsReverse(t *testing.T) {
	entity := sortEntity(t)

	// The reverse flag is discarded with the invisible field: the default
	// field's direction is computed as if no flag was sent at all.
	sort := ResolveSort(entity, "secret", "true")
	assert.Equal(t, "players.name", sort.Column)
	assert.Equal(t, ResolveSort(entity, "", "").Reversed, sort.Reversed)
}

func TestResolveSortDefaultsToPrimaryKey(t *testing.T) {
	entity := &fieldspec.Entity{
		Name:  "teams",
		Table: "teams",
		Fields: []fieldspec.Field{
			{Name: "name", Kind: fieldspec.KindString},
		},
	}
	require.NoError(t, entity.Normalize())

	sort := ResolveSort(entity, "", "")
	assert.Equal(t, "teams.id", sort.Column)
}

func TestResolvedSortOrderExpr(t *testing.T) {
	assert.Equal(t, "players.name ASC", ResolvedSort{Column: "players.name"}.OrderExpr())
	assert.Equal(t, "players.name DESC", ResolvedSort{Column: "players.name", Reversed: true}.OrderExpr())
}
