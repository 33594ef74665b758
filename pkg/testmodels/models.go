// Package testmodels provides sample models and entity descriptors for
// the demo server and integration tests.
package testmodels

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/SecondBureau/adminsgrid/pkg/fieldspec"
)

type Team struct {
	bun.BaseModel `bun:"table:teams,alias:teams"`

	ID        int64     `bun:"id,pk,autoincrement" gorm:"primaryKey" json:"id"`
	Name      string    `bun:"name" gorm:"not null" json:"name"`
	Division  string    `bun:"division" json:"division"`
	CreatedAt time.Time `bun:"created_at" json:"created_at"`
}

type Player struct {
	bun.BaseModel `bun:"table:players,alias:players"`

	ID        int64     `bun:"id,pk,autoincrement" gorm:"primaryKey" json:"id"`
	Name      string    `bun:"name" gorm:"not null" json:"name"`
	Email     string    `bun:"email" gorm:"uniqueIndex" json:"email"`
	Age       int       `bun:"age" json:"age"`
	Active    bool      `bun:"active" gorm:"default:true" json:"active"`
	Position  string    `bun:"position" json:"position"`
	TeamID    int64     `bun:"team_id" json:"team_id"`
	CreatedAt time.Time `bun:"created_at" json:"created_at"`

	Team *Team `bun:"rel:belongs-to,join:team_id=id" gorm:"foreignKey:TeamID" json:"team,omitempty"`
}

// RegisterSampleEntities registers the demo entities on the given
// registry.
func RegisterSampleEntities(registry *fieldspec.Registry) error {
	teams := &fieldspec.Entity{
		Name:             "teams",
		Table:            "teams",
		Model:            (*Team)(nil),
		DefaultSortField: "name",
		Fields: []fieldspec.Field{
			{Name: "name", Kind: fieldspec.KindString, Queryable: true, Filterable: true, Sortable: fieldspec.Sortable()},
			{Name: "division", Kind: fieldspec.KindString, Filterable: true, Sortable: fieldspec.Sortable()},
			{Name: "created_at", Kind: fieldspec.KindDateTime, Filterable: true, Sortable: fieldspec.Sortable(), SortReverse: true},
		},
	}
	if err := registry.Register(teams); err != nil {
		return err
	}

	players := &fieldspec.Entity{
		Name:             "players",
		Table:            "players",
		Model:            (*Player)(nil),
		DefaultSortField: "name",
		PageSize:         25,
		Fields: []fieldspec.Field{
			{Name: "name", Kind: fieldspec.KindString, Queryable: true, Filterable: true, Sortable: fieldspec.Sortable()},
			{Name: "email", Kind: fieldspec.KindString, Queryable: true, Filterable: true, Sortable: fieldspec.Sortable()},
			{Name: "age", Kind: fieldspec.KindInteger, Filterable: true, Sortable: fieldspec.Sortable()},
			{Name: "active", Kind: fieldspec.KindBoolean, Filterable: true, Sortable: fieldspec.Sortable()},
			{Name: "position", Kind: fieldspec.KindEnum, Filterable: true, Sortable: fieldspec.Sortable()},
			{Name: "team", Kind: fieldspec.KindBelongsTo, Column: "team_id", Relation: "Team", TargetTable: "teams", Filterable: true, Sortable: fieldspec.SortableOn("name")},
			{Name: "created_at", Kind: fieldspec.KindDateTime, Filterable: true, Sortable: fieldspec.Sortable(), SortReverse: true},
		},
	}
	return registry.Register(players)
}
