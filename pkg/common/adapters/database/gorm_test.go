package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type testPlayer struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"column:name"`
}

func (*testPlayer) TableName() string {
	return "players"
}

func newMockGormAdapter(t *testing.T) (*GormAdapter, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)

	return NewGormAdapter(gdb), mock
}

func TestNewGormAdapter(t *testing.T) {
	adapter, _ := newMockGormAdapter(t)
	assert.NotNil(t, adapter)
	assert.Equal(t, "postgres", adapter.DriverName())
}

func TestGormSelectQueryScan(t *testing.T) {
	adapter, mock := newMockGormAdapter(t)

	mock.ExpectQuery(`SELECT (.+) FROM "players" WHERE \(players\.name LIKE \$1\) ORDER BY players\.name ASC LIMIT \$2`).
		WithArgs("%ali%", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "Alice").
			AddRow(2, "Salim"))

	var players []*testPlayer
	err := adapter.NewSelect().
		Model((*testPlayer)(nil)).
		Where("(players.name LIKE ?)", "%ali%").
		OrderExpr("players.name ASC").
		Limit(2).
		Scan(context.Background(), &players)

	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "Alice", players[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSelectQueryCount(t *testing.T) {
	adapter, mock := newMockGormAdapter(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "players" WHERE \(players\.active = \$1\)`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := adapter.NewSelect().
		Model((*testPlayer)(nil)).
		Where("(players.active = ?)", true).
		Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 42, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormDeleteQueryExec(t *testing.T) {
	adapter, mock := newMockGormAdapter(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "players" WHERE id IN \(\$1,\$2\)`).
		WithArgs("1", "3").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	res, err := adapter.NewDelete().
		Table("players").
		Where("id IN (?,?)", "1", "3").
		Exec(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), res.RowsAffected())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormResultLastInsertIdUnsupported(t *testing.T) {
	res := &GormResult{result: &gorm.DB{}}
	_, err := res.LastInsertId()
	assert.Error(t, err)
}
