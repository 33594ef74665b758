package common

import "context"

// Database abstracts the underlying ORM so the query core works with both
// GORM and Bun.
type Database interface {
	NewSelect() SelectQuery
	NewDelete() DeleteQuery

	// Raw SQL execution
	Exec(ctx context.Context, query string, args ...interface{}) (Result, error)
	Query(ctx context.Context, dest interface{}, query string, args ...interface{}) error

	RunInTransaction(ctx context.Context, fn func(Database) error) error

	// GetUnderlyingDB returns the wrapped connection (*gorm.DB or *bun.DB).
	GetUnderlyingDB() interface{}

	// DriverName returns the canonical driver name: "postgres", "sqlite",
	// "mysql". Adapters normalise vendor strings before returning.
	DriverName() string
}

// SelectQuery builds a SELECT statement. Builder methods return the query
// for chaining; execution methods run it.
type SelectQuery interface {
	Model(model interface{}) SelectQuery
	Table(table string) SelectQuery
	Column(columns ...string) SelectQuery
	ColumnExpr(expr string, args ...interface{}) SelectQuery
	Where(cond string, args ...interface{}) SelectQuery
	WhereOr(cond string, args ...interface{}) SelectQuery
	Join(join string, args ...interface{}) SelectQuery
	Preload(relation string, conditions ...interface{}) SelectQuery
	Order(order string) SelectQuery
	OrderExpr(order string, args ...interface{}) SelectQuery
	Limit(n int) SelectQuery
	Offset(n int) SelectQuery

	Scan(ctx context.Context, dest interface{}) error
	ScanModel(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	Exists(ctx context.Context) (bool, error)
}

// DeleteQuery builds a DELETE statement.
type DeleteQuery interface {
	Model(model interface{}) DeleteQuery
	Table(table string) DeleteQuery
	Where(cond string, args ...interface{}) DeleteQuery

	Exec(ctx context.Context) (Result, error)
}

// Result reports the outcome of a statement execution.
type Result interface {
	RowsAffected() int64
	LastInsertId() (int64, error)
}

// TableNameProvider is implemented by models that carry their own table name.
type TableNameProvider interface {
	TableName() string
}

// PrimaryKeyNameProvider is implemented by models that carry their own
// primary key column name.
type PrimaryKeyNameProvider interface {
	GetIDName() string
}
