package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/SecondBureau/adminsgrid/pkg/common"
	"github.com/SecondBureau/adminsgrid/pkg/logger"
)

// queryLogHook logs every SQL statement Bun executes, including preloads.
type queryLogHook struct{}

func (queryLogHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (queryLogHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	duration := time.Since(event.StartTime)
	if event.Err != nil {
		logger.Error("SQL failed [%s]: %s: %v", duration, event.Query, event.Err)
	} else {
		logger.Debug("SQL ok [%s]: %s", duration, event.Query)
	}
}

// BunAdapter adapts Bun to the common.Database interface.
type BunAdapter struct {
	db *bun.DB
}

// NewBunAdapter creates a new Bun adapter.
func NewBunAdapter(db *bun.DB) *BunAdapter {
	return &BunAdapter{db: db}
}

// EnableQueryDebug logs all SQL queries issued through this adapter.
func (b *BunAdapter) EnableQueryDebug() {
	b.db.AddQueryHook(queryLogHook{})
	logger.Info("bun query debug enabled")
}

func (b *BunAdapter) NewSelect() common.SelectQuery {
	return &BunSelectQuery{query: b.db.NewSelect()}
}

func (b *BunAdapter) NewDelete() common.DeleteQuery {
	return &BunDeleteQuery{query: b.db.NewDelete()}
}

func (b *BunAdapter) Exec(ctx context.Context, query string, args ...interface{}) (res common.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("BunAdapter.Exec", r)
		}
	}()
	result, err := b.db.ExecContext(ctx, query, args...)
	return &BunResult{result: result}, err
}

func (b *BunAdapter) Query(ctx context.Context, dest interface{}, query string, args ...interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("BunAdapter.Query", r)
		}
	}()
	return b.db.NewRaw(query, args...).Scan(ctx, dest)
}

func (b *BunAdapter) RunInTransaction(ctx context.Context, fn func(common.Database) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("BunAdapter.RunInTransaction", r)
		}
	}()
	return b.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(&bunTxAdapter{tx: tx})
	})
}

func (b *BunAdapter) GetUnderlyingDB() interface{} {
	return b.db
}

func (b *BunAdapter) DriverName() string {
	return normalizeDriverName(b.db.Dialect().Name().String())
}

// bunTxAdapter exposes a Bun transaction through the same Database interface.
type bunTxAdapter struct {
	tx bun.Tx
}

func (t *bunTxAdapter) NewSelect() common.SelectQuery {
	return &BunSelectQuery{query: t.tx.NewSelect()}
}

func (t *bunTxAdapter) NewDelete() common.DeleteQuery {
	return &BunDeleteQuery{query: t.tx.NewDelete()}
}

func (t *bunTxAdapter) Exec(ctx context.Context, query string, args ...interface{}) (common.Result, error) {
	result, err := t.tx.ExecContext(ctx, query, args...)
	return &BunResult{result: result}, err
}

func (t *bunTxAdapter) Query(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return t.tx.NewRaw(query, args...).Scan(ctx, dest)
}

func (t *bunTxAdapter) RunInTransaction(ctx context.Context, fn func(common.Database) error) error {
	// Already inside a transaction, reuse it.
	return fn(t)
}

func (t *bunTxAdapter) GetUnderlyingDB() interface{} {
	return t.tx
}

func (t *bunTxAdapter) DriverName() string {
	return "postgres"
}

// BunSelectQuery implements common.SelectQuery on top of *bun.SelectQuery.
type BunSelectQuery struct {
	query     *bun.SelectQuery
	schema    string
	tableName string
}

func (b *BunSelectQuery) Model(model interface{}) common.SelectQuery {
	b.query = b.query.Model(model)
	if provider, ok := model.(common.TableNameProvider); ok {
		b.schema, b.tableName = parseTableName(provider.TableName())
	}
	return b
}

func (b *BunSelectQuery) Table(table string) common.SelectQuery {
	b.query = b.query.Table(table)
	b.schema, b.tableName = parseTableName(table)
	return b
}

func (b *BunSelectQuery) Column(columns ...string) common.SelectQuery {
	b.query = b.query.Column(columns...)
	return b
}

func (b *BunSelectQuery) ColumnExpr(expr string, args ...interface{}) common.SelectQuery {
	b.query = b.query.ColumnExpr(expr, args...)
	return b
}

func (b *BunSelectQuery) Where(cond string, args ...interface{}) common.SelectQuery {
	b.query = b.query.Where(cond, args...)
	return b
}

func (b *BunSelectQuery) WhereOr(cond string, args ...interface{}) common.SelectQuery {
	b.query = b.query.WhereOr(cond, args...)
	return b
}

func (b *BunSelectQuery) Join(join string, args ...interface{}) common.SelectQuery {
	b.query = b.query.Join(join, args...)
	return b
}

func (b *BunSelectQuery) Preload(relation string, conditions ...interface{}) common.SelectQuery {
	// Bun loads relations with Relation().
	b.query = b.query.Relation(relation)
	return b
}

func (b *BunSelectQuery) Order(order string) common.SelectQuery {
	b.query = b.query.Order(order)
	return b
}

func (b *BunSelectQuery) OrderExpr(order string, args ...interface{}) common.SelectQuery {
	b.query = b.query.OrderExpr(order, args...)
	return b
}

func (b *BunSelectQuery) Limit(n int) common.SelectQuery {
	b.query = b.query.Limit(n)
	return b
}

func (b *BunSelectQuery) Offset(n int) common.SelectQuery {
	b.query = b.query.Offset(n)
	return b
}

func (b *BunSelectQuery) Scan(ctx context.Context, dest interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("BunSelectQuery.Scan", r)
		}
	}()
	if dest == nil {
		return fmt.Errorf("destination cannot be nil")
	}
	if err := b.query.Scan(ctx, dest); err != nil {
		logger.Error("BunSelectQuery.Scan failed. SQL: %s: %v", b.query.String(), err)
		return err
	}
	return nil
}

func (b *BunSelectQuery) ScanModel(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("BunSelectQuery.ScanModel", r)
		}
	}()
	if err := b.query.Scan(ctx); err != nil {
		logger.Error("BunSelectQuery.ScanModel failed. SQL: %s: %v", b.query.String(), err)
		return err
	}
	return nil
}

func (b *BunSelectQuery) Count(ctx context.Context) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("BunSelectQuery.Count", r)
			count = 0
		}
	}()
	return b.query.Count(ctx)
}

func (b *BunSelectQuery) Exists(ctx context.Context) (exists bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("BunSelectQuery.Exists", r)
			exists = false
		}
	}()
	return b.query.Exists(ctx)
}

// BunDeleteQuery implements common.DeleteQuery on top of *bun.DeleteQuery.
type BunDeleteQuery struct {
	query *bun.DeleteQuery
}

func (b *BunDeleteQuery) Model(model interface{}) common.DeleteQuery {
	b.query = b.query.Model(model)
	return b
}

func (b *BunDeleteQuery) Table(table string) common.DeleteQuery {
	b.query = b.query.Table(table)
	return b
}

func (b *BunDeleteQuery) Where(cond string, args ...interface{}) common.DeleteQuery {
	b.query = b.query.Where(cond, args...)
	return b
}

func (b *BunDeleteQuery) Exec(ctx context.Context) (res common.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("BunDeleteQuery.Exec", r)
		}
	}()
	result, err := b.query.Exec(ctx)
	return &BunResult{result: result}, err
}

// BunResult implements common.Result.
type BunResult struct {
	result sql.Result
}

func (b *BunResult) RowsAffected() int64 {
	if b.result == nil {
		return 0
	}
	n, err := b.result.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

func (b *BunResult) LastInsertId() (int64, error) {
	if b.result == nil {
		return 0, fmt.Errorf("no result")
	}
	return b.result.LastInsertId()
}
