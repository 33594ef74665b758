package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SecondBureau/adminsgrid/pkg/common"
	"github.com/SecondBureau/adminsgrid/pkg/logger"
)

// GormAdapter adapts GORM to the common.Database interface.
type GormAdapter struct {
	db *gorm.DB
}

// NewGormAdapter creates a new GORM adapter.
func NewGormAdapter(db *gorm.DB) *GormAdapter {
	return &GormAdapter{db: db}
}

// EnableQueryDebug logs all SQL queries issued through this adapter.
func (g *GormAdapter) EnableQueryDebug() *GormAdapter {
	g.db = g.db.Debug()
	logger.Info("gorm query debug enabled")
	return g
}

func (g *GormAdapter) NewSelect() common.SelectQuery {
	return &GormSelectQuery{db: g.db}
}

func (g *GormAdapter) NewDelete() common.DeleteQuery {
	return &GormDeleteQuery{db: g.db}
}

func (g *GormAdapter) Exec(ctx context.Context, query string, args ...interface{}) (res common.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("GormAdapter.Exec", r)
		}
	}()
	result := g.db.WithContext(ctx).Exec(query, args...)
	return &GormResult{result: result}, result.Error
}

func (g *GormAdapter) Query(ctx context.Context, dest interface{}, query string, args ...interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("GormAdapter.Query", r)
		}
	}()
	return g.db.WithContext(ctx).Raw(query, args...).Find(dest).Error
}

func (g *GormAdapter) RunInTransaction(ctx context.Context, fn func(common.Database) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("GormAdapter.RunInTransaction", r)
		}
	}()
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormAdapter{db: tx})
	})
}

func (g *GormAdapter) GetUnderlyingDB() interface{} {
	return g.db
}

func (g *GormAdapter) DriverName() string {
	return normalizeDriverName(g.db.Dialector.Name())
}

// GormSelectQuery implements common.SelectQuery on top of *gorm.DB.
type GormSelectQuery struct {
	db        *gorm.DB
	schema    string
	tableName string
}

func (g *GormSelectQuery) Model(model interface{}) common.SelectQuery {
	g.db = g.db.Model(model)
	if provider, ok := model.(common.TableNameProvider); ok {
		g.schema, g.tableName = parseTableName(provider.TableName())
	}
	return g
}

func (g *GormSelectQuery) Table(table string) common.SelectQuery {
	g.db = g.db.Table(table)
	g.schema, g.tableName = parseTableName(table)
	return g
}

func (g *GormSelectQuery) Column(columns ...string) common.SelectQuery {
	g.db = g.db.Select(columns)
	return g
}

func (g *GormSelectQuery) ColumnExpr(expr string, args ...interface{}) common.SelectQuery {
	g.db = g.db.Select(expr, args...)
	return g
}

func (g *GormSelectQuery) Where(cond string, args ...interface{}) common.SelectQuery {
	g.db = g.db.Where(cond, args...)
	return g
}

func (g *GormSelectQuery) WhereOr(cond string, args ...interface{}) common.SelectQuery {
	g.db = g.db.Or(cond, args...)
	return g
}

func (g *GormSelectQuery) Join(join string, args ...interface{}) common.SelectQuery {
	g.db = g.db.Joins(join, args...)
	return g
}

func (g *GormSelectQuery) Preload(relation string, conditions ...interface{}) common.SelectQuery {
	g.db = g.db.Preload(relation, conditions...)
	return g
}

func (g *GormSelectQuery) Order(order string) common.SelectQuery {
	g.db = g.db.Order(order)
	return g
}

func (g *GormSelectQuery) OrderExpr(order string, args ...interface{}) common.SelectQuery {
	g.db = g.db.Order(gorm.Expr(order, args...))
	return g
}

func (g *GormSelectQuery) Limit(n int) common.SelectQuery {
	g.db = g.db.Limit(n)
	return g
}

func (g *GormSelectQuery) Offset(n int) common.SelectQuery {
	g.db = g.db.Offset(n)
	return g
}

func (g *GormSelectQuery) Scan(ctx context.Context, dest interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("GormSelectQuery.Scan", r)
		}
	}()
	err = g.db.WithContext(ctx).Find(dest).Error
	if err != nil {
		logger.Error("GormSelectQuery.Scan failed: %v", err)
	}
	return err
}

func (g *GormSelectQuery) ScanModel(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("GormSelectQuery.ScanModel", r)
		}
	}()
	if g.db.Statement.Model == nil {
		return fmt.Errorf("ScanModel requires Model() to be set")
	}
	err = g.db.WithContext(ctx).Find(g.db.Statement.Model).Error
	if err != nil {
		logger.Error("GormSelectQuery.ScanModel failed: %v", err)
	}
	return err
}

func (g *GormSelectQuery) Count(ctx context.Context) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("GormSelectQuery.Count", r)
			count = 0
		}
	}()
	var count64 int64
	err = g.db.WithContext(ctx).Count(&count64).Error
	return int(count64), err
}

func (g *GormSelectQuery) Exists(ctx context.Context) (exists bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("GormSelectQuery.Exists", r)
			exists = false
		}
	}()
	var count int64
	err = g.db.WithContext(ctx).Limit(1).Count(&count).Error
	return count > 0, err
}

// GormDeleteQuery implements common.DeleteQuery on top of *gorm.DB.
type GormDeleteQuery struct {
	db    *gorm.DB
	model interface{}
}

func (g *GormDeleteQuery) Model(model interface{}) common.DeleteQuery {
	g.model = model
	g.db = g.db.Model(model)
	return g
}

func (g *GormDeleteQuery) Table(table string) common.DeleteQuery {
	g.db = g.db.Table(table)
	return g
}

func (g *GormDeleteQuery) Where(cond string, args ...interface{}) common.DeleteQuery {
	g.db = g.db.Where(cond, args...)
	return g
}

func (g *GormDeleteQuery) Exec(ctx context.Context) (res common.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logger.HandlePanic("GormDeleteQuery.Exec", r)
		}
	}()
	result := g.db.WithContext(ctx).Delete(g.model)
	if result.Error != nil {
		logger.Error("GormDeleteQuery.Exec failed: %v", result.Error)
	}
	return &GormResult{result: result}, result.Error
}

// GormResult implements common.Result.
type GormResult struct {
	result *gorm.DB
}

func (g *GormResult) RowsAffected() int64 {
	return g.result.RowsAffected
}

func (g *GormResult) LastInsertId() (int64, error) {
	return 0, fmt.Errorf("last insert id not supported by gorm adapter")
}
