package listspec

import (
	"context"
	"fmt"
	"reflect"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/SecondBureau/adminsgrid/pkg/cache"
	"github.com/SecondBureau/adminsgrid/pkg/common"
	"github.com/SecondBureau/adminsgrid/pkg/fieldspec"
	"github.com/SecondBureau/adminsgrid/pkg/logger"
	"github.com/SecondBureau/adminsgrid/pkg/metrics"
)

// ListResult is the outcome of one list invocation: the rows (a pointer to
// a slice of the entity's model, or to []map[string]interface{} when no
// model is registered), the total matching count, and the resolved
// sort/condition metadata for the caller to render.
type ListResult struct {
	Rows     interface{}
	Total    int
	Count    int
	Filtered bool
	Sort     ResolvedSort
	Page     int
	PageSize int
}

// Assembler merges compiled conditions, resolved sorts, association
// preloads, the authorization scope and pagination into executable
// queries. It holds no per-request state; every method is safe for
// concurrent use.
type Assembler struct {
	db       common.Database
	compiler *ConditionCompiler

	// Hooks, when set, fires BeforeScan with the fully assembled query
	// so callers can inspect or replace it.
	Hooks *HookRegistry

	// CacheTotals caches total counts keyed by the query shape. Only
	// unscoped queries are cached, a scope narrows the count per caller.
	CacheTotals   bool
	CacheTotalTTL time.Duration
}

// NewAssembler builds an assembler over the given database. The
// caseInsensitiveLike flag selects ILIKE for string matching.
func NewAssembler(db common.Database, caseInsensitiveLike bool) *Assembler {
	return &Assembler{
		db:            db,
		compiler:      NewConditionCompiler(NewStatementBuilder(caseInsensitiveLike)),
		CacheTotalTTL: 30 * time.Second,
	}
}

// Compiler exposes the condition compiler for callers that only need the
// predicate, such as export paths.
func (a *Assembler) Compiler() *ConditionCompiler { return a.compiler }

// List executes one list request. The explicit-ids path bypasses
// search, filter, sort and pagination entirely; everything else flows
// through condition compilation and sort resolution. The scope, when
// non-nil, is ANDed into every query issued here, count included.
func (a *Assembler) List(ctx context.Context, entity *fieldspec.Entity, req ListRequest, scope Scope) (*ListResult, error) {
	defer logger.CatchPanic("Assembler.List")

	if len(req.ExplicitIDs) > 0 {
		return a.listByIDs(ctx, entity, req.ExplicitIDs, scope)
	}

	condition := a.compiler.Compile(entity, req.FreeText, req.Filters)
	sort := ResolveSort(entity, req.SortField, req.SortReverse)

	result := &ListResult{
		Filtered: !condition.Empty(),
		Sort:     sort,
		Page:     req.Page,
		PageSize: entity.PageSize,
	}

	base := func() common.SelectQuery {
		q := a.baseQuery(entity, req.Compact)
		if !condition.Empty() {
			q = q.Where(condition.Fragment, condition.Values...)
		}
		if scope != nil {
			q = scope.Apply(q)
		}
		return q
	}

	total, err := a.countTotal(ctx, entity, base, condition, scope == nil)
	if err != nil {
		return nil, fmt.Errorf("counting %s: %w", entity.Name, err)
	}
	result.Total = total

	query := base().OrderExpr(sort.OrderExpr())
	if !req.All {
		page := req.Page
		if page < 1 {
			page = 1
		}
		query = query.Limit(entity.PageSize).Offset((page - 1) * entity.PageSize)
	}

	query, err = a.fireBeforeScan(ctx, entity, &req, query, condition, sort)
	if err != nil {
		return nil, err
	}

	rows := a.newRows(entity, req.Compact)
	if err := query.Scan(ctx, rows); err != nil {
		return nil, fmt.Errorf("listing %s: %w", entity.Name, err)
	}
	result.Rows = rows
	result.Count = sliceLen(rows)
	return result, nil
}

func (a *Assembler) fireBeforeScan(ctx context.Context, entity *fieldspec.Entity, req *ListRequest, query common.SelectQuery, condition CompiledCondition, sort ResolvedSort) (common.SelectQuery, error) {
	if a.Hooks == nil {
		return query, nil
	}
	hctx := &HookContext{
		Context:   ctx,
		Entity:    entity,
		Request:   req,
		Query:     query,
		Condition: condition,
		Sort:      sort,
		Tx:        a.db,
	}
	if err := a.Hooks.Execute(BeforeScan, hctx); err != nil {
		return nil, err
	}
	return hctx.Query, nil
}

// listByIDs selects exactly the given ids, scope intersected. An empty
// result is normal here, ids the scope excludes simply do not come back.
func (a *Assembler) listByIDs(ctx context.Context, entity *fieldspec.Entity, ids []string, scope Scope) (*ListResult, error) {
	fragment, args, err := sq.Eq{entity.Table + "." + entity.PrimaryKey: ids}.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building id selection for %s: %w", entity.Name, err)
	}
	query := a.baseQuery(entity, false).Where(fragment, args...)
	if scope != nil {
		query = scope.Apply(query)
	}
	query, err = a.fireBeforeScan(ctx, entity, &ListRequest{ExplicitIDs: ids}, query, CompiledCondition{}, ResolvedSort{})
	if err != nil {
		return nil, err
	}
	rows := a.newRows(entity, false)
	if err := query.Scan(ctx, rows); err != nil {
		return nil, fmt.Errorf("listing %s by id: %w", entity.Name, err)
	}
	count := sliceLen(rows)
	return &ListResult{Rows: rows, Total: count, Count: count}, nil
}

// BulkDestroy deletes the authorized subset of the given ids inside one
// transaction and reports which ids were destroyed. Ids the scope hides
// or that no longer exist count as not destroyed. An empty id list is a
// no-op, not an error.
func (a *Assembler) BulkDestroy(ctx context.Context, entity *fieldspec.Entity, ids []string, scope Scope) (*common.BulkResult, error) {
	defer logger.CatchPanic("Assembler.BulkDestroy")

	result := &common.BulkResult{}
	if len(ids) == 0 {
		return result, nil
	}

	pk := entity.Table + "." + entity.PrimaryKey
	fragment, args, err := sq.Eq{pk: ids}.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building id selection for %s: %w", entity.Name, err)
	}

	err = a.db.RunInTransaction(ctx, func(tx common.Database) error {
		query := tx.NewSelect().Table(entity.Table).ColumnExpr(pk).Where(fragment, args...)
		if scope != nil {
			query = scope.Apply(query)
		}
		var found []string
		if err := query.Scan(ctx, &found); err != nil {
			return fmt.Errorf("selecting ids: %w", err)
		}
		if len(found) == 0 {
			return nil
		}
		delFragment, delArgs, err := sq.Eq{entity.PrimaryKey: found}.ToSql()
		if err != nil {
			return fmt.Errorf("building delete: %w", err)
		}
		res, err := tx.NewDelete().Table(entity.Table).Where(delFragment, delArgs...).Exec(ctx)
		if err != nil {
			return fmt.Errorf("deleting: %w", err)
		}
		result.IDs = found
		result.Destroyed = int(res.RowsAffected())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bulk destroy %s: %w", entity.Name, err)
	}
	result.NotDestroyed = len(ids) - result.Destroyed
	logger.Info("Bulk destroyed %d/%d %s records", result.Destroyed, len(ids), entity.Name)
	return result, nil
}

func (a *Assembler) baseQuery(entity *fieldspec.Entity, compact bool) common.SelectQuery {
	if compact || entity.Model == nil {
		query := a.db.NewSelect().Table(entity.Table)
		if compact {
			query = query.Column(entity.PrimaryKey, entity.LabelColumn)
		}
		return query
	}
	query := a.db.NewSelect().Model(entity.Model)
	for _, relation := range entity.PreloadRelations() {
		query = query.Preload(relation)
	}
	return query
}

// countTotal runs the count query, going through the total cache when the
// query carries no scope and caching is enabled.
func (a *Assembler) countTotal(ctx context.Context, entity *fieldspec.Entity, base func() common.SelectQuery, condition CompiledCondition, unscoped bool) (int, error) {
	useCache := a.CacheTotals && unscoped
	var key string
	if useCache {
		key = cache.QueryTotalCacheKey(cache.BuildQueryCacheKey(struct {
			Table    string        `json:"table"`
			Fragment string        `json:"fragment"`
			Values   []interface{} `json:"values"`
		}{entity.Table, condition.Fragment, condition.Values}))
		var total int
		if err := cache.GetDefaultCache().Get(ctx, key, &total); err == nil {
			metrics.GetProvider().RecordCacheHit("query_total")
			logger.Debug("Total for %s served from cache: %d", entity.Name, total)
			return total, nil
		}
		metrics.GetProvider().RecordCacheMiss("query_total")
	}
	total, err := base().Count(ctx)
	if err != nil {
		return 0, err
	}
	if useCache {
		if err := cache.GetDefaultCache().Set(ctx, key, total, a.CacheTotalTTL); err != nil {
			logger.Debug("Caching total for %s failed: %v", entity.Name, err)
		}
	}
	return total, nil
}

// newRows allocates the scan destination: a pointer to a slice of the
// entity's model type, or to a map slice when no model is registered or
// a compact projection was asked for.
func (a *Assembler) newRows(entity *fieldspec.Entity, compact bool) interface{} {
	if compact || entity.Model == nil {
		return &[]map[string]interface{}{}
	}
	t := reflect.TypeOf(entity.Model)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return reflect.New(reflect.SliceOf(reflect.PointerTo(t))).Interface()
}

func sliceLen(rows interface{}) int {
	v := reflect.ValueOf(rows)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() == reflect.Slice {
		return v.Len()
	}
	return 0
}
