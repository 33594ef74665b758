package listspec

import (
	"strings"

	"github.com/SecondBureau/adminsgrid/pkg/fieldspec"
)

// CompiledCondition is a linearized predicate: a boolean SQL fragment using
// positional placeholders plus the bind values in matching order. A zero
// value is the identity condition (no WHERE clause).
type CompiledCondition struct {
	Fragment string
	Values   []interface{}
}

// Empty reports whether the condition contributes no predicate.
func (c CompiledCondition) Empty() bool {
	return c.Fragment == ""
}

// PlaceholderCount returns the number of positional placeholders in the
// fragment. It must always equal len(Values); a mismatch is a defect, never
// the product of request input.
func (c CompiledCondition) PlaceholderCount() int {
	return strings.Count(c.Fragment, "?")
}

// predicateGroup is one node of the predicate tree: statements joined by a
// single boolean operator. Linearization happens once, at the end of
// compilation, so fragment text and value order can never drift apart.
type predicateGroup struct {
	op    string
	parts []Statement
}

func (g *predicateGroup) add(s *Statement) {
	if s != nil {
		g.parts = append(g.parts, *s)
	}
}

func (g *predicateGroup) empty() bool {
	return len(g.parts) == 0
}

// linearize flattens the group to a single statement. A single-part group
// collapses to its part; larger groups are parenthesized.
func (g *predicateGroup) linearize() *Statement {
	switch len(g.parts) {
	case 0:
		return nil
	case 1:
		s := g.parts[0]
		return &s
	}
	fragments := make([]string, len(g.parts))
	values := make([]interface{}, 0, len(g.parts))
	for i, p := range g.parts {
		fragments[i] = p.Fragment
		values = append(values, p.Values...)
	}
	return &Statement{
		Fragment: "(" + strings.Join(fragments, " "+g.op+" ") + ")",
		Values:   values,
	}
}

// ConditionCompiler turns a free-text query plus a structured filter map
// into one CompiledCondition.
type ConditionCompiler struct {
	statements *StatementBuilder
}

// NewConditionCompiler builds a compiler around the given statement builder.
func NewConditionCompiler(statements *StatementBuilder) *ConditionCompiler {
	return &ConditionCompiler{statements: statements}
}

// Compile walks every queryable field for the free-text query and every
// filterable field present in the filter collection. Free-text matches on
// any search column suffice, so that whole phase is one OR group. Each
// field's filter entries OR together; distinct fields AND together; the two
// phases AND together. Unusable clauses are dropped silently and an
// all-empty input compiles to the identity condition.
func (c *ConditionCompiler) Compile(entity *fieldspec.Entity, freeText string, filters Filters) CompiledCondition {
	root := predicateGroup{op: "AND"}

	if freeText != "" {
		query := predicateGroup{op: "OR"}
		for _, field := range entity.QueryableFields() {
			for _, col := range entity.SearchColumnsFor(field) {
				query.add(c.statements.Build(col.Column, col.Kind, freeText, OpDefault))
			}
		}
		root.add(query.linearize())
	}

	for _, ff := range filters {
		field, ok := entity.FilterableField(ff.Field)
		if !ok {
			continue
		}
		group := predicateGroup{op: "OR"}
		for _, entry := range ff.Entries {
			if entry.Disabled {
				continue
			}
			operator := entry.Operator
			if operator == "" {
				operator = OpDefault
			}
			for _, col := range entity.SearchColumnsFor(field) {
				group.add(c.statements.Build(col.Column, col.Kind, entry.Value, operator))
			}
		}
		root.add(group.linearize())
	}

	if root.empty() {
		return CompiledCondition{}
	}

	// The AND of the phase groups is the top level of the WHERE clause, so
	// it needs no outer parentheses of its own.
	fragments := make([]string, len(root.parts))
	values := make([]interface{}, 0, len(root.parts))
	for i, p := range root.parts {
		fragments[i] = p.Fragment
		values = append(values, p.Values...)
	}
	return CompiledCondition{
		Fragment: strings.Join(fragments, " AND "),
		Values:   values,
	}
}
