package executor

import (
	"github.com/pmcfadin/cqlite-sub003/internal/query/ast"
	"github.com/pmcfadin/cqlite-sub003/internal/query/planner"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/value"
)

// runProject evaluates the final projection list against each row,
// producing the output column list and row set (spec.md §4.11's Project
// step, the pipeline's terminal stage).
func (e *Executor) runProject(rows []execRow, p *planner.ProjectStep) ([]ColumnInfo, []Row) {
	if p.Star {
		return e.projectStar(rows)
	}

	cols := make([]ColumnInfo, len(p.Exprs))
	for i, expr := range p.Exprs {
		cols[i] = ColumnInfo{Name: exprOutputName(expr)}
	}

	out := make([]Row, len(rows))
	for i, row := range rows {
		r := make(Row, len(p.Exprs))
		for _, expr := range p.Exprs {
			name, v := e.evalProjectExpr(row, expr)
			r[name] = v
		}
		out[i] = r
	}
	for i := range cols {
		if v, ok := firstNonNilKind(out, cols[i].Name); ok {
			cols[i].Kind = v
		}
	}
	return cols, out
}

func firstNonNilKind(rows []Row, name string) (value.Kind, bool) {
	for _, r := range rows {
		if v, ok := r[name]; ok {
			return v.Kind, true
		}
	}
	return 0, false
}

func (e *Executor) projectStar(rows []execRow) ([]ColumnInfo, []Row) {
	var names []string
	for _, c := range e.Schema.Partition {
		names = append(names, c.Name)
	}
	for _, c := range e.Schema.Clustering {
		names = append(names, c.Name)
	}
	for _, c := range e.Schema.Regular {
		names = append(names, c.Name)
	}

	cols := make([]ColumnInfo, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		cols = append(cols, ColumnInfo{Name: n})
	}

	out := make([]Row, len(rows))
	for i, row := range rows {
		r := make(Row, len(names))
		for _, n := range names {
			if v, ok := e.getValue(row, n); ok {
				r[n] = v
			}
		}
		out[i] = r
	}
	for i, c := range cols {
		if v, ok := firstNonNilKind(out, c.Name); ok {
			cols[i].Kind = v
		}
	}
	return cols, out
}

// evalProjectExpr evaluates one projection expression against an already
// scanned (and possibly aggregated) row. Aggregate expressions are never
// recomputed here: the Aggregate step already folded them into the row's
// cell map under their output name.
func (e *Executor) evalProjectExpr(row execRow, expr ast.Expr) (string, value.Value) {
	name := exprOutputName(expr)
	switch expr.Kind {
	case ast.ExprAlias:
		if expr.Inner != nil {
			_, v := e.evalProjectExpr(row, *expr.Inner)
			return name, v
		}
		return name, value.Value{}
	case ast.ExprAggregate:
		if v, ok := row.cells[name]; ok {
			return name, v
		}
		return name, value.NullValue(value.KindText)
	case ast.ExprColumn:
		if v, ok := e.getValue(row, expr.Column); ok {
			return name, v
		}
		return name, value.NullValue(value.KindText)
	case ast.ExprLiteral:
		return name, literalToRuntimeValue(expr.Literal)
	default:
		return name, value.NullValue(value.KindText)
	}
}

func literalToRuntimeValue(lit ast.Literal) value.Value {
	switch lit.Kind {
	case ast.LitNull:
		return value.NullValue(value.KindText)
	case ast.LitBool:
		return value.Value{Kind: value.KindBool, Bool: lit.Bool}
	case ast.LitInt:
		return value.Value{Kind: value.KindBigInt, Int64: lit.Int}
	case ast.LitFloat:
		return value.Value{Kind: value.KindDouble, Float64: lit.Flt}
	case ast.LitString:
		return value.Value{Kind: value.KindText, Text: lit.Str}
	case ast.LitUUID:
		return value.Value{Kind: value.KindUUID, UUID: lit.UUID}
	default:
		return value.NullValue(value.KindText)
	}
}
