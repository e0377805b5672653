package executor

import (
	"context"

	"github.com/pmcfadin/cqlite-sub003/internal/query/ast"
	"github.com/pmcfadin/cqlite-sub003/internal/query/planner"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/value"
)

// runFilter evaluates residual predicates row by row, checking the
// deadline once per row per spec.md §5's cancellation rule.
func (e *Executor) runFilter(ctx context.Context, rows []execRow, f *planner.FilterStep) ([]execRow, error) {
	out := make([]execRow, 0, len(rows))
	for _, row := range rows {
		if ctx.Err() != nil {
			return nil, &errs.Timeout{}
		}
		ok, err := e.matchesResidual(row, f.Residual)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (e *Executor) matchesResidual(row execRow, preds []planner.ClassifiedPredicate) (bool, error) {
	for _, cp := range preds {
		v, ok := e.getValue(row, cp.Column)
		if !ok || v.Null {
			return false, nil
		}
		match, err := matchesCmp(v, cp.Cmp)
		if err != nil {
			return false, err
		}
		if !match {
			return false, nil
		}
	}
	return true, nil
}

func matchesCmp(v value.Value, cmp ast.Cmp) (bool, error) {
	switch cmp.Op {
	case ast.OpEq:
		return value.Compare(v, cmpValue(v.Kind, cmp.Value)) == 0, nil
	case ast.OpNe:
		return value.Compare(v, cmpValue(v.Kind, cmp.Value)) != 0, nil
	case ast.OpLt:
		return value.Compare(v, cmpValue(v.Kind, cmp.Value)) < 0, nil
	case ast.OpLe:
		return value.Compare(v, cmpValue(v.Kind, cmp.Value)) <= 0, nil
	case ast.OpGt:
		return value.Compare(v, cmpValue(v.Kind, cmp.Value)) > 0, nil
	case ast.OpGe:
		return value.Compare(v, cmpValue(v.Kind, cmp.Value)) >= 0, nil
	case ast.OpIn:
		for _, lit := range cmp.Values {
			if value.Compare(v, cmpValue(v.Kind, lit)) == 0 {
				return true, nil
			}
		}
		return false, nil
	case ast.OpBetween:
		lo := cmpValue(v.Kind, cmp.Low)
		hi := cmpValue(v.Kind, cmp.High)
		return value.Compare(v, lo) >= 0 && value.Compare(v, hi) <= 0, nil
	default:
		return false, &errs.QuerySemantic{Message: "unsupported comparison operator in residual filter"}
	}
}

// cmpValue converts a literal into a Value of the row's own column kind.
// Residual predicates are evaluated post-decode against an already-typed
// cell, so the literal is coerced to that kind rather than re-resolved
// against the schema a second time.
func cmpValue(kind value.Kind, lit ast.Literal) value.Value {
	switch lit.Kind {
	case ast.LitNull:
		return value.NullValue(kind)
	case ast.LitBool:
		return value.Value{Kind: kind, Bool: lit.Bool}
	case ast.LitInt:
		switch kind {
		case value.KindFloat:
			return value.Value{Kind: kind, Float32: float32(lit.Int)}
		case value.KindDouble:
			return value.Value{Kind: kind, Float64: float64(lit.Int)}
		case value.KindTimestamp, value.KindDate, value.KindTime:
			return value.Value{Kind: kind, Micros: lit.Int}
		default:
			return value.Value{Kind: kind, Int64: lit.Int}
		}
	case ast.LitFloat:
		if kind == value.KindFloat {
			return value.Value{Kind: kind, Float32: float32(lit.Flt)}
		}
		return value.Value{Kind: kind, Float64: lit.Flt}
	case ast.LitString:
		return value.Value{Kind: kind, Text: lit.Str}
	case ast.LitUUID:
		return value.Value{Kind: kind, UUID: lit.UUID}
	default:
		return value.Value{Kind: kind}
	}
}
