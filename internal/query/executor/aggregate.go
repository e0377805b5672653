package executor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pmcfadin/cqlite-sub003/internal/query/ast"
	"github.com/pmcfadin/cqlite-sub003/internal/query/planner"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/value"
)

// accumulator holds one group's running state for one aggregate
// expression. count/sum/sumSq mirror spec.md §4.11's accumulator list;
// sumSq is retained for parity with that list even though the grammar
// (spec.md §4.9) exposes no variance function to read it back out.
type accumulator struct {
	count int64
	sum   float64
	sumSq float64

	usesDecimal bool
	decimalSum  decimal.Decimal

	hasMinMax bool
	min, max  value.Value

	distinct map[string]struct{}
}

func (a *accumulator) seenDistinct(v value.Value) bool {
	if a.distinct == nil {
		a.distinct = make(map[string]struct{})
	}
	key := string(valueKey(v))
	if _, ok := a.distinct[key]; ok {
		return true
	}
	a.distinct[key] = struct{}{}
	return false
}

func (a *accumulator) addNumeric(v value.Value) {
	if v.Kind == value.KindDecimal {
		a.usesDecimal = true
		a.decimalSum = a.decimalSum.Add(decimalFromValue(v.Decimal))
		return
	}
	f := floatOf(v)
	a.sum += f
	a.sumSq += f * f
}

func (a *accumulator) observeMinMax(v value.Value) {
	if !a.hasMinMax {
		a.min, a.max, a.hasMinMax = v, v, true
		return
	}
	if value.Compare(v, a.min) < 0 {
		a.min = v
	}
	if value.Compare(v, a.max) > 0 {
		a.max = v
	}
}

func floatOf(v value.Value) float64 {
	switch v.Kind {
	case value.KindFloat:
		return float64(v.Float32)
	case value.KindDouble:
		return v.Float64
	default:
		return float64(v.Int64)
	}
}

func decimalFromValue(d value.DecimalValue) decimal.Decimal {
	if d.Degraded {
		return decimal.NewFromFloat(d.AsFloat)
	}
	return decimal.New(d.Unscaled, -d.Scale)
}

func decimalToValue(d decimal.Decimal) value.DecimalValue {
	coeff := d.Coefficient()
	scale := -d.Exponent()
	if coeff.IsInt64() {
		return value.DecimalValue{Scale: scale, Unscaled: coeff.Int64()}
	}
	f, _ := d.Float64()
	return value.DecimalValue{Scale: scale, Degraded: true, AsFloat: f}
}

// valueKey returns a byte string that uniquely identifies v's contents,
// used as a map key for GROUP BY grouping and DISTINCT deduplication.
func valueKey(v value.Value) []byte {
	if v.Null {
		return []byte{0}
	}
	return append([]byte{1}, value.EncodePrimitiveOrComplex(v.Kind, v)...)
}

func unwrapAlias(e ast.Expr) ast.Expr {
	if e.Kind == ast.ExprAlias && e.Inner != nil {
		return *e.Inner
	}
	return e
}

// exprOutputName is the output column name for a projection expression:
// its alias if aliased, its bare column name, or the lowercased aggregate
// function name (matching spec.md §8's `{"count": 2}` example output).
func exprOutputName(e ast.Expr) string {
	switch e.Kind {
	case ast.ExprAlias:
		return e.Alias
	case ast.ExprColumn:
		return e.Column
	case ast.ExprAggregate:
		return strings.ToLower(e.AggFn.String())
	default:
		return "?column?"
	}
}

type groupState struct {
	groupValues []value.Value
	accs        []*accumulator
}

// runAggregate folds rows into per-group accumulators and emits one
// execRow per group (spec.md §4.11's Aggregation step). The Strategy field
// is not read here; sort-grouping and hash-grouping produce identical
// results since a Go map already gives O(1) group lookup regardless of row
// arrival order.
func (e *Executor) runAggregate(rows []execRow, step *planner.AggregateStep, warnings *[]string) ([]execRow, error) {
	groups := make(map[string]*groupState)
	var order []string

	for _, row := range rows {
		groupVals := make([]value.Value, len(step.GroupBy))
		var keyParts [][]byte
		for i, col := range step.GroupBy {
			v, ok := e.getValue(row, col)
			if !ok {
				v = value.NullValue(value.KindText)
			}
			groupVals[i] = v
			keyParts = append(keyParts, valueKey(v))
		}
		key := string(bytes.Join(keyParts, []byte{0xff}))

		gs, ok := groups[key]
		if !ok {
			gs = &groupState{groupValues: groupVals, accs: make([]*accumulator, len(step.Aggregates))}
			for i := range gs.accs {
				gs.accs[i] = &accumulator{}
			}
			groups[key] = gs
			order = append(order, key)
		}

		for i, aggExpr := range step.Aggregates {
			if err := e.accumulate(gs.accs[i], unwrapAlias(aggExpr), row); err != nil {
				return nil, err
			}
		}
	}

	if len(groups) == 0 && len(step.GroupBy) == 0 {
		gs := &groupState{accs: make([]*accumulator, len(step.Aggregates))}
		for i := range gs.accs {
			gs.accs[i] = &accumulator{}
		}
		groups[""] = gs
		order = append(order, "")
	}

	out := make([]execRow, 0, len(groups))
	for _, key := range order {
		gs := groups[key]
		cells := make(map[string]value.Value, len(step.Aggregates)+len(step.GroupBy))
		for i, col := range step.GroupBy {
			cells[col] = gs.groupValues[i]
		}
		for i, aggExpr := range step.Aggregates {
			name, v, degraded := finalizeAggregate(unwrapAlias(aggExpr), gs.accs[i])
			cells[name] = v
			if degraded {
				*warnings = append(*warnings, fmt.Sprintf("%s lost decimal precision in aggregation", name))
			}
		}
		out = append(out, execRow{cells: cells})
	}
	return out, nil
}

func (e *Executor) accumulate(acc *accumulator, expr ast.Expr, row execRow) error {
	if expr.AggFn == ast.AggCount && expr.AggArg == nil {
		acc.count++
		return nil
	}
	if expr.AggArg == nil {
		return nil
	}
	v, ok := e.getValue(row, expr.AggArg.Column)
	if !ok || v.Null {
		return nil
	}
	if expr.AggDistinct && acc.seenDistinct(v) {
		return nil
	}
	switch expr.AggFn {
	case ast.AggCount:
		acc.count++
	case ast.AggSum, ast.AggAvg:
		acc.count++
		acc.addNumeric(v)
	case ast.AggMin, ast.AggMax:
		acc.observeMinMax(v)
	}
	return nil
}

func finalizeAggregate(expr ast.Expr, acc *accumulator) (name string, v value.Value, degraded bool) {
	name = strings.ToLower(expr.AggFn.String())
	switch expr.AggFn {
	case ast.AggCount:
		return name, value.Value{Kind: value.KindBigInt, Int64: acc.count}, false
	case ast.AggSum:
		if acc.usesDecimal {
			dv := decimalToValue(acc.decimalSum)
			return name, value.Value{Kind: value.KindDecimal, Decimal: dv}, dv.Degraded
		}
		return name, value.Value{Kind: value.KindDouble, Float64: acc.sum}, false
	case ast.AggAvg:
		if acc.count == 0 {
			return name, value.NullValue(value.KindDouble), false
		}
		if acc.usesDecimal {
			avg := acc.decimalSum.Div(decimal.NewFromInt(acc.count))
			dv := decimalToValue(avg)
			return name, value.Value{Kind: value.KindDecimal, Decimal: dv}, dv.Degraded
		}
		return name, value.Value{Kind: value.KindDouble, Float64: acc.sum / float64(acc.count)}, false
	case ast.AggMin:
		if !acc.hasMinMax {
			return name, value.NullValue(value.KindText), false
		}
		return name, acc.min, false
	case ast.AggMax:
		if !acc.hasMinMax {
			return name, value.NullValue(value.KindText), false
		}
		return name, acc.max, false
	default:
		return name, value.Value{}, false
	}
}
