package planner

import (
	"fmt"

	"github.com/pmcfadin/cqlite-sub003/internal/query/ast"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/schema"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/stats"
)

// Planner turns a parsed SELECT into an ordered Plan against one table.
type Planner struct {
	Cost CostModel
}

// New returns a Planner using the specification's default cost model.
func New() *Planner {
	return &Planner{Cost: DefaultCostModel()}
}

// Plan builds the ordered step list for stmt against s, using st to inform
// the aggregation grouping-strategy choice.
func (p *Planner) Plan(stmt *ast.SelectStatement, s *schema.TableSchema, st *stats.Statistics) (*Plan, error) {
	if err := validateColumns(stmt, s); err != nil {
		return nil, err
	}

	classified, err := classifyPredicates(stmt.Where, s)
	if err != nil {
		return nil, err
	}

	path, partitionKeyClasses, clusteringRangeClass := selectAccessPath(classified, s)

	residual := residualOf(classified)
	if path == TableScan && len(residual) > 0 && !stmt.AllowFiltering {
		return nil, &errs.Unsupported{Feature: "ALLOW FILTERING required for a full table scan with filtering predicates"}
	}

	plan := &Plan{AllowFiltering: stmt.AllowFiltering}
	scan := buildScanStep(path, partitionKeyClasses, clusteringRangeClass, s)
	plan.Steps = append(plan.Steps, Step{Scan: scan})

	if len(residual) > 0 {
		plan.Steps = append(plan.Steps, Step{Filter: &FilterStep{Residual: residual}})
	}

	hasAggregate := stmtHasAggregate(stmt) || len(stmt.GroupBy) > 0
	if hasAggregate {
		strategy := p.groupStrategy(stmt, s, st, path)
		plan.Steps = append(plan.Steps, Step{Aggregate: &AggregateStep{
			GroupBy:    stmt.GroupBy,
			Strategy:   strategy,
			Aggregates: aggregateExprs(stmt.Projection),
		}})
	}

	if needsSortStep(stmt, s, path) {
		plan.Steps = append(plan.Steps, Step{Sort: &SortStep{Terms: stmt.OrderBy}})
	}

	if stmt.HasLimit {
		plan.Steps = append(plan.Steps, Step{Limit: &LimitStep{N: stmt.Limit}})
	}

	plan.Steps = append(plan.Steps, Step{Project: &ProjectStep{Exprs: stmt.Projection, Star: stmt.Star}})

	plan.EstimatedCost = p.estimateCost(plan, path, classified, st)
	return plan, nil
}

func validateColumns(stmt *ast.SelectStatement, s *schema.TableSchema) error {
	check := func(name string) error {
		if s.ColumnByName(name) == nil {
			return &errs.QuerySemantic{Message: fmt.Sprintf("unknown column %q", name)}
		}
		return nil
	}
	for _, e := range stmt.Projection {
		if err := checkExprColumns(e, s); err != nil {
			return err
		}
	}
	for _, c := range stmt.Where {
		if err := check(c.Column); err != nil {
			return err
		}
	}
	for _, g := range stmt.GroupBy {
		if err := check(g); err != nil {
			return err
		}
	}
	for _, o := range stmt.OrderBy {
		if err := check(o.Column); err != nil {
			return err
		}
	}
	return nil
}

func checkExprColumns(e ast.Expr, s *schema.TableSchema) error {
	switch e.Kind {
	case ast.ExprColumn:
		if s.ColumnByName(e.Column) == nil {
			return &errs.QuerySemantic{Message: fmt.Sprintf("unknown column %q", e.Column)}
		}
	case ast.ExprAggregate:
		if e.AggArg != nil {
			return checkExprColumns(*e.AggArg, s)
		}
	case ast.ExprAlias:
		if e.Inner != nil {
			return checkExprColumns(*e.Inner, s)
		}
	}
	return nil
}

func residualOf(classified []ClassifiedPredicate) []ClassifiedPredicate {
	var out []ClassifiedPredicate
	for _, c := range classified {
		if c.Class == Residual {
			out = append(out, c)
		}
	}
	return out
}

func stmtHasAggregate(stmt *ast.SelectStatement) bool {
	for _, e := range stmt.Projection {
		if exprIsAggregate(e) {
			return true
		}
	}
	return false
}

func exprIsAggregate(e ast.Expr) bool {
	switch e.Kind {
	case ast.ExprAggregate:
		return true
	case ast.ExprAlias:
		return e.Inner != nil && exprIsAggregate(*e.Inner)
	default:
		return false
	}
}

func aggregateExprs(projection []ast.Expr) []ast.Expr {
	var out []ast.Expr
	for _, e := range projection {
		if exprIsAggregate(e) {
			out = append(out, e)
		}
	}
	return out
}

// needsSortStep implements spec.md §4.10 rule 5: a Sort step is added only
// when ORDER BY cannot be satisfied by the natural clustering order.
func needsSortStep(stmt *ast.SelectStatement, s *schema.TableSchema, path AccessPath) bool {
	if len(stmt.OrderBy) == 0 {
		return false
	}
	if path == TableScan {
		return true
	}
	clustering := s.ClusteringKeyColumns()
	if len(stmt.OrderBy) > len(clustering) {
		return true
	}
	for i, term := range stmt.OrderBy {
		cc := clustering[i]
		if term.Column != cc.Name {
			return true
		}
		wantDesc := term.Direction == ast.OrderDesc
		isDesc := cc.Direction == schema.Desc
		if wantDesc != isDesc {
			return true
		}
	}
	return false
}

func (p *Planner) groupStrategy(stmt *ast.SelectStatement, s *schema.TableSchema, st *stats.Statistics, path AccessPath) GroupStrategy {
	if len(stmt.GroupBy) == 0 {
		return NoGrouping
	}
	sortCompatible := path != TableScan && isClusteringPrefix(stmt.GroupBy, s)
	estimatedGroups := estimateGroupCount(stmt.GroupBy, st, p.Cost)
	if estimatedGroups > p.Cost.HashGroupThreshold {
		return HashGrouping
	}
	if sortCompatible {
		return SortGrouping
	}
	return HashGrouping
}

func isClusteringPrefix(groupBy []string, s *schema.TableSchema) bool {
	clustering := s.ClusteringKeyColumns()
	if len(groupBy) > len(clustering) {
		return false
	}
	for i, col := range groupBy {
		if clustering[i].Name != col {
			return false
		}
	}
	return true
}

func estimateGroupCount(groupBy []string, st *stats.Statistics, cost CostModel) int64 {
	totalRows := int64(1000000)
	if st != nil && st.Row.TotalRows > 0 {
		totalRows = st.Row.TotalRows
	}
	estimate := float64(totalRows)
	for range groupBy {
		estimate *= cost.EqSelectivity
	}
	if estimate < 1 {
		estimate = 1
	}
	return int64(estimate)
}

func (p *Planner) estimateCost(plan *Plan, path AccessPath, classified []ClassifiedPredicate, st *stats.Statistics) float64 {
	totalRows := float64(1000000)
	if st != nil && st.Row.TotalRows > 0 {
		totalRows = float64(st.Row.TotalRows)
	}

	var cost float64
	switch path {
	case PointLookup:
		cost += p.Cost.IndexLookupCost
	case RangeScan:
		cost += p.Cost.IndexLookupCost
		cost += totalRows * p.Cost.RangeSelectivity * p.Cost.RowScanCost
	case TableScan:
		cost += totalRows * p.Cost.RowScanCost
	}

	rowsAfterFilter := totalRows
	for _, c := range classified {
		rowsAfterFilter *= selectivityOf(c, p.Cost)
	}

	for _, step := range plan.Steps {
		switch {
		case step.Aggregate != nil:
			cost += rowsAfterFilter * p.Cost.AggregateCostPerRow
		case step.Sort != nil:
			cost += rowsAfterFilter * p.Cost.SortCostPerRow
		}
	}
	return cost
}

func selectivityOf(c ClassifiedPredicate, cost CostModel) float64 {
	switch c.Cmp.Op {
	case ast.OpEq:
		return cost.EqSelectivity
	case ast.OpIn:
		return cost.InSelectivity(len(c.Cmp.Values))
	case ast.OpNe:
		return cost.NotEqSelectivity
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpBetween:
		return cost.RangeSelectivity
	default:
		return 1.0
	}
}
