package executor

import (
	"context"
	"time"

	"github.com/pmcfadin/cqlite-sub003/internal/query/planner"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/reader"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/schema"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/value"
)

// Executor runs a planner.Plan against one SSTable reader, translating
// each typed Step into an in-memory transform over execRow slices.
type Executor struct {
	Reader *reader.SSTableReader
	Schema *schema.TableSchema

	columnPos      columnPositions
	partitionKinds []value.Kind
	clusterKinds   []value.Kind
}

// New builds an Executor bound to one reader and schema. A fresh Executor
// should be built per query target; it carries no mutable state between
// Execute calls.
func New(r *reader.SSTableReader, s *schema.TableSchema) *Executor {
	return &Executor{
		Reader:         r,
		Schema:         s,
		columnPos:      buildColumnPositions(s),
		partitionKinds: partitionKinds(s),
		clusterKinds:   clusteringKinds(s),
	}
}

// Execute drives plan.Steps to completion in order, threading the pipeline's
// row set through each stage (spec.md §4.11's Scan/Filter/Aggregate/Sort/
// Limit/Project sequence) and checking ctx at every step boundary so a
// caller-supplied deadline aborts a long-running query promptly.
func (e *Executor) Execute(ctx context.Context, plan *planner.Plan) (*QueryResult, error) {
	start := time.Now()
	var rows []execRow
	var warnings []string

	for _, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return nil, &errs.Timeout{}
		}

		switch {
		case step.Scan != nil:
			scanned, err := e.runScan(step.Scan)
			if err != nil {
				return nil, err
			}
			rows = scanned

		case step.Filter != nil:
			filtered, err := e.runFilter(ctx, rows, step.Filter)
			if err != nil {
				return nil, err
			}
			rows = filtered

		case step.Aggregate != nil:
			aggregated, err := e.runAggregate(rows, step.Aggregate, &warnings)
			if err != nil {
				return nil, err
			}
			rows = aggregated

		case step.Sort != nil:
			rows = e.runSort(rows, step.Sort)

		case step.Limit != nil:
			if step.Limit.N >= 0 && step.Limit.N < len(rows) {
				rows = rows[:step.Limit.N]
			}

		case step.Project != nil:
			cols, outRows := e.runProject(rows, step.Project)
			return &QueryResult{
				Columns:         cols,
				Rows:            outRows,
				RowCount:        len(outRows),
				ExecutionTimeMs: time.Since(start).Milliseconds(),
				Warnings:        warnings,
			}, nil
		}
	}

	return &QueryResult{ExecutionTimeMs: time.Since(start).Milliseconds(), Warnings: warnings}, nil
}
