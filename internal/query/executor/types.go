// Package executor drives a planner.Plan to completion over one
// reader.SSTableReader, implementing the pull-style step pipeline of
// spec.md §4.11 as a sequence of in-memory stage transforms (scan, filter,
// aggregate, sort, limit, project).
package executor

import (
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/schema"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/value"
)

// ColumnInfo describes one output column.
type ColumnInfo struct {
	Name string
	Kind value.Kind
}

// Row is one output row, keyed by output column name (spec.md §6's
// `QueryResult.rows`).
type Row map[string]value.Value

// QueryResult is the full result of one execute call (spec.md §6).
type QueryResult struct {
	Columns         []ColumnInfo
	Rows            []Row
	RowCount        int
	ExecutionTimeMs int64
	Warnings        []string
}

// execRow is the pipeline's internal row representation: the partition and
// clustering key component values (decoded, so predicates/sort/group can
// compare them directly) plus the regular-column cell map.
type execRow struct {
	partitionKey  []value.Value
	clusteringKey []value.Value
	cells         map[string]value.Value
}

// columnPositions indexes a schema's partition and clustering column names
// to their tuple position, so execRow field lookups by name stay O(1).
type columnPositions struct {
	partition  map[string]int
	clustering map[string]int
}

func buildColumnPositions(s *schema.TableSchema) columnPositions {
	cp := columnPositions{
		partition:  make(map[string]int, len(s.PartitionKeyColumns())),
		clustering: make(map[string]int, len(s.ClusteringKeyColumns())),
	}
	for i, c := range s.PartitionKeyColumns() {
		cp.partition[c.Name] = i
	}
	for i, c := range s.ClusteringKeyColumns() {
		cp.clustering[c.Name] = i
	}
	return cp
}

// getValue resolves a column name against an execRow: partition key,
// clustering key, or regular cell, in that order.
func (e *Executor) getValue(row execRow, col string) (value.Value, bool) {
	if pos, ok := e.columnPos.partition[col]; ok && pos < len(row.partitionKey) {
		return row.partitionKey[pos], true
	}
	if pos, ok := e.columnPos.clustering[col]; ok && pos < len(row.clusteringKey) {
		return row.clusteringKey[pos], true
	}
	v, ok := row.cells[col]
	return v, ok
}

func partitionKinds(s *schema.TableSchema) []value.Kind {
	cols := s.PartitionKeyColumns()
	out := make([]value.Kind, len(cols))
	for i, c := range cols {
		out[i] = c.Type.Kind
	}
	return out
}

func clusteringKinds(s *schema.TableSchema) []value.Kind {
	cols := s.ClusteringKeyColumns()
	out := make([]value.Kind, len(cols))
	for i, c := range cols {
		out[i] = c.Type.Kind
	}
	return out
}
