package executor

import (
	"github.com/pmcfadin/cqlite-sub003/internal/query/ast"
	"github.com/pmcfadin/cqlite-sub003/internal/query/planner"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/reader"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/value"
)

func (e *Executor) runScan(scan *planner.ScanStep) ([]execRow, error) {
	switch scan.Path {
	case planner.TableScan:
		return e.scanTable()
	default:
		return e.scanPartitions(scan)
	}
}

// scanPartitions drives reader.IteratePartition for PointLookup and
// RangeScan: both resolve to one or more known partitions, within which
// the clustering predicates (equality, IN, or a bounded range) are applied
// in memory against the decoded clustering key (spec.md §4.11's "Scan step
// drives the SSTable reader according to the access path").
func (e *Executor) scanPartitions(scan *planner.ScanStep) ([]execRow, error) {
	var out []execRow
	for _, tuple := range scan.PartitionKeyTuples {
		keyBytes := reader.EncodeKeyTuple(tuple)
		rows, err := e.Reader.IteratePartition(keyBytes)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			ck, err := reader.DecodeKeyTuple(row.ClusteringPrefix, e.clusterKinds)
			if err != nil {
				return nil, err
			}
			if !e.matchesClusteringPredicates(ck, scan.ClusteringPredicates) {
				continue
			}
			out = append(out, execRow{partitionKey: tuple, clusteringKey: ck, cells: row.Cells})
		}
	}
	return out, nil
}

// scanTable drives a full, unbounded RangeScan (spec.md §4.10's TableScan
// access path) — the reader's own RangeScan(nil, nil, 0) already walks the
// full partition index in order, so no separate reader operation is
// needed.
func (e *Executor) scanTable() ([]execRow, error) {
	partitions, err := e.Reader.RangeScan(nil, nil, 0)
	if err != nil {
		return nil, err
	}
	var out []execRow
	for _, p := range partitions {
		pk, err := reader.DecodeKeyTuple(p.Key, e.partitionKinds)
		if err != nil {
			return nil, err
		}
		for _, row := range p.Rows {
			ck, err := reader.DecodeKeyTuple(row.ClusteringPrefix, e.clusterKinds)
			if err != nil {
				return nil, err
			}
			out = append(out, execRow{partitionKey: pk, clusteringKey: ck, cells: row.Cells})
		}
	}
	return out, nil
}

func (e *Executor) matchesClusteringPredicates(ck []value.Value, preds []planner.ClassifiedPredicate) bool {
	for _, cp := range preds {
		pos, ok := e.columnPos.clustering[cp.Column]
		if !ok || pos >= len(ck) {
			return false
		}
		v := ck[pos]
		switch cp.Class {
		case planner.ClusteringEq:
			if value.Compare(v, cp.Values[0]) != 0 {
				return false
			}
		case planner.ClusteringIn:
			if !containsValue(cp.Values, v) {
				return false
			}
		case planner.ClusteringRange:
			if !matchesRange(v, cp) {
				return false
			}
		}
	}
	return true
}

func containsValue(set []value.Value, v value.Value) bool {
	for _, want := range set {
		if value.Compare(v, want) == 0 {
			return true
		}
	}
	return false
}

func matchesRange(v value.Value, cp planner.ClassifiedPredicate) bool {
	switch cp.Cmp.Op {
	case ast.OpLt:
		return value.Compare(v, cp.Values[0]) < 0
	case ast.OpLe:
		return value.Compare(v, cp.Values[0]) <= 0
	case ast.OpGt:
		return value.Compare(v, cp.Values[0]) > 0
	case ast.OpGe:
		return value.Compare(v, cp.Values[0]) >= 0
	case ast.OpBetween:
		return value.Compare(v, cp.Values[0]) >= 0 && value.Compare(v, cp.Values[1]) <= 0
	default:
		return true
	}
}
