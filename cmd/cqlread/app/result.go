package app

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pmcfadin/cqlite-sub003/internal/query/executor"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/value"
)

// writeResult renders a QueryResult in the requested format. "table" and
// "csv"/"json" are spec.md §6's documented formats; anything else is a
// usage error.
func writeResult(w io.Writer, result *executor.QueryResult, format string) error {
	switch strings.ToLower(format) {
	case "", "table":
		return writeTable(w, result)
	case "json":
		return writeJSONResult(w, result)
	case "csv":
		return writeCSV(w, result)
	default:
		return &usageError{fmt.Errorf("unknown output format %q (want table, json, or csv)", format)}
	}
}

func writeTable(w io.Writer, result *executor.QueryResult) error {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	names := make([]string, len(result.Columns))
	for i, c := range result.Columns {
		names[i] = c.Name
	}
	fmt.Fprintln(tw, strings.Join(names, "\t"))
	for _, row := range result.Rows {
		cells := make([]string, len(names))
		for i, n := range names {
			cells[i] = cellText(row[n])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("app: write table output: %w", err)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintln(w, "warning:", warning)
	}
	return nil
}

func writeCSV(w io.Writer, result *executor.QueryResult) error {
	cw := csv.NewWriter(w)
	names := make([]string, len(result.Columns))
	for i, c := range result.Columns {
		names[i] = c.Name
	}
	if err := cw.Write(names); err != nil {
		return fmt.Errorf("app: write csv header: %w", err)
	}
	for _, row := range result.Rows {
		cells := make([]string, len(names))
		for i, n := range names {
			cells[i] = cellText(row[n])
		}
		if err := cw.Write(cells); err != nil {
			return fmt.Errorf("app: write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// jsonResult mirrors executor.QueryResult's shape but with cells rendered
// as plain JSON-friendly values rather than the internal Value union.
type jsonResult struct {
	Columns         []string                 `json:"columns"`
	Rows            []map[string]interface{} `json:"rows"`
	RowCount        int                      `json:"row_count"`
	ExecutionTimeMs int64                    `json:"execution_time_ms"`
	Warnings        []string                 `json:"warnings,omitempty"`
}

func writeJSONResult(w io.Writer, result *executor.QueryResult) error {
	names := make([]string, len(result.Columns))
	for i, c := range result.Columns {
		names[i] = c.Name
	}
	out := jsonResult{
		Columns:         names,
		RowCount:        result.RowCount,
		ExecutionTimeMs: result.ExecutionTimeMs,
		Warnings:        result.Warnings,
	}
	for _, row := range result.Rows {
		m := make(map[string]interface{}, len(names))
		for _, n := range names {
			m[n] = cellJSON(row[n])
		}
		out.Rows = append(out.Rows, m)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("app: encode json result: %w", err)
	}
	return nil
}

func cellText(v value.Value) string {
	if v.Null {
		return "null"
	}
	switch v.Kind {
	case value.KindBool:
		return strconv.FormatBool(v.Bool)
	case value.KindFloat:
		return strconv.FormatFloat(float64(v.Float32), 'g', -1, 32)
	case value.KindDouble:
		return strconv.FormatFloat(v.Float64, 'g', -1, 64)
	case value.KindAscii, value.KindText:
		return v.Text
	case value.KindBlob, value.KindInet:
		return fmt.Sprintf("%x", v.Blob)
	case value.KindUUID, value.KindTimeUUID:
		return fmt.Sprintf("%x-%x-%x-%x-%x", v.UUID[0:4], v.UUID[4:6], v.UUID[6:8], v.UUID[8:10], v.UUID[10:16])
	case value.KindTimestamp, value.KindDate, value.KindTime:
		return strconv.FormatInt(v.Micros, 10)
	case value.KindDecimal:
		if v.Decimal.Degraded {
			return strconv.FormatFloat(v.Decimal.AsFloat, 'g', -1, 64)
		}
		return fmt.Sprintf("%de%d", v.Decimal.Unscaled, -v.Decimal.Scale)
	default:
		return strconv.FormatInt(v.Int64, 10)
	}
}

func cellJSON(v value.Value) interface{} {
	if v.Null {
		return nil
	}
	switch v.Kind {
	case value.KindBool:
		return v.Bool
	case value.KindFloat:
		return float64(v.Float32)
	case value.KindDouble:
		return v.Float64
	case value.KindAscii, value.KindText:
		return v.Text
	default:
		return cellText(v)
	}
}
