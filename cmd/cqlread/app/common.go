// Package app wires cobra/viper into the thin cqlread CLI: read, schema,
// and stats subcommands driving the reader/planner/executor stack
// (spec.md §6's "CLI surface (thin, not the core)").
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/openlog"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/reader"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/schema"
)

// Exit codes per spec.md §6.
const (
	ExitSuccess     = 0
	ExitUsageError  = 1
	ExitIOError     = 2
	ExitCorruptFile = 3
	ExitTimeout     = 4
)

// Execute builds and runs the root command, returning the process exit
// code spec.md §6 documents rather than calling os.Exit itself, so main
// stays a one-line wrapper.
func Execute(args []string) int {
	v := viper.New()
	root := newRootCmd(v)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cqlread:", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "cqlread",
		Short:         "Read Cassandra 5 SSTable files without a running node",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.Int64("cache-mb", 64, "block cache byte budget, in megabytes")
	flags.Int64("mmap-threshold-mb", 8, "minimum file size, in megabytes, before memory-mapping is used")
	flags.Int("summary-stride", 128, "index summary sampling stride")
	flags.String("log-level", "info", "log level: debug, info, warn, error")

	_ = v.BindPFlag("cache-mb", flags.Lookup("cache-mb"))
	_ = v.BindPFlag("mmap-threshold-mb", flags.Lookup("mmap-threshold-mb"))
	_ = v.BindPFlag("summary-stride", flags.Lookup("summary-stride"))
	_ = v.BindPFlag("log-level", flags.Lookup("log-level"))

	root.AddCommand(newReadCmd(v))
	root.AddCommand(newSchemaCmd(v))
	root.AddCommand(newStatsCmd(v))
	return root
}

func loggerFromViper(v *viper.Viper) (*zap.Logger, error) {
	logger, err := openlog.NewLogger(v.GetString("log-level"))
	if err != nil {
		return nil, &usageError{err}
	}
	return logger, nil
}

func optionsFromViper(v *viper.Viper) (reader.Options, error) {
	opts := reader.Options{
		ByteBudget:     v.GetInt64("cache-mb") * 1024 * 1024,
		MMapThreshold:  v.GetInt64("mmap-threshold-mb") * 1024 * 1024,
		PrefetchWindow: reader.DefaultOptions().PrefetchWindow,
		SummaryStride:  v.GetInt("summary-stride"),
	}
	if err := opts.Validate(); err != nil {
		return opts, &usageError{err}
	}
	return opts, nil
}

// usageError marks an error as a CLI usage mistake (bad flag values, a
// missing path argument) rather than a failure inside the engine, so
// exitCodeFor can tell the two apart.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// sstableDir resolves the Files set and TableSchema for a directory
// containing one SSTable generation plus a schema.json sidecar (the CLI's
// schema source; see schema.LoadJSON).
func sstableDir(dir string) (reader.Files, *schema.TableSchema, error) {
	dataFiles, err := filepath.Glob(filepath.Join(dir, "*-Data.db"))
	if err != nil || len(dataFiles) == 0 {
		return reader.Files{}, nil, &usageError{fmt.Errorf("no *-Data.db file found in %s", dir)}
	}
	stem := strings.TrimSuffix(dataFiles[0], "Data.db")

	files := reader.Files{
		Data:       stem + "Data.db",
		Index:      stem + "Index.db",
		Filter:     optionalFile(stem + "Filter.db"),
		Statistics: stem + "Statistics.db",
	}
	if ci := stem + "CompressionInfo.db"; fileExists(ci) {
		files.CompressionInfo = ci
	}

	s, err := schema.LoadJSON(filepath.Join(dir, "schema.json"))
	if err != nil {
		return reader.Files{}, nil, &usageError{err}
	}
	return files, s, nil
}

func optionalFile(path string) string {
	if fileExists(path) {
		return path
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func exitCodeFor(err error) int {
	var usage *usageError
	if errors.As(err, &usage) {
		return ExitUsageError
	}

	var qsyn *errs.QuerySyntax
	var qsem *errs.QuerySemantic
	var unsupported *errs.Unsupported
	if errors.As(err, &qsyn) || errors.As(err, &qsem) || errors.As(err, &unsupported) {
		return ExitUsageError
	}

	var timeout *errs.Timeout
	if errors.As(err, &timeout) {
		return ExitTimeout
	}

	var corrupt *errs.CorruptFormat
	var truncated *errs.Truncated
	var mismatch *errs.SchemaMismatch
	var depth *errs.DepthLimit
	var count *errs.CountLimit
	var rowDecode *errs.RowDecode
	if errors.As(err, &corrupt) || errors.As(err, &truncated) || errors.As(err, &mismatch) ||
		errors.As(err, &depth) || errors.As(err, &count) || errors.As(err, &rowDecode) {
		return ExitCorruptFile
	}

	var ioErr *errs.IO
	if errors.As(err, &ioErr) {
		return ExitIOError
	}
	if errors.Is(err, os.ErrNotExist) {
		return ExitIOError
	}
	return ExitIOError
}
