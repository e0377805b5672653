package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"usage error", &usageError{errors.New("bad flag")}, ExitUsageError},
		{"query syntax", &errs.QuerySyntax{Position: 3, Message: "unexpected token"}, ExitUsageError},
		{"query semantic", &errs.QuerySemantic{Message: "unknown column"}, ExitUsageError},
		{"unsupported", &errs.Unsupported{Feature: "udt"}, ExitUsageError},
		{"timeout", &errs.Timeout{}, ExitTimeout},
		{"corrupt format", &errs.CorruptFormat{Offset: 10, Reason: "bad magic"}, ExitCorruptFile},
		{"truncated", &errs.Truncated{Context: "block", Need: 8, Have: 4}, ExitCorruptFile},
		{"schema mismatch", &errs.SchemaMismatch{Column: "id", Reason: "kind mismatch"}, ExitCorruptFile},
		{"wrapped io error", fmt.Errorf("open: %w", &errs.IO{Op: "read"}), ExitIOError},
		{"missing file", os.ErrNotExist, ExitIOError},
		{"unknown error", errors.New("boom"), ExitIOError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCodeFor(tt.err))
		})
	}
}

func TestSstableDir_MissingDataFile(t *testing.T) {
	dir := t.TempDir()
	_, _, err := sstableDir(dir)
	require.Error(t, err)
	var usage *usageError
	require.ErrorAs(t, err, &usage)
}

func TestSstableDir_MissingSchema(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nb-1-big-Data.db"), []byte("x"), 0o644))
	_, _, err := sstableDir(dir)
	require.Error(t, err)
}

func TestSstableDir_ResolvesSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "nb-1-big-")
	require.NoError(t, os.WriteFile(stem+"Data.db", []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(stem+"Index.db", []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(stem+"Statistics.db", []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.json"), []byte(`{
		"keyspace": "ks", "table": "t",
		"partition": [{"name": "id", "type": "text"}],
		"regular": [{"name": "value", "type": "bigint"}]
	}`), 0o644))

	files, s, err := sstableDir(dir)
	require.NoError(t, err)
	assert.Equal(t, stem+"Data.db", files.Data)
	assert.Equal(t, stem+"Index.db", files.Index)
	assert.Equal(t, stem+"Statistics.db", files.Statistics)
	assert.Empty(t, files.Filter)
	assert.Equal(t, "ks", s.Keyspace)
	assert.Equal(t, "t", s.Table)
}

func TestOptionsFromViper_RejectsInvalidByteBudget(t *testing.T) {
	v := viper.New()
	v.Set("cache-mb", int64(-1))
	v.Set("mmap-threshold-mb", int64(8))
	v.Set("summary-stride", 128)
	_, err := optionsFromViper(v)
	require.Error(t, err)
	var usage *usageError
	require.ErrorAs(t, err, &usage)
}

func TestExecute_UnknownCommandFails(t *testing.T) {
	assert.NotEqual(t, ExitSuccess, Execute([]string{"frobnicate"}))
}

func TestExecute_SchemaAgainstEmptyDirIsUsageError(t *testing.T) {
	assert.Equal(t, ExitUsageError, Execute([]string{"schema", t.TempDir()}))
}
