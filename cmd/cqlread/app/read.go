package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pmcfadin/cqlite-sub003/internal/query/ast"
	"github.com/pmcfadin/cqlite-sub003/internal/query/executor"
	"github.com/pmcfadin/cqlite-sub003/internal/query/planner"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/reader"
)

func newReadCmd(v *viper.Viper) *cobra.Command {
	var limit int
	var format string
	var query string

	cmd := &cobra.Command{
		Use:   "read <path>",
		Short: "Run a SELECT query against one SSTable generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]

			logger, err := loggerFromViper(v)
			if err != nil {
				return err
			}
			defer logger.Sync()

			opts, err := optionsFromViper(v)
			if err != nil {
				return err
			}

			files, tableSchema, err := sstableDir(dir)
			if err != nil {
				return err
			}

			r, err := reader.Open(files, tableSchema, opts)
			if err != nil {
				return fmt.Errorf("open sstable: %w", err)
			}
			defer r.Close()

			cql := query
			if cql == "" {
				cql = fmt.Sprintf("SELECT * FROM %s", tableSchema.Table)
				if limit > 0 {
					cql = fmt.Sprintf("%s LIMIT %d", cql, limit)
				}
			}

			stmt, err := ast.Parse(cql)
			if err != nil {
				return &usageError{fmt.Errorf("parse query: %w", err)}
			}

			plan, err := planner.New().Plan(stmt, tableSchema, r.Statistics())
			if err != nil {
				return err
			}

			result, err := executor.New(r, tableSchema).Execute(cmd.Context(), plan)
			if err != nil {
				return err
			}

			return writeResult(cmd.OutOrStdout(), result, format)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of rows to return (0 means unlimited, only applies to the default SELECT *)")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, json, or csv")
	cmd.Flags().StringVar(&query, "query", "", "CQL SELECT statement to run instead of the default SELECT *")

	return cmd
}
