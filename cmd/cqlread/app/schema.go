package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newSchemaCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <path>",
		Short: "Print the table schema bound to one SSTable generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, tableSchema, err := sstableDir(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "keyspace: %s\n", tableSchema.Keyspace)
			fmt.Fprintf(out, "table:    %s\n", tableSchema.Table)

			fmt.Fprintln(out, "\npartition key:")
			for _, c := range tableSchema.Partition {
				fmt.Fprintf(out, "  %s %s\n", c.Name, c.Type.Kind)
			}

			fmt.Fprintln(out, "\nclustering key:")
			for _, c := range tableSchema.Clustering {
				fmt.Fprintf(out, "  %s %s %s\n", c.Name, c.Type.Kind, c.Direction)
			}

			fmt.Fprintln(out, "\nregular columns:")
			for _, c := range tableSchema.Regular {
				fmt.Fprintf(out, "  %s %s\n", c.Name, c.Type.Kind)
			}
			return nil
		},
	}
}
