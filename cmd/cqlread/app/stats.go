package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pmcfadin/cqlite-sub003/internal/sstable/reader"
)

func newStatsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <path>",
		Short: "Print the Statistics.db summary for one SSTable generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := loggerFromViper(v)
			if err != nil {
				return err
			}
			defer logger.Sync()

			opts, err := optionsFromViper(v)
			if err != nil {
				return err
			}

			files, tableSchema, err := sstableDir(args[0])
			if err != nil {
				return err
			}

			r, err := reader.Open(files, tableSchema, opts)
			if err != nil {
				return fmt.Errorf("open sstable: %w", err)
			}
			defer r.Close()

			s := r.Statistics()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "rows:        %d (%d live, %d tombstoned)\n", s.Row.TotalRows, s.Row.LiveRows, s.Row.TombstoneCount)
			fmt.Fprintf(out, "partitions:  %d (avg %.1f rows/partition)\n", s.Row.PartitionCount, s.Row.AvgRowsPerPart)
			fmt.Fprintf(out, "timestamps:  [%d, %d]\n", s.Timestamp.MinTimestamp, s.Timestamp.MaxTimestamp)
			fmt.Fprintf(out, "disk size:   %d bytes (%d uncompressed, ratio %.3f)\n", s.Table.DiskSize, s.Table.UncompressedSize, s.Table.CompressionRatio)
			fmt.Fprintf(out, "index size:  %d bytes\n", s.Table.IndexSize)
			fmt.Fprintf(out, "bloom size:  %d bytes\n", s.Table.BloomFilterSize)
			fmt.Fprintf(out, "partitions:  avg %.1f bytes, min %d, max %d\n", s.PartitionSize.Average, s.PartitionSize.Min, s.PartitionSize.Max)
			fmt.Fprintf(out, "compression: %s (%d -> %d bytes)\n", s.Compression.Algorithm, s.Compression.OriginalSize, s.Compression.CompressedSize)
			if len(s.ExtraMetadata) > 0 {
				fmt.Fprintln(out, "extra metadata:")
				for k, val := range s.ExtraMetadata {
					fmt.Fprintf(out, "  %s: %s\n", k, val)
				}
			}
			return nil
		},
	}
}
