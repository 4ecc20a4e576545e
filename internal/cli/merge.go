package cli

import (
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/fern/pkg/mappingfile"
	"github.com/Ramsey-B/fern/pkg/merge"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tabular"
)

func newMergeCommand(opts *rootOptions) *cobra.Command {
	var (
		targetPath   string
		sourcePath   string
		mappingPath  string
		outPath      string
		outputFormat string
		preview      bool
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge a source dataset into the target schema using a mapping file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := opts.readDataset(targetPath)
			if err != nil {
				return err
			}
			source, err := opts.readDataset(sourcePath)
			if err != nil {
				return err
			}
			file, err := mappingfile.Load(mappingPath)
			if err != nil {
				return err
			}

			svc, cleanup, err := opts.service()
			if err != nil {
				return err
			}
			defer cleanup()

			req := merge.Request{
				TargetFields:     target.Fields,
				TargetRows:       target.Rows,
				SourceRows:       source.Rows,
				Mappings:         file.Mappings,
				Types:            file.Types,
				OutputDateFormat: file.OutputDateFormat,
			}
			if outputFormat != "" {
				req.OutputDateFormat = outputFormat
			}

			ctx := commandContext(cmd)
			var rows []models.MergedRow
			if preview {
				rows, err = svc.Preview(ctx, req)
			} else {
				rows, err = svc.Merge(ctx, req)
			}
			if err != nil {
				return err
			}

			if outPath == "" {
				return svc.Export(cmd.OutOrStdout(), tabular.FormatCSV, target.Fields, rows)
			}
			return tabular.WriteFile(outPath, target.Fields, rows)
		},
	}

	cmd.Flags().StringVarP(&targetPath, "target", "t", "", "Target dataset (CSV or JSON)")
	cmd.Flags().StringVarP(&sourcePath, "source", "s", "", "Source dataset (CSV or JSON)")
	cmd.Flags().StringVarP(&mappingPath, "mapping", "m", "", "Mapping file (YAML)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file; .json writes JSON, anything else CSV. Defaults to CSV on stdout")
	cmd.Flags().StringVar(&outputFormat, "output-date-format", "", "Override the mapping file's output date format")
	cmd.Flags().BoolVar(&preview, "preview", false, "Merge only the first rows")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("mapping")

	return cmd
}
