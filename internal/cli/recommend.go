package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/fern/pkg/mappingfile"
)

func newRecommendCommand(opts *rootOptions) *cobra.Command {
	var (
		targetPath string
		sourcePath string
		outPath    string
		minScore   float64
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend a source field for every target field",
		Long: `Recommend a source field for every target field by comparing field-name embeddings.

With --out the recommendations are written as a mapping file that can be edited and passed
to "fern merge". Targets scoring below --min-score are left unmapped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := opts.readDataset(targetPath)
			if err != nil {
				return err
			}
			source, err := opts.readDataset(sourcePath)
			if err != nil {
				return err
			}

			svc, cleanup, err := opts.service()
			if err != nil {
				return err
			}
			defer cleanup()

			if !cmd.Flags().Changed("min-score") {
				minScore = opts.cfg.AutoMapMinScore
			}

			result, err := svc.AutoMap(commandContext(cmd), target, source, minScore)
			if err != nil {
				return err
			}

			if outPath != "" {
				file := &mappingfile.File{
					OutputDateFormat: opts.cfg.DefaultOutputDateFormat,
					Types:            result.Target.Types,
					Mappings:         result.Mappings,
				}
				if err := mappingfile.Save(outPath, file); err != nil {
					return err
				}
				if len(result.Missing) > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "unmapped target fields: %v\n", result.Missing)
				}
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(map[string]any{"recommendations": result.Recommendations})
		},
	}

	cmd.Flags().StringVarP(&targetPath, "target", "t", "", "Target dataset (CSV or JSON)")
	cmd.Flags().StringVarP(&sourcePath, "source", "s", "", "Source dataset (CSV or JSON)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write a mapping file to this path")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "Minimum similarity for a recommendation to be mapped")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}
