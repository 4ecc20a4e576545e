package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newInferCommand(opts *rootOptions) *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Print the inferred field types and date formats of a dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, err := opts.readDataset(targetPath)
			if err != nil {
				return err
			}

			svc, cleanup, err := opts.service()
			if err != nil {
				return err
			}
			defer cleanup()

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(svc.Analyze(commandContext(cmd), dataset))
		},
	}

	cmd.Flags().StringVarP(&targetPath, "target", "t", "", "Target dataset (CSV or JSON)")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}
