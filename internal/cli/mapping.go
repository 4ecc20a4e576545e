package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/fern/pkg/mappingfile"
	"github.com/Ramsey-B/fern/pkg/models"
)

func newMappingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Edit a mapping file produced by \"fern recommend --out\"",
	}

	cmd.AddCommand(
		newMappingAddCommand(),
		newMappingRemoveCommand(),
		newMappingFormulaCommand(),
		newMappingDateFormatCommand(),
	)

	return cmd
}

// editMapping loads path, applies edit and saves the file once it validates again.
func editMapping(path string, edit func(file *mappingfile.File) error) error {
	file, err := mappingfile.Load(path)
	if err != nil {
		return err
	}

	if err := edit(file); err != nil {
		return err
	}

	if err := file.Validate(); err != nil {
		return err
	}
	return mappingfile.Save(path, file)
}

func newMappingAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <file> <target> <source>",
		Short: "Map another source field into a target field",
		Long: `Map another source field into a target field. A second source switches the target to
concatenate unless a formula is already set.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editMapping(args[0], func(file *mappingfile.File) error {
				if file.Mappings == nil {
					file.Mappings = models.FieldMappings{}
				}
				file.Mappings.AddSource(args[1], args[2])
				return nil
			})
		},
	}
}

func newMappingRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <file> <target> <source>",
		Short: "Unmap a source field from a target field",
		Long:  `Unmap a source field from a target field. A target left without sources is removed from the file.`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editMapping(args[0], func(file *mappingfile.File) error {
				target := args[1]
				if _, ok := file.Mappings[target]; !ok {
					return fmt.Errorf("target %q is not mapped", target)
				}

				file.Mappings.RemoveSource(target, args[2])
				if len(file.Mappings[target].Mapped) == 0 {
					delete(file.Mappings, target)
				}
				return nil
			})
		},
	}
}

func newMappingFormulaCommand() *cobra.Command {
	var expression string

	cmd := &cobra.Command{
		Use:   "formula <file> <target> <concatenate|+|-|*|/|custom>",
		Short: "Set how several source fields combine into a target field",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editMapping(args[0], func(file *mappingfile.File) error {
				target := args[1]
				if _, ok := file.Mappings[target]; !ok {
					return fmt.Errorf("target %q is not mapped", target)
				}

				formula := models.Formula(args[2])
				if formula == models.FormulaCustom {
					if expression == "" {
						return fmt.Errorf("--expression is required for a custom formula")
					}
					file.Mappings.SetCustomFormula(target, expression)
					return nil
				}
				return file.Mappings.SetFormula(target, formula)
			})
		},
	}

	cmd.Flags().StringVarP(&expression, "expression", "e", "", "Expression for a custom formula, e.g. \"price * qty\"")

	return cmd
}

func newMappingDateFormatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "date-format <file> <target> <format>",
		Short: "Set the input date format of a date target field",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editMapping(args[0], func(file *mappingfile.File) error {
				target := args[1]
				if _, ok := file.Mappings[target]; !ok {
					return fmt.Errorf("target %q is not mapped", target)
				}
				file.Mappings.SetDateFormat(target, args[2])
				return nil
			})
		},
	}
}
