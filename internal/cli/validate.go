package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/packspec/schemapack"
)

func validateCmd() *cobra.Command {
	var schemaPath string
	var dataPath string

	c := &cobra.Command{
		Use:   "validate",
		Short: "Validate a datapack against a schemapack",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sp, err := loadSchemaPack(schemaPath)
			if err != nil {
				return err
			}
			dp, err := loadDataPack(dataPath)
			if err != nil {
				return err
			}

			report, err := schemapack.Validate(sp, dp)
			if err != nil {
				return fail(ExitSchemaPackSpecError, err)
			}
			if len(report) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "Validation failed with %d issue(s):\n", len(report))
				for _, violation := range report {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", violation)
				}
				return fail(ExitValidationError, fmt.Errorf("the provided datapack is not valid wrt the provided schemapack"))
			}

			fmt.Fprintln(cmd.OutOrStdout(), "The provided datapack is valid wrt the provided schemapack.")
			return nil
		},
	}

	c.Flags().StringVarP(&schemaPath, "schemapack", "s", "", "Path to the schemapack to validate against (required)")
	c.Flags().StringVarP(&dataPath, "datapack", "d", "", "Path to the datapack to validate (required)")
	_ = c.MarkFlagRequired("schemapack")
	_ = c.MarkFlagRequired("datapack")
	return c
}

func checkSchemaPackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-schemapack PATH",
		Short: "Check that a JSON/YAML document is a valid schemapack definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadSchemaPack(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "The provided document is a valid schemapack definition.")
			return nil
		},
	}
}

func checkDataPackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-datapack PATH",
		Short: "Check that a JSON/YAML document is a valid datapack definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadDataPack(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "The provided document is a valid datapack definition.")
			return nil
		},
	}
}
