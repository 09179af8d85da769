package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/packspec/schemapack"
	"github.com/packspec/schemapack/export/mermaid"
)

func condenseSchemaPackCmd() *cobra.Command {
	var outPath string
	var asJSON bool

	c := &cobra.Command{
		Use:   "condense-schemapack PATH",
		Short: "Inline all file-referenced content schemas of a schemapack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Loading already condenses relative to the document's directory.
			sp, err := loadSchemaPack(args[0])
			if err != nil {
				return err
			}
			out, err := schemapack.DumpSchemaPack(sp, dumpFormat(asJSON))
			if err != nil {
				return err
			}
			return writeOutput(cmd, outPath, out)
		},
	}

	c.Flags().StringVarP(&outPath, "output", "o", "", "Output path (stdout if omitted)")
	c.Flags().BoolVar(&asJSON, "json", false, "Write JSON instead of YAML")
	return c
}

func exportMermaidCmd() *cobra.Command {
	var schemaPath string
	var noContentProperties bool

	c := &cobra.Command{
		Use:   "export-mermaid",
		Short: "Render a schemapack as a mermaid entity-relationship diagram",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sp, err := loadSchemaPack(schemaPath)
			if err != nil {
				return err
			}
			diagram, err := mermaid.Export(sp, !noContentProperties)
			if err != nil {
				return fail(ExitSchemaPackSpecError, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), diagram)
			return nil
		},
	}

	c.Flags().StringVarP(&schemaPath, "schemapack", "s", "", "Path to the schemapack (required)")
	c.Flags().BoolVar(&noContentProperties, "no-content-properties", false, "Omit content properties from entity blocks")
	_ = c.MarkFlagRequired("schemapack")
	return c
}
