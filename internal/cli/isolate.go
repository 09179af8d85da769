package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/packspec/schemapack"
)

func isolateResourceCmd() *cobra.Command {
	var schemaPath string
	var dataPath string
	var rootClass string
	var rootResource string
	var outPath string
	var asJSON bool

	c := &cobra.Command{
		Use:   "isolate-resource",
		Short: "Extract the sub-datapack rooted at one resource",
		Long: "Extract a rooted datapack containing the given resource and " +
			"everything transitively referenced by it. The result validates " +
			"against the correspondingly rooted schemapack (see isolate-class), " +
			"not necessarily against the original one.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sp, err := loadSchemaPack(schemaPath)
			if err != nil {
				return err
			}
			dp, err := loadDataPack(dataPath)
			if err != nil {
				return err
			}

			rooted, err := schemapack.IsolateResource(sp, dp, rootClass, rootResource)
			if err != nil {
				return fail(rootNotFoundCode(err), err)
			}
			out, err := schemapack.DumpDataPack(rooted, dumpFormat(asJSON))
			if err != nil {
				return err
			}
			return writeOutput(cmd, outPath, out)
		},
	}

	c.Flags().StringVarP(&schemaPath, "schemapack", "s", "", "Path to the schemapack (required)")
	c.Flags().StringVarP(&dataPath, "datapack", "d", "", "Path to the datapack (required)")
	c.Flags().StringVarP(&rootClass, "class", "c", "", "Class of the root resource (required)")
	c.Flags().StringVarP(&rootResource, "resource", "r", "", "Id of the root resource (required)")
	c.Flags().StringVarP(&outPath, "output", "o", "", "Output path (stdout if omitted)")
	c.Flags().BoolVar(&asJSON, "json", false, "Write JSON instead of YAML")
	_ = c.MarkFlagRequired("schemapack")
	_ = c.MarkFlagRequired("datapack")
	_ = c.MarkFlagRequired("class")
	_ = c.MarkFlagRequired("resource")
	return c
}

func isolateClassCmd() *cobra.Command {
	var schemaPath string
	var rootClass string
	var outPath string
	var asJSON bool

	c := &cobra.Command{
		Use:   "isolate-class",
		Short: "Extract the sub-schemapack rooted at one class",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sp, err := loadSchemaPack(schemaPath)
			if err != nil {
				return err
			}

			rooted, err := schemapack.IsolateClass(sp, rootClass)
			if err != nil {
				return fail(rootNotFoundCode(err), err)
			}
			out, err := schemapack.DumpSchemaPack(rooted, dumpFormat(asJSON))
			if err != nil {
				return err
			}
			return writeOutput(cmd, outPath, out)
		},
	}

	c.Flags().StringVarP(&schemaPath, "schemapack", "s", "", "Path to the schemapack (required)")
	c.Flags().StringVarP(&rootClass, "class", "c", "", "Root class (required)")
	c.Flags().StringVarP(&outPath, "output", "o", "", "Output path (stdout if omitted)")
	c.Flags().BoolVar(&asJSON, "json", false, "Write JSON instead of YAML")
	_ = c.MarkFlagRequired("schemapack")
	_ = c.MarkFlagRequired("class")
	return c
}

func rootNotFoundCode(err error) int {
	var rootErr *schemapack.RootNotFoundError
	if errors.As(err, &rootErr) {
		return ExitRootNotFoundError
	}
	return ExitSchemaPackSpecError
}
