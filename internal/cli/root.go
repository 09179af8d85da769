// Package cli implements the schemapack command line interface. Commands are
// thin wrappers: they load documents, call the library, print results, and
// map typed failures to distinct exit codes. All engine behavior lives in the
// library packages.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/packspec/schemapack"
)

// Exit codes returned for different outcomes.
const (
	ExitSuccess             = 0
	ExitValidationError     = 10
	ExitDataPackSpecError   = 20
	ExitSchemaPackSpecError = 30
	ExitRootNotFoundError   = 40
)

// Version is the CLI version, overridable at build time via -ldflags.
var Version = "0.3.0"

// exitError carries an exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func fail(code int, err error) error {
	return &exitError{code: code, err: err}
}

// Execute runs the CLI and exits the process with the appropriate code.
func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "schemapack",
		Short:         "Make your JSON Schemas relational",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		validateCmd(),
		checkSchemaPackCmd(),
		checkDataPackCmd(),
		condenseSchemaPackCmd(),
		isolateResourceCmd(),
		isolateClassCmd(),
		exportMermaidCmd(),
	)
	return cmd
}

// loadSchemaPack maps loading failures to the schemapack spec exit code.
func loadSchemaPack(path string) (*schemapack.SchemaPack, error) {
	sp, err := schemapack.LoadSchemaPack(path)
	if err != nil {
		return nil, fail(ExitSchemaPackSpecError, err)
	}
	return sp, nil
}

// loadDataPack maps loading failures to the datapack spec exit code.
func loadDataPack(path string) (*schemapack.DataPack, error) {
	dp, err := schemapack.LoadDataPack(path)
	if err != nil {
		return nil, fail(ExitDataPackSpecError, err)
	}
	return dp, nil
}

// writeOutput writes to the given path, or to stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func dumpFormat(asJSON bool) schemapack.Format {
	if asJSON {
		return schemapack.FormatJSON
	}
	return schemapack.FormatYAML
}
