package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sumforge/uniongen/internal/build"
)

var (
	generateDir     string
	generateTypes   []string
	generateForce   bool
	generateDryRun  bool
	generateVerbose bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [package-dir]",
	Short: "Generate union types for a package",
	Long: `Generate scans a package directory for //union:generate schema
structs and writes one generated file per union type next to them.

Examples:
  uniongen generate ./shapes              # Generate every marked type
  uniongen generate -d ./shapes -t Shape  # Generate one type only
  uniongen generate ./shapes --dry-run    # Print instead of writing
  uniongen ./shapes                       # Shorthand (same as generate)`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateDir, "dir", "d", "", "Package directory to generate for")
	generateCmd.Flags().StringSliceVarP(&generateTypes, "type", "t", nil, "Generate only the named host types")
	generateCmd.Flags().BoolVarP(&generateForce, "force", "f", false, "Regenerate even when up to date")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Print output instead of writing files")
	generateCmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "Print per-type progress")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	dir := generateDir
	if dir == "" && len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		dir = "."
	}

	builder, err := build.NewBuilder(dir, build.Options{
		Verbose: generateVerbose,
		Force:   generateForce,
		DryRun:  generateDryRun,
		Types:   generateTypes,
		Stdout:  os.Stdout,
	})
	if err != nil {
		return err
	}

	result, err := builder.Generate(cmd.Context())
	if err != nil {
		return err
	}

	if !generateDryRun {
		fmt.Printf("Generated %d union type(s), %d up to date\n",
			len(result.Generated), len(result.Skipped))
	}
	return nil
}
