// Package commands provides the CLI commands for the uniongen tool.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "uniongen [package-dir]",
	Short: "Discriminated union generator for Go",
	Long: `uniongen generates closed sum types from marked schema structs.

A struct named XxxUnion carrying a //union:generate marker describes
the cases of a union; the tool generates the value type Xxx with
factories, accessors, exhaustive dispatch and value semantics.

Usage:
  uniongen ./shapes             Generate for a package (shorthand)
  uniongen generate -d ./shapes Generate explicitly
  uniongen clean ./shapes       Remove generated files
  uniongen version              Print version`,
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	// Run generate by default when a directory is given as argument.
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			return runGenerate(cmd, args)
		}
		return fmt.Errorf("unknown command %q for \"uniongen\"\nRun 'uniongen --help' for usage", args[0])
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	// Mirror the generate flags on the root for the shorthand form.
	rootCmd.Flags().StringVarP(&generateDir, "dir", "d", "", "Package directory to generate for")
	rootCmd.Flags().StringSliceVarP(&generateTypes, "type", "t", nil, "Generate only the named host types")
	rootCmd.Flags().BoolVarP(&generateForce, "force", "f", false, "Regenerate even when up to date")
	rootCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Print output instead of writing files")
	rootCmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "Print per-type progress")
}
