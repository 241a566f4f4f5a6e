package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sumforge/uniongen/internal/build"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [package-dir]",
	Short: "Remove generated union files",
	Long: `Clean removes the generated union files and the skip cache of a
package directory. Only files carrying the generated-code header are
removed.

Examples:
  uniongen clean            # Clean the current directory
  uniongen clean ./shapes   # Clean a specific package`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	result, err := build.Clean(dir)
	if err != nil {
		return err
	}
	for _, path := range result.Removed {
		fmt.Printf("Removed %s\n", path)
	}
	fmt.Printf("Removed %d file(s)\n", len(result.Removed))
	return nil
}
