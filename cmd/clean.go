package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tanq16/redl/internal/output"
	"github.com/tanq16/redl/internal/utils"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [DIR]",
		Short: "Remove leftover partial downloads",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			dir := savePath
			if len(args) > 0 {
				dir = args[0]
			}
			removed, err := utils.CleanPartials(dir)
			for _, path := range removed {
				output.PrintDetail(path)
			}
			if err != nil {
				output.PrintError(fmt.Sprintf("Error cleaning up temporary files: %v", err))
				os.Exit(1)
			}
			output.PrintSuccess(fmt.Sprintf("Removed %d partial file(s)", len(removed)))
		},
	}
}
