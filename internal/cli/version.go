package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cliVersion is stamped by the release build via -ldflags.
var cliVersion = "dev"

func getCLIVersion() string {
	return cliVersion
}

// newVersionCmd creates and returns a new version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the snellctl version",
		Run: func(cmd *cobra.Command, args []string) {
			if jsonOutput {
				printJSON(map[string]string{"version": getCLIVersion()})
				return
			}
			fmt.Printf("snellctl %s\n", getCLIVersion())
		},
	}
}
