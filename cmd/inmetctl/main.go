// Command inmetctl inspects the INMET alert feed without running the service.
//
// Usage:
//
//	inmetctl check                       # fetch the live feed
//	inmetctl check --file testdata.xml   # parse a saved feed
//	inmetctl check --at 2024-01-01T12:00:00Z --json
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	app := &cobra.Command{
		Use:          os.Args[0],
		Short:        "INMET weather alert feed tools",
		Version:      version,
		SilenceUsage: true,
	}

	app.AddCommand(checkEntry())
	app.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})

	if err := app.Execute(); err != nil {
		os.Exit(1)
	}
}
