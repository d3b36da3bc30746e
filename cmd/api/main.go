package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "portal",
		Short:         "Employee portal API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd())

	// serve is the default so a bare container entrypoint keeps working
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "portal:", err)
		os.Exit(1)
	}
}
