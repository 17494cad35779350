package main

import (
	"fmt"

	"github.com/Sternrassler/serpapi-go/pkg/client"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", client.ClientName, client.Version, client.SourceTag())
		},
	}
}
