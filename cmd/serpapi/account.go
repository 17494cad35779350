package main

import (
	"github.com/Sternrassler/serpapi-go/pkg/client"
	"github.com/spf13/cobra"
)

func newAccountCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Print account information and remaining searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := opts.newClient()
			if err != nil {
				return err
			}
			defer cleanup()

			info, err := c.GetAccount(cmd.Context())
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), info)
		},
	}
}

func newLocationsCmd(opts *options) *cobra.Command {
	var lp client.LocationsParams

	cmd := &cobra.Command{
		Use:   "locations",
		Short: "List supported locations",
		Long:  "List supported locations. No API key is required.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := opts.newClient()
			if err != nil {
				return err
			}
			defer cleanup()

			locations, err := c.GetLocations(cmd.Context(), lp)
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), locations)
		},
	}

	cmd.Flags().StringVar(&lp.Q, "q", "", "location name filter")
	cmd.Flags().IntVar(&lp.Limit, "limit", 0, "maximum number of locations (0 = server default)")

	return cmd
}
