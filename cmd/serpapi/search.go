package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Sternrassler/serpapi-go/pkg/params"
	"github.com/spf13/cobra"
)

func newSearchCmd(opts *options) *cobra.Command {
	var (
		allPages bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "search ENGINE [key=value ...]",
		Short: "Run a search and print the JSON result",
		Example: `  serpapi search google q=coffee location="Austin, Texas"
  serpapi search bing q=coffee --all-pages --max-pages 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			if noCache {
				p = p.With("no_cache", true)
			}

			c, cleanup, err := opts.newClient()
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			if !allPages {
				body, err := c.SearchRaw(ctx, args[0], p)
				if err != nil {
					return err
				}
				return writeJSON(out, body, true)
			}

			// One compact JSON document per line
			for page, err := range c.SearchPages(ctx, args[0], p) {
				if err != nil {
					return err
				}
				if err := writeJSON(out, page.Body, false); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&allPages, "all-pages", false, "follow pagination and print every page")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass cached results")

	return cmd
}

// parseParams turns key=value arguments into a parameter bag.
func parseParams(args []string) (params.Bag, error) {
	ps := make([]params.Param, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return params.Bag{}, fmt.Errorf("invalid parameter %q (want key=value)", arg)
		}
		ps = append(ps, params.P(key, value))
	}
	return params.New(ps...), nil
}

// writeJSON prints body indented or compacted, followed by a newline.
func writeJSON(w io.Writer, body []byte, indent bool) error {
	var buf bytes.Buffer
	var err error
	if indent {
		err = json.Indent(&buf, body, "", "  ")
	} else {
		err = json.Compact(&buf, body)
	}
	if err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

// printValue prints v as indented JSON.
func printValue(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
