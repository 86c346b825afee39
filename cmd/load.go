package cmd

import (
	"fmt"
	"os"

	"github.com/go-faster/jx"
	"github.com/spf13/cobra"

	"github.com/metrico/dvgrouper/config"
	"github.com/metrico/dvgrouper/grouper"
)

func bindLoadFlags(c *cobra.Command) {
	f := c.Flags()
	f.String("engine", "arrow", "frame reader: arrow or duckdb")
	f.StringSlice("format", []string{".parquet"}, "accepted file extensions")
	f.StringSlice("expected", nil, "expected file basenames")
	f.String("ignore", "", "regex of basenames to skip")
	f.Int("workers", 1, "parallel file reads")
}

func (a *app) open(c *cobra.Command, paths []string) (*grouper.Grouper, error) {
	opts, err := grouperOptions(config.Config, paths, a.logger)
	if err != nil {
		return nil, err
	}
	return grouper.New(c.Context(), opts)
}

func newLoadCommand(a *app) *cobra.Command {
	var (
		where    string
		asJSON   bool
		manifest string
		catalog  string
	)
	c := &cobra.Command{
		Use:   "load [paths...]",
		Short: "Load datasets and print their year coverage",
		RunE: func(c *cobra.Command, args []string) error {
			g, err := a.open(c, args)
			if err != nil {
				return err
			}
			defer g.Close()

			var names []string
			if where != "" {
				if names, err = g.Filter(where); err != nil {
					return err
				}
			}
			out := c.OutOrStdout()
			switch {
			case asJSON && where != "" && len(names) == 0:
				fmt.Fprintln(out, "[]")
			case asJSON:
				var e jx.Encoder
				g.EncodeDatasets(&e, names...)
				fmt.Fprintln(out, e.String())
			case where != "":
				for _, n := range names {
					fmt.Fprintln(out, n)
				}
			default:
				fmt.Fprint(out, g.Summary())
			}
			if manifest != "" {
				if err = g.SaveManifest(manifest); err != nil {
					return err
				}
			}
			if catalog != "" {
				return writeCatalog(g, catalog)
			}
			return nil
		},
	}
	bindLoadFlags(c)
	c.Flags().StringVar(&where, "where", "", "filter expression, e.g. 'rows > 0 && group == \"emissions\"'")
	c.Flags().BoolVar(&asJSON, "json", false, "print datasets as JSON")
	c.Flags().StringVar(&manifest, "manifest", "", "write a load manifest to this file")
	c.Flags().StringVar(&catalog, "catalog", "", "write one parquet row per dataset to this file")
	return c
}

func writeCatalog(g *grouper.Grouper, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = g.WriteCatalog(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
