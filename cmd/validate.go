package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metrico/dvgrouper/config"
	"github.com/metrico/dvgrouper/schema"
)

var ErrSchemaMismatch = errors.New("datasets do not match their schemas")

func newValidateCommand(a *app) *cobra.Command {
	var onExists string
	c := &cobra.Command{
		Use:   "validate [paths...]",
		Short: "Check loaded datasets against the schemas of the same name",
		RunE: func(c *cobra.Command, args []string) error {
			if config.Config.SchemasFile == "" {
				return errors.New("no schemas file configured")
			}
			policy, err := schema.ParsePolicy(onExists)
			if err != nil {
				return err
			}
			schemas, err := schema.LoadFile(config.Config.SchemasFile)
			if err != nil {
				return err
			}
			registry, err := schema.NewRegistry(a.logger)
			if err != nil {
				return err
			}
			for _, s := range schemas {
				if err = registry.Add(s, schema.OnExists(policy)); err != nil && !errors.Is(err, schema.ErrExistsWarning) {
					return err
				}
			}

			g, err := a.open(c, args)
			if err != nil {
				return err
			}
			defer g.Close()

			out := c.OutOrStdout()
			failed := 0
			for _, name := range g.Datasets() {
				f, _ := g.Frame(name)
				err := registry.Validate(name, f)
				switch {
				case errors.Is(err, schema.ErrNotFound):
					fmt.Fprintf(out, "%s: no schema\n", name)
				case err != nil:
					failed++
					fmt.Fprintf(out, "%s: %v\n", name, err)
				default:
					fmt.Fprintf(out, "%s: ok\n", name)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d failed", ErrSchemaMismatch, failed)
			}
			return nil
		},
	}
	bindLoadFlags(c)
	c.Flags().String("schemas", "", "yaml file with a top-level schemas list")
	c.Flags().StringVar(&onExists, "on-exists", "error", "duplicate schema policy: error, warn, ignore, replace")
	return c
}
