package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/metrico/dvgrouper/config"
	handlers "github.com/metrico/dvgrouper/handler"
	"github.com/metrico/dvgrouper/router"
)

func newServeCommand(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "serve [paths...]",
		Short: "Load datasets and serve their metadata over HTTP",
		RunE: func(c *cobra.Command, args []string) error {
			g, err := a.open(c, args)
			if err != nil {
				return err
			}
			defer g.Close()

			srv := &http.Server{
				Addr:    fmt.Sprintf("%s:%d", config.Config.HTTP.Host, config.Config.HTTP.Port),
				Handler: router.NewRouter(router.APIRoutes(&handlers.Handler{Grouper: g})),
			}
			go func() {
				<-c.Context().Done()
				srv.Close()
			}()
			a.logger.Info().Str("addr", srv.Addr).Msg("serving datasets")
			if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	bindLoadFlags(c)
	return c
}
