package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/smallnest/collabwalk/dashboard"
	"github.com/smallnest/collabwalk/walk"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr  string
		debug bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Dashboard.Addr
			}
			debug = debug || a.cfg.Dashboard.Debug
			if !debug {
				gin.SetMode(gin.ReleaseMode)
			}

			client, err := a.catalogClient()
			if err != nil {
				return err
			}
			walks, err := a.backends.walkStore(cmd.Context())
			if err != nil {
				return err
			}

			srv := dashboard.New(client, walks, dashboard.Options{
				Seeds: a.cfg.Walk.Seeds,
				Defaults: walk.Request{
					Seed:        a.cfg.Walk.DefaultSeed,
					Steps:       a.cfg.Walk.Steps,
					QueryLimit:  a.cfg.Walk.QueryLimit,
					ReleaseType: a.cfg.ReleaseType(),
				},
				Market: a.cfg.Catalog.Market,
				Logger: a.logger,
				Debug:  debug,
			})
			return srv.Run(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default DASHBOARD_ADDR)")
	cmd.Flags().BoolVar(&debug, "debug", false, "run gin in debug mode")
	return cmd
}
