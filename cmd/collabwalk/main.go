// Command collabwalk runs random walks over the artist collaboration network,
// prints them in several formats and serves the interactive dashboard.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smallnest/collabwalk/catalog"
	"github.com/smallnest/collabwalk/config"
	"github.com/smallnest/collabwalk/log"
)

// app is the state shared by every subcommand.
type app struct {
	envFiles []string

	cfg      *config.Config
	logger   log.Logger
	backends *backends

	// client replaces the Spotify client when set.
	client catalog.Client
}

func (a *app) catalogClient() (catalog.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	return a.backends.catalogClient()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "collabwalk",
		Short:         "Random walks over the artist collaboration network",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.envFiles...)
			if err != nil {
				return err
			}
			logger, err := log.New(cfg.Log.Backend, cfg.LogLevel(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			log.SetDefaultLogger(logger)

			a.cfg = cfg
			a.logger = logger
			a.backends = newBackends(cfg, logger)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.backends == nil {
				return nil
			}
			return a.backends.Close()
		},
	}
	root.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", nil, "load variables from these .env files (default ./.env if present)")

	root.AddCommand(
		newWalkCmd(a),
		newServeCmd(a),
		newHistoryCmd(a),
		newShowCmd(a),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	if a.backends != nil {
		if cerr := a.backends.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render("error: ")+err.Error())
		stop()
		os.Exit(1)
	}
}
