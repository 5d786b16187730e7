package main

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smallnest/collabwalk/catalog"
	"github.com/smallnest/collabwalk/store"
	"github.com/smallnest/collabwalk/walk"
)

type walkFlags struct {
	steps       int
	limit       int
	releaseType string
	market      string
	randSeed    int64
	format      string
	save        bool
	verbose     bool
}

func newWalkCmd(a *app) *cobra.Command {
	var f walkFlags
	cmd := &cobra.Command{
		Use:   "walk [artist]",
		Short: "Run one random walk from a seed artist",
		Long: `Run one random walk from a seed artist and print it.

Without an artist the walk starts from WALK_DEFAULT_SEED. Steps, release
limit and release type default to WALK_STEPS, WALK_QUERY_LIMIT and
WALK_RELEASE_TYPE.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWalk(cmd, a, args, f)
		},
	}
	cmd.Flags().IntVar(&f.steps, "steps", 0, "path length (default WALK_STEPS)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "releases fetched per artist (default WALK_QUERY_LIMIT)")
	cmd.Flags().StringVar(&f.releaseType, "type", "", "release type, single or album (default WALK_RELEASE_TYPE)")
	cmd.Flags().StringVar(&f.market, "market", "", "catalog market (default CATALOG_MARKET)")
	cmd.Flags().Int64Var(&f.randSeed, "rand-seed", 0, "seed the random source for a reproducible walk; 0 uses the clock")
	cmd.Flags().StringVarP(&f.format, "format", "f", formatText, "output format: "+strings.Join(formats, ", "))
	cmd.Flags().BoolVar(&f.save, "save", false, "save the walk to the configured store")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "print every step")
	return cmd
}

func (f walkFlags) request(a *app, args []string) (walk.Request, error) {
	req := walk.Request{
		Seed:        a.cfg.Walk.DefaultSeed,
		Steps:       a.cfg.Walk.Steps,
		QueryLimit:  a.cfg.Walk.QueryLimit,
		ReleaseType: a.cfg.ReleaseType(),
	}
	if len(args) == 1 {
		req.Seed = args[0]
	}
	if f.steps != 0 {
		req.Steps = f.steps
	}
	if f.limit != 0 {
		req.QueryLimit = f.limit
	}
	if f.releaseType != "" {
		rt, err := catalog.ParseReleaseType(f.releaseType)
		if err != nil {
			return req, err
		}
		req.ReleaseType = rt
	}
	return req, req.Validate()
}

func runWalk(cmd *cobra.Command, a *app, args []string, f walkFlags) error {
	if err := validFormat(f.format); err != nil {
		return err
	}
	req, err := f.request(a, args)
	if err != nil {
		return err
	}
	market := a.cfg.Catalog.Market
	if f.market != "" {
		market = f.market
	}

	client, err := a.catalogClient()
	if err != nil {
		return err
	}

	seed := f.randSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	opts := []walk.Option{
		//nolint:gosec // Walk choices are not security sensitive
		walk.WithRandom(rand.New(rand.NewSource(seed))),
		walk.WithMarket(market),
		walk.WithLogger(a.logger),
	}
	if f.verbose {
		opts = append(opts, walk.WithListener(stepPrinter(cmd)))
	}

	result, err := walk.New(client, opts...).Walk(cmd.Context(), req)
	if err != nil {
		return err
	}
	record := store.NewWalkRecord(req, market, result)

	if f.save {
		walks, err := a.backends.walkStore(cmd.Context())
		if err != nil {
			return err
		}
		if err := walks.Save(cmd.Context(), record); err != nil {
			return fmt.Errorf("failed to save walk: %w", err)
		}
		a.logger.Info("saved walk %s to the %s store", record.ID, a.cfg.Store.Backend)
	} else {
		record.ID = ""
	}

	return writeWalk(cmd.OutOrStdout(), f.format, record, result.Graph)
}

// stepPrinter reports every visited artist on stderr.
func stepPrinter(cmd *cobra.Command) walk.Listener {
	return walk.ListenerFunc(func(_ context.Context, event walk.Event, data walk.EventData) {
		if event != walk.EventStep || data.Step == nil {
			return
		}
		s := data.Step
		line := fmt.Sprintf("%3d  %s  %d releases, %d new, next %s",
			s.Index+1, styles.Path.Render(s.Artist), s.Releases, len(s.Discovered), styles.Anchor.Render(s.Next))
		fmt.Fprintln(cmd.ErrOrStderr(), line)
	})
}
