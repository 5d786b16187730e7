// Package walk implements the lazy discovery random walk over artist collaborations.
//
// A walk starts from a seed artist and visits exactly Steps artists. On every
// visit it lists the current artist's releases, adds each credited artist not
// yet in the graph together with an edge labeled by the release, and draws the
// next artist uniformly from the newly discovered artists plus the current
// one. Drawing the current artist is how the walk backtracks: an artist whose
// co-artists are all known can only stay put.
//
//	walker := walk.New(client,
//		walk.WithRandom(rand.New(rand.NewSource(42))),
//		walk.WithMarket("US"),
//	)
//	result, err := walker.Walk(ctx, walk.Request{
//		Seed:        "Elton John",
//		Steps:       20,
//		QueryLimit:  20,
//		ReleaseType: catalog.ReleaseSingle,
//	})
//
// Every visit queries the catalog again, including revisits. Wrap the client
// with catalog.NewCachedClient to serve repeats locally.
//
// Listeners observe walk_start, step, walk_end and walk_error events.
package walk
