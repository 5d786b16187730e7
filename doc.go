// Collabwalk - Random Walks over the Artist Collaboration Network
//
// Collabwalk explores who has recorded with whom. Starting from a seed artist it
// walks the collaboration network of a music catalog, discovering the graph
// lazily: an artist's releases are only fetched when the walk lands on them.
// The result is a small graph of artists and releases plus the path the walk
// took, which can be printed, saved, or explored in a browser dashboard.
//
// # Quick Start
//
// Install the command:
//
//	go install github.com/smallnest/collabwalk/cmd/collabwalk@latest
//
// Set Spotify client credentials and run a walk:
//
//	export SPOTIFY_CLIENT=...
//	export SPOTIFY_SECRET=...
//	collabwalk walk "Elton John" --steps 20 --type single
//
// Or serve the dashboard on :8050:
//
//	collabwalk serve
//
// # Packages
//
//   - graph: the collaboration graph, path roles and the Mermaid, DOT and ASCII exporters
//   - catalog: the catalog Client, the Spotify implementation, retry and cache decorators and a mock
//   - walk: the lazy discovery random walk and its event listeners
//   - render: cytoscape elements and stylesheet for the dashboard
//   - report: per-walk statistics rendered as Markdown and sanitized HTML
//   - store: walk history with memory, file, redis, sqlite and postgres backends
//   - config: environment and .env configuration
//   - dashboard: the gin web dashboard with Prometheus metrics
//   - log: leveled logging with std and golog backends
//
// # Library Use
//
//	client, err := catalog.NewSpotifyClient(id, secret)
//	if err != nil {
//		return err
//	}
//
//	walker := walk.New(client, walk.WithRandom(rand.New(rand.NewSource(1))))
//	result, err := walker.Walk(ctx, walk.Request{
//		Seed:        "Snoop Dogg",
//		Steps:       10,
//		QueryLimit:  20,
//		ReleaseType: catalog.ReleaseSingle,
//	})
//	if err != nil {
//		return err
//	}
//
//	fmt.Println(graph.NewExporter(result.Graph, result.Path).DrawMermaid())
//
// # Persistence
//
//	walks, err := sqlite.NewSqliteWalkStore(sqlite.SqliteOptions{Path: "./walks.db"})
//	if err != nil {
//		return err
//	}
//	defer walks.Close()
//
//	record := store.NewWalkRecord(req, "US", result)
//	err = walks.Save(ctx, record)
//
// # Configuration
//
// The command reads the environment and an optional .env file:
//
//   - SPOTIFY_CLIENT, SPOTIFY_SECRET: client credentials
//   - CATALOG_MARKET, CATALOG_RPS, CATALOG_RETRY_ATTEMPTS, CATALOG_CACHE: catalog access
//   - WALK_STEPS, WALK_QUERY_LIMIT, WALK_RELEASE_TYPE, WALK_SEEDS: walk defaults
//   - STORE_BACKEND: memory, file, redis, sqlite or postgres
//   - DASHBOARD_ADDR: dashboard listen address
//   - LOG_LEVEL, LOG_BACKEND: logging
package collabwalk // import "github.com/smallnest/collabwalk"
