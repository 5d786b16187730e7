// Package dashboard serves the interactive collaboration walk page and its JSON API.
//
// Routes:
//
//	GET    /                 the page: seed dropdown, cytoscape canvas, report
//	GET    /api/seeds        dropdown artists and default walk parameters
//	GET    /api/stylesheet   cytoscape stylesheet and layout
//	GET    /api/walk         run a walk: ?artist=&steps=&limit=&type=
//	GET    /api/walks        saved walks, optionally ?artist=
//	GET    /api/walks/:id    one saved walk, rendered
//	DELETE /api/walks/:id    delete a saved walk
//	GET    /healthz          liveness
//	GET    /metrics          Prometheus metrics
//
// Every walk runs on its own Walker and graph. The catalog client and the
// walk store are shared between requests. A browser session, identified by
// the collabwalk_session cookie, may run one walk at a time; an overlapping
// request is answered with 409 Conflict.
//
//	srv := dashboard.New(client, memory.NewMemoryWalkStore(), dashboard.Options{
//		Market: "US",
//	})
//	err := srv.Run(ctx, ":8050")
package dashboard
