// Package catalog is the music catalog surface a collaboration walk reads from.
//
// A Client resolves an artist name to a catalog artist and lists the releases
// of an artist together with every artist credited on them. SpotifyClient
// implements it against the Spotify Web API:
//
//	client, err := catalog.NewSpotifyClient(clientID, clientSecret,
//		catalog.WithRateLimit(10),
//		catalog.WithTimeout(10*time.Second),
//	)
//	if err != nil {
//		return err
//	}
//	artist, err := client.SearchArtist(ctx, "Elton John")
//	releases, err := client.ListReleases(ctx, artist.ID, catalog.ReleaseQuery{
//		Type:  catalog.ReleaseSingle,
//		Limit: 20,
//	})
//
// # Errors
//
// A search without a match returns *NotFoundError. Every other failure is a
// *CatalogError carrying the operation, the HTTP status, the catalog message
// and any Retry-After delay. Retryable reports 429 and 5xx responses.
//
// # Decorators
//
// WithRetry repeats retryable failures with exponential backoff, and
// NewCachedClient memoizes responses in a Cache such as MemoryCache or the
// redis cache in store/redis. Both return a Client so they can be stacked:
//
//	var c catalog.Client = spotify
//	c = catalog.NewCachedClient(c, catalog.NewMemoryCache(), time.Hour)
//	c = catalog.WithRetry(c, retryConfig)
//
// MockClient serves scripted responses and records every call.
package catalog
