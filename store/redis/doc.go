// Package redis stores walk history and catalog responses in Redis.
//
// RedisWalkStore writes each record as JSON under <prefix>walk:<id> and keeps
// two index sets, <prefix>seed:<seed>:walks and <prefix>walks, for listing.
// A positive TTL expires records; index entries whose record has expired are
// skipped when listing.
//
//	s := redis.NewRedisWalkStore(redis.RedisOptions{
//		Addr:   "localhost:6379",
//		Prefix: "collabwalk:",
//		TTL:    24 * time.Hour,
//	})
//	defer s.Close()
//
// RedisCache implements catalog.Cache on the same client so repeated artist
// lookups are shared between processes:
//
//	cache := redis.NewRedisCache(s.Client(), "collabwalk:")
//	client = catalog.NewCachedClient(client, cache, time.Hour)
package redis
