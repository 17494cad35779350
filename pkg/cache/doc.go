// Package cache provides a redis-backed cache for API responses.
//
// The hosted API bills every search that is not served from its own cache,
// and its results stay stable for about an hour. Caching successful
// responses locally avoids paying twice for identical requests issued by
// several processes.
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache manager
//	manager := cache.NewManager(redisClient, log.Logger)
//
//	// Create cache key
//	key := cache.Key{
//		Path:   "/search",
//		Params: params.New(params.P("engine", "google"), params.P("q", "coffee")),
//	}
//
//	// Get from cache
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// Cache miss - fetch from the API
//	}
//
//	// Store a fresh response for an hour
//	err = manager.Set(ctx, key, cache.NewEntry(resp.StatusCode, resp.Header, body, time.Hour))
//
// # Keys
//
// Keys are deterministic: parameters are sorted, the diagnostic source
// parameter is ignored and the API key is replaced by a short digest so
// credentials never reach redis.
//
// # Metrics
//
//   - serpapi_cache_hits_total - Cache hits
//   - serpapi_cache_misses_total - Cache misses
//   - serpapi_cache_size_bytes - Bytes written to the cache
//   - serpapi_cache_errors_total{operation} - Cache operation errors
package cache
