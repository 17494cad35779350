package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/serpapi-go/pkg/client"
	"github.com/Sternrassler/serpapi-go/pkg/logging"
	"github.com/Sternrassler/serpapi-go/pkg/metrics"
	"github.com/Sternrassler/serpapi-go/pkg/params"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *options) *cobra.Command {
	var (
		port       string
		quotaGuard bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the API behind a caching proxy",
		Long: `Serve the API behind a caching proxy.

Endpoints:
  GET /health            liveness
  GET /ready             readiness (pings Redis when configured)
  GET /metrics           Prometheus metrics
  GET /search/{engine}   search, query parameters passed through
  GET /account           account information
  GET /locations.json    supported locations`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger("server")

			redisClient, err := opts.newRedis()
			if err != nil {
				return err
			}
			if redisClient != nil {
				defer redisClient.Close()
				if err := redisClient.Ping(cmd.Context()).Err(); err != nil {
					return fmt.Errorf("connect to redis: %w", err)
				}
				logger.Info().Str("redis", opts.redisURL).Msg("Connected to Redis")
			}

			cfg := opts.clientConfig(redisClient)
			cfg.QuotaGuard = quotaGuard
			c, err := client.New(cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			srv := &http.Server{
				Addr:              ":" + port,
				Handler:           newMux(c, redisClient, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", srv.Addr).Str("base_url", cfg.BaseURL).Msg("Starting proxy server")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				logger.Info().Msg("Shutting down gracefully")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			case err := <-errCh:
				return err
			}
		},
	}

	cmd.Flags().StringVar(&port, "port", getEnv("PORT", "8080"), "listen port")
	cmd.Flags().BoolVar(&quotaGuard, "quota-guard", false, "reject searches once the account quota is used up (requires Redis)")

	return cmd
}

func newMux(c *client.Client, redisClient *redis.Client, logger zerolog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", readyHandler(redisClient))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /search/{engine}", searchProxyHandler(c, logger))
	mux.HandleFunc("GET /account", accountHandler(c, logger))
	mux.HandleFunc("GET /locations.json", locationsHandler(c, logger))
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

// searchProxyHandler forwards the query string as search parameters. The
// path segment selects the engine.
func searchProxyHandler(c *client.Client, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine := r.PathValue("engine")
		p := params.FromQuery(r.URL.RawQuery)

		body, err := c.SearchRaw(r.Context(), engine, p)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}

func accountHandler(c *client.Client, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var opts []client.CallOption
		if key := r.URL.Query().Get("api_key"); key != "" {
			opts = append(opts, client.WithAPIKey(key))
		}

		info, err := c.GetAccount(r.Context(), opts...)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		printValue(w, info)
	}
}

func locationsHandler(c *client.Client, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		lp := client.LocationsParams{Q: q.Get("q")}
		if limit := q.Get("limit"); limit != "" {
			n, err := strconv.Atoi(limit)
			if err != nil || n < 0 {
				http.Error(w, fmt.Sprintf("invalid limit %q", limit), http.StatusBadRequest)
				return
			}
			lp.Limit = n
		}

		locations, err := c.GetLocations(r.Context(), lp)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		printValue(w, locations)
	}
}

// statusFor maps a client error to the proxy's response status.
func statusFor(err error) int {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.StatusCode
	case errors.Is(err, client.ErrMissingCredential):
		return http.StatusUnauthorized
	case errors.Is(err, client.ErrInvalidTimeout):
		return http.StatusBadRequest
	case errors.Is(err, client.ErrQuotaExhausted):
		return http.StatusTooManyRequests
	case client.IsTimeout(err):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("Upstream request failed")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	printValue(w, map[string]string{"error": err.Error()})
}
