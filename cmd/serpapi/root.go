package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/serpapi-go/pkg/client"
	"github.com/Sternrassler/serpapi-go/pkg/logging"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// options holds the flags shared by all subcommands.
type options struct {
	apiKey   string
	timeout  time.Duration
	baseURL  string
	redisURL string
	logLevel string
	pretty   bool
	maxPages int
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "serpapi",
		Short: "Query the hosted search API",
		Long: `serpapi runs searches, reads account and location data, and
serves the API behind a caching proxy.

Flags default to the environment:
  SERPAPI_API_KEY   default API key
  SERPAPI_TIMEOUT   request timeout (e.g. 30s, or seconds)
  SERPAPI_BASE_URL  API origin
  REDIS_URL         enables the response cache and quota tracking
  LOG_LEVEL         debug, info, warn, error`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logging.Config{
				Level:  logging.LogLevel(opts.logLevel),
				Pretty: opts.pretty,
				Output: cmd.ErrOrStderr(),
			})
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.apiKey, "api-key", os.Getenv("SERPAPI_API_KEY"), "API key")
	flags.DurationVar(&opts.timeout, "timeout", envDuration("SERPAPI_TIMEOUT", 60*time.Second), "request timeout")
	flags.StringVar(&opts.baseURL, "base-url", getEnv("SERPAPI_BASE_URL", client.DefaultBaseURL), "API origin")
	flags.StringVar(&opts.redisURL, "redis-url", os.Getenv("REDIS_URL"), "Redis address or redis:// URL (empty disables caching)")
	flags.StringVar(&opts.logLevel, "log-level", getEnv("LOG_LEVEL", string(logging.LevelWarn)), "log level")
	flags.BoolVar(&opts.pretty, "pretty", os.Getenv("LOG_PRETTY") == "true", "human-readable logs")
	flags.IntVar(&opts.maxPages, "max-pages", 100, "upper bound on pages followed (0 = unbounded)")

	root.AddCommand(
		newSearchCmd(opts),
		newAccountCmd(opts),
		newLocationsCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)

	return root
}

// newRedis connects to redisURL. An empty URL disables Redis.
func (o *options) newRedis() (*redis.Client, error) {
	if o.redisURL == "" {
		return nil, nil
	}
	if strings.Contains(o.redisURL, "://") {
		redisOpts, err := redis.ParseURL(o.redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(redisOpts), nil
	}
	return redis.NewClient(&redis.Options{Addr: o.redisURL}), nil
}

// clientConfig builds the client configuration from the flags.
func (o *options) clientConfig(redisClient *redis.Client) client.Config {
	cfg := client.DefaultConfig(o.apiKey)
	cfg.Timeout = o.timeout
	cfg.BaseURL = o.baseURL
	cfg.MaxPages = o.maxPages
	cfg.Redis = redisClient
	if redisClient == nil {
		cfg.CacheTTL = 0
	}
	logger := logging.NewLogger("cli")
	cfg.Logger = &logger
	return cfg
}

// newClient creates a client for a one-shot command. The returned cleanup
// closes the client and its Redis connection.
func (o *options) newClient() (*client.Client, func(), error) {
	redisClient, err := o.newRedis()
	if err != nil {
		return nil, nil, err
	}

	c, err := client.New(o.clientConfig(redisClient))
	if err != nil {
		if redisClient != nil {
			redisClient.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		c.Close()
		if redisClient != nil {
			redisClient.Close()
		}
	}
	return c, cleanup, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envDuration reads a duration like "30s" or a number of seconds.
func envDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	fmt.Fprintf(os.Stderr, "ignoring invalid %s=%q\n", key, value)
	return defaultValue
}
