package config

import (
	"runtime"
	"time"
)

// Config holds runtime settings for the social feed client.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	Platform       string

	DatabasePath string
	KeyFile      string

	LogLevel  string
	PushToken string

	StaleTime     time.Duration
	CacheTime     time.Duration
	GCInterval    time.Duration
	QueryRetry    int
	MutationRetry int

	PostsPerPage         int
	NotificationsPerPage int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:3000"
	c.RequestTimeout = 10 * time.Second
	c.Platform = runtime.GOOS

	c.DatabasePath = "socialfeed.db"
	c.KeyFile = "socialfeed.key"

	c.LogLevel = "info"
	c.PushToken = ""

	c.StaleTime = time.Minute
	c.CacheTime = 5 * time.Minute
	c.GCInterval = time.Minute
	c.QueryRetry = 2
	c.MutationRetry = 1

	c.PostsPerPage = 10
	c.NotificationsPerPage = 20
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
