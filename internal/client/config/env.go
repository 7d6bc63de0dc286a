package config

import "os"

const envAPIBaseURL = "API_BASE_URL"

// parseEnv overlays values taken from the process environment.
func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv(envAPIBaseURL); ok && v != "" {
		cfg.APIBaseURL = v
	}
}
