// Package config loads runtime configuration for the social feed client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment: API_BASE_URL.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   backend API base URL
//	-t int      request timeout (seconds)
//	-d string   path of the local SQLite database
//	-l string   log level (debug, info, warn, error)
//	-p string   device push token to register after login
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "1m" or
// integer nanoseconds. Absent keys keep their previous value:
//
//	{
//	  "api_base_url": "https://api.example.com",
//	  "request_timeout": "10s",
//	  "database_path": "socialfeed.db",
//	  "key_file": "socialfeed.key",
//	  "log_level": "info",
//	  "platform": "linux",
//	  "push_token": "",
//	  "stale_time": "1m",
//	  "cache_time": "5m",
//	  "gc_interval": "1m",
//	  "query_retry": 2,
//	  "mutation_retry": 1,
//	  "posts_per_page": 10,
//	  "notifications_per_page": 20
//	}
package config
