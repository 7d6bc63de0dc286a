package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/socialfeed/internal/flagx"
	"github.com/dmitrijs2005/socialfeed/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell an absent key from a zero value.
type JsonConfig struct {
	APIBaseURL           *string         `json:"api_base_url"`
	RequestTimeout       *timex.Duration `json:"request_timeout"`
	DatabasePath         *string         `json:"database_path"`
	KeyFile              *string         `json:"key_file"`
	LogLevel             *string         `json:"log_level"`
	Platform             *string         `json:"platform"`
	PushToken            *string         `json:"push_token"`
	StaleTime            *timex.Duration `json:"stale_time"`
	CacheTime            *timex.Duration `json:"cache_time"`
	GCInterval           *timex.Duration `json:"gc_interval"`
	QueryRetry           *int            `json:"query_retry"`
	MutationRetry        *int            `json:"mutation_retry"`
	PostsPerPage         *int            `json:"posts_per_page"`
	NotificationsPerPage *int            `json:"notifications_per_page"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without either flag it does nothing. Read and unmarshal
// errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.KeyFile, jc.KeyFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.Platform, jc.Platform)
	setString(&cfg.PushToken, jc.PushToken)

	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.StaleTime != nil {
		cfg.StaleTime = jc.StaleTime.Duration
	}
	if jc.CacheTime != nil {
		cfg.CacheTime = jc.CacheTime.Duration
	}
	if jc.GCInterval != nil {
		cfg.GCInterval = jc.GCInterval.Duration
	}

	setInt(&cfg.QueryRetry, jc.QueryRetry)
	setInt(&cfg.MutationRetry, jc.MutationRetry)
	setInt(&cfg.PostsPerPage, jc.PostsPerPage)
	setInt(&cfg.NotificationsPerPage, jc.NotificationsPerPage)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
