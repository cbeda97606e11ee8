// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// go-health-keeper sync agent. It aggregates all sub-configurations and is
// populated by merging values from environment variables, command-line flags,
// an optional JSON file, and built-in defaults.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the auth token, the
	// log file location, and the application version.
	App App `envPrefix:"APP_"`

	// Adapter holds network address and timeout settings for the outbound
	// connection to the remote records service.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Storage holds configuration for the local cache database.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds tuning knobs for the synchronization engine: upload
	// concurrency, resync interval, reachability probing.
	Sync Sync `envPrefix:"SYNC_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged underneath the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// AuthToken is the bearer token presented to the remote records
	// service. May be left empty: the engine then starts suspended in the
	// auth-required state until the presentation layer installs a token.
	// Env: APP_AUTH_TOKEN
	AuthToken string `env:"AUTH_TOKEN"`

	// LogFile is the path of the rotating agent log file. Empty means
	// log to stdout.
	// Env: APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`

	// Version is the semantic version string of the running application
	// (e.g. "1.2.3").
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Adapter holds network and timeout settings for the outbound transport to
// the remote records service.
type Adapter struct {
	// HTTPAddress is the base address of the remote records API,
	// in "host:port" or full URL format (e.g. "api.example.com:443").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single outbound
	// request before the client cancels it (e.g. "30s", "1m").
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage groups the configuration for the local cache backend.
type Storage struct {
	// DB holds the cache database settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local sqlite cache.
type DB struct {
	// DSN is the sqlite data source name, normally the path of the cache
	// file (e.g. "/var/lib/health-keeper/cache.db"). In-memory DSNs are
	// rejected: an offline-first cache that vanishes on restart defeats
	// its purpose.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Sync holds the tuning knobs of the synchronization engine.
type Sync struct {
	// UploadConcurrency caps the number of simultaneous in-flight upload
	// requests in one wave.
	// Env: SYNC_UPLOAD_CONCURRENCY
	UploadConcurrency int `env:"UPLOAD_CONCURRENCY"`

	// Interval defines how often the periodic worker runs a full sync
	// (e.g. "5m").
	// Env: SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`

	// ProbeInterval defines how often the reachability monitor probes the
	// remote service (e.g. "30s").
	// Env: SYNC_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// FetchRetries is the number of attempts for a remote snapshot fetch
	// before the refresh gives up (transient failures only).
	// Env: SYNC_FETCH_RETRIES
	FetchRetries int `env:"FETCH_RETRIES"`
}

// GetStructuredConfig loads, merges, and validates the agent configuration
// from all available sources. A field set by an earlier source is not
// overridden by a later one, so the effective priority is:
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}
