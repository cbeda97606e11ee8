package config

import (
	"fmt"
	"time"
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// AuthToken is the bearer token for the remote records service.
	// Empty means the engine starts in the auth-required state.
	AuthToken string
	// LogFile is the agent log file path; empty logs to stdout.
	LogFile string
	// Version is the application version string.
	Version string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the remote records API address used by the client.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientDB contains local cache database settings for the client.
type ClientDB struct {
	// DSN is the sqlite connection string (cache file path).
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientSync contains synchronization engine settings.
type ClientSync struct {
	// UploadConcurrency caps simultaneous in-flight uploads per wave.
	UploadConcurrency int
	// Interval defines how often the periodic full sync runs.
	Interval time.Duration
	// ProbeInterval defines how often reachability is probed.
	ProbeInterval time.Duration
	// FetchRetries bounds retries of a transiently failing snapshot fetch.
	FetchRetries int
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level client settings.
	App ClientApp
	// Adapter contains client transport addresses and timeouts.
	Adapter ClientAdapter
	// Storage contains client storage settings.
	Storage ClientStorage
	// Sync contains synchronization engine settings.
	Sync ClientSync
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, and validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			AuthToken: cfg.App.AuthToken,
			LogFile:   cfg.App.LogFile,
			Version:   cfg.App.Version,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Sync: ClientSync{
			UploadConcurrency: cfg.Sync.UploadConcurrency,
			Interval:          cfg.Sync.Interval,
			ProbeInterval:     cfg.Sync.ProbeInterval,
			FetchRetries:      cfg.Sync.FetchRetries,
		},
	}

	return clientCfg, clientCfg.validate()
}
