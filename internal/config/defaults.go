package config

import "time"

// Default engine tuning. The upload concurrency of 5 keeps large pending
// sets from opening one connection per record on constrained mobile
// hardware; the other values balance freshness against battery and radio
// usage.
const (
	DefaultUploadConcurrency = 5
	DefaultSyncInterval      = 5 * time.Minute
	DefaultProbeInterval     = 30 * time.Second
	DefaultFetchRetries      = 3
	DefaultRequestTimeout    = 30 * time.Second
)

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		Adapter: Adapter{
			RequestTimeout: DefaultRequestTimeout,
		},
		Sync: Sync{
			UploadConcurrency: DefaultUploadConcurrency,
			Interval:          DefaultSyncInterval,
			ProbeInterval:     DefaultProbeInterval,
			FetchRetries:      DefaultFetchRetries,
		},
	}
}
