// Package config provides configuration loading, merging, and validation
// facilities for the sync agent.
//
// Configuration is assembled from multiple sources; a field set by an
// earlier source wins over later ones:
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//  4. Built-in defaults
//
// The main entry points are [GetStructuredConfig] for the raw merged
// configuration and [GetClientConfig] for the validated client view the
// agent runs on.
package config
