package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a remote records service address in format [host]:[port]
//	-d local cache sqlite DSN (cache file path)
//	-t bearer auth token for the remote service
//	-c/-config json file path with configs
//	-log-file agent log file path
//	-request-timeout outbound request timeout (e.g., "30s", "1m")
//	-sync-interval periodic full-sync interval (e.g., "5m")
//	-probe-interval reachability probe interval (e.g., "30s")
//	-upload-concurrency max simultaneous uploads per wave
//	-fetch-retries snapshot fetch attempts on transient failures
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var databaseDSN string
	var authToken string
	var jsonConfigPath string
	var logFile string
	var requestTimeout time.Duration
	var syncInterval time.Duration
	var probeInterval time.Duration
	var uploadConcurrency int
	var fetchRetries int

	flag.Var(&serverAddress, "a", "Remote records service address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Local cache sqlite DSN")
	flag.StringVar(&authToken, "t", "", "Bearer auth token")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&logFile, "log-file", "", "Agent log file path")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Periodic full-sync interval (e.g., 5m)")
	flag.DurationVar(&probeInterval, "probe-interval", 0, "Reachability probe interval (e.g., 30s)")
	flag.IntVar(&uploadConcurrency, "upload-concurrency", 0, "Max simultaneous uploads per wave")
	flag.IntVar(&fetchRetries, "fetch-retries", 0, "Snapshot fetch attempts on transient failures")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			AuthToken: authToken,
			LogFile:   logFile,
		},
		Adapter: Adapter{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Sync: Sync{
			UploadConcurrency: uploadConcurrency,
			Interval:          syncInterval,
			ProbeInterval:     probeInterval,
			FetchRetries:      fetchRetries,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
