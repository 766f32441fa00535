// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

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

// parseFlags parses all configuration flags from args.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-r remote store address used by the client
//	-d database DSN
//	-driver database driver (postgres, sqlite)
//	-kv local key-value backend (sqlite, leveldb)
//	-kv-path LevelDB directory
//	-c/-config JSON or YAML file path with configs
//	-token-sign-key token signing key
//	-token-issuer token issuer name
//	-token-duration token duration (e.g., "1h", "30m")
//	-token client bearer token
//	-device device id
//	-primary mark this device as primary
//	-passphrase storage key passphrase
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-debounce backup debounce interval
//	-otlp OTLP collector endpoint
//	-issue-token print a device token for <account>:<device> and exit
func parseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("go-storage-sync", flag.ContinueOnError)

	var serverAddress NetAddress
	var remoteAddress string
	var databaseDSN, driver string
	var kvBackend, kvPath string
	var configPath string
	var tokenSignKey, tokenIssuer string
	var tokenDuration time.Duration
	var authToken, deviceID, passphrase string
	var primary bool
	var requestTimeout, debounce time.Duration
	var otlpEndpoint string
	var issueToken string

	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.StringVar(&remoteAddress, "r", "", "Remote store address")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&driver, "driver", "", "Database driver (postgres, sqlite)")
	fs.StringVar(&kvBackend, "kv", "", "Key-value backend (sqlite, leveldb)")
	fs.StringVar(&kvPath, "kv-path", "", "LevelDB directory")
	fs.StringVar(&configPath, "c", "", "Config file path")
	fs.StringVar(&configPath, "config", "", "Config file path (alias)")
	fs.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	fs.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	fs.DurationVar(&tokenDuration, "token-duration", 0, "Token duration (e.g., 1h, 30m)")
	fs.StringVar(&authToken, "token", "", "Client bearer token")
	fs.StringVar(&deviceID, "device", "", "Device id")
	fs.BoolVar(&primary, "primary", false, "Primary device")
	fs.StringVar(&passphrase, "passphrase", "", "Storage key passphrase")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.DurationVar(&debounce, "debounce", 0, "Backup debounce interval")
	fs.StringVar(&otlpEndpoint, "otlp", "", "OTLP collector endpoint")
	fs.StringVar(&issueToken, "issue-token", "", "Print a token for <account>:<device> and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &StructuredConfig{
		App: App{
			TokenSignKey:      tokenSignKey,
			TokenIssuer:       tokenIssuer,
			TokenDuration:     tokenDuration,
			AuthToken:         authToken,
			DeviceID:          deviceID,
			PrimaryDevice:     primary,
			StoragePassphrase: passphrase,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN, Driver: driver},
			KV: KV{Backend: kvBackend, Path: kvPath},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Adapter: Adapter{
			HTTPAddress:    remoteAddress,
			RequestTimeout: requestTimeout,
		},
		Sync:           Sync{DebounceInterval: debounce},
		Telemetry:      Telemetry{OTLPEndpoint: otlpEndpoint},
		ConfigFilePath: configPath,
		IssueToken:     issueToken,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
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

	if host != "localhost" && host != "" {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
