// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of the configuration file. The same
// structure is read from JSON and from YAML.
type fileConfig struct {
	App struct {
		TokenSignKey      string   `json:"token_sign_key" yaml:"token_sign_key"`
		TokenIssuer       string   `json:"token_issuer" yaml:"token_issuer"`
		TokenDuration     Duration `json:"token_duration" yaml:"token_duration"`
		AuthToken         string   `json:"auth_token" yaml:"auth_token"`
		DeviceID          string   `json:"device_id" yaml:"device_id"`
		PrimaryDevice     bool     `json:"primary_device" yaml:"primary_device"`
		StoragePassphrase string   `json:"storage_passphrase" yaml:"storage_passphrase"`
		StorageSalt       string   `json:"storage_salt" yaml:"storage_salt"`
		Version           string   `json:"version" yaml:"version"`
	} `json:"app" yaml:"app"`
	Storage struct {
		DB struct {
			DSN    string `json:"dsn" yaml:"dsn"`
			Driver string `json:"driver" yaml:"driver"`
		} `json:"db" yaml:"db"`
		KV struct {
			Backend string `json:"backend" yaml:"backend"`
			Path    string `json:"path" yaml:"path"`
		} `json:"kv" yaml:"kv"`
	} `json:"storage" yaml:"storage"`
	Server struct {
		HTTPAddress    string   `json:"http_address" yaml:"http_address"`
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
	} `json:"server" yaml:"server"`
	Adapter struct {
		HTTPAddress    string   `json:"http_address" yaml:"http_address"`
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
		RateLimit      float64  `json:"rate_limit" yaml:"rate_limit"`
		RateBurst      int      `json:"rate_burst" yaml:"rate_burst"`
	} `json:"adapter" yaml:"adapter"`
	Sync struct {
		DebounceInterval        Duration `json:"debounce_interval" yaml:"debounce_interval"`
		MaxConsecutiveConflicts int      `json:"max_consecutive_conflicts" yaml:"max_consecutive_conflicts"`
		BatchSize               int      `json:"batch_size" yaml:"batch_size"`
		ConstrainedBatchSize    int      `json:"constrained_batch_size" yaml:"constrained_batch_size"`
		MemoryConstrained       bool     `json:"memory_constrained" yaml:"memory_constrained"`
		RetryAttempts           int      `json:"retry_attempts" yaml:"retry_attempts"`
		RetryBaseDelay          Duration `json:"retry_base_delay" yaml:"retry_base_delay"`
	} `json:"sync" yaml:"sync"`
	Workers struct {
		RestoreInterval           Duration `json:"restore_interval" yaml:"restore_interval"`
		SyncMessagesInterval      Duration `json:"sync_messages_interval" yaml:"sync_messages_interval"`
		CallLinkCleanupInterval   Duration `json:"call_link_cleanup_interval" yaml:"call_link_cleanup_interval"`
		CallLinkDeletionThreshold Duration `json:"call_link_deletion_threshold" yaml:"call_link_deletion_threshold"`
	} `json:"workers" yaml:"workers"`
	Telemetry struct {
		OTLPEndpoint string `json:"otlp_endpoint" yaml:"otlp_endpoint"`
		Insecure     bool   `json:"insecure" yaml:"insecure"`
		ServiceName  string `json:"service_name" yaml:"service_name"`
	} `json:"telemetry" yaml:"telemetry"`
}

// parseFile reads a configuration file. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func parseFile(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading a config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err = yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("error decoding yaml configs: %w", err)
		}
	default:
		if err = json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("error decoding json configs: %w", err)
		}
	}

	return fc.toStructured(), nil
}

func (fc *fileConfig) toStructured() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenSignKey:      fc.App.TokenSignKey,
			TokenIssuer:       fc.App.TokenIssuer,
			TokenDuration:     time.Duration(fc.App.TokenDuration),
			AuthToken:         fc.App.AuthToken,
			DeviceID:          fc.App.DeviceID,
			PrimaryDevice:     fc.App.PrimaryDevice,
			StoragePassphrase: fc.App.StoragePassphrase,
			StorageSalt:       fc.App.StorageSalt,
			Version:           fc.App.Version,
		},
		Storage: Storage{
			DB: DB{DSN: fc.Storage.DB.DSN, Driver: fc.Storage.DB.Driver},
			KV: KV{Backend: fc.Storage.KV.Backend, Path: fc.Storage.KV.Path},
		},
		Server: Server{
			HTTPAddress:    fc.Server.HTTPAddress,
			RequestTimeout: time.Duration(fc.Server.RequestTimeout),
		},
		Adapter: Adapter{
			HTTPAddress:    fc.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(fc.Adapter.RequestTimeout),
			RateLimit:      fc.Adapter.RateLimit,
			RateBurst:      fc.Adapter.RateBurst,
		},
		Sync: Sync{
			DebounceInterval:        time.Duration(fc.Sync.DebounceInterval),
			MaxConsecutiveConflicts: fc.Sync.MaxConsecutiveConflicts,
			BatchSize:               fc.Sync.BatchSize,
			ConstrainedBatchSize:    fc.Sync.ConstrainedBatchSize,
			MemoryConstrained:       fc.Sync.MemoryConstrained,
			RetryAttempts:           fc.Sync.RetryAttempts,
			RetryBaseDelay:          time.Duration(fc.Sync.RetryBaseDelay),
		},
		Workers: Workers{
			RestoreInterval:           time.Duration(fc.Workers.RestoreInterval),
			SyncMessagesInterval:      time.Duration(fc.Workers.SyncMessagesInterval),
			CallLinkCleanupInterval:   time.Duration(fc.Workers.CallLinkCleanupInterval),
			CallLinkDeletionThreshold: time.Duration(fc.Workers.CallLinkDeletionThreshold),
		},
		Telemetry: Telemetry{
			OTLPEndpoint: fc.Telemetry.OTLPEndpoint,
			Insecure:     fc.Telemetry.Insecure,
			ServiceName:  fc.Telemetry.ServiceName,
		},
	}
}

// Duration is a wrapper around time.Duration that supports unmarshaling from
// strings like "1h", "30s" in both JSON and YAML.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	tmp, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(tmp)
	return nil
}
