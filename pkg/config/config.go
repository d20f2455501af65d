// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the engine configuration from a YAML file, SENTINEL_
// environment variables and flags bound into viper, and writes it back out.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/sentinel/pkg/authserver"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SENTINEL"

// KeyConfigFile is the viper key holding the configuration file path.
const KeyConfigFile = "config"

// DefaultPath returns the per-user configuration file location.
func DefaultPath() (string, error) {
	return xdg.ConfigFile("sentinel/config.yaml")
}

// setDefaults registers every leaf key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	d := authserver.DefaultConfig()
	v.SetDefault("access_token_lifetime", d.AccessTokenLifetime)
	v.SetDefault("authorization_code_lifetime", d.AuthorizationCodeLifetime)
	v.SetDefault("refresh_token_lifetime", d.RefreshTokenLifetime)
	v.SetDefault("maximum_clock_skew", d.MaximumClockSkew)
	v.SetDefault("salt_byte_size", d.SaltByteSize)
	v.SetDefault("hash_algorithm", string(d.HashAlgorithm))
	v.SetDefault("token_bits", d.TokenBits)
	v.SetDefault("rotate_refresh_tokens", d.RotateRefreshTokens)
	v.SetDefault("ticket_encryption_key", d.TicketEncryptionKey)
	v.SetDefault("storage.type", string(d.Storage.Type))
	v.SetDefault("storage.cleanup_interval", d.Storage.CleanupInterval)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.redis.addr", "")
	v.SetDefault("storage.redis.username", "")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.key_prefix", "")
}

// Load reads the configuration. The file named by the "config" key is
// optional; environment variables such as SENTINEL_STORAGE_TYPE override
// file values. The result is validated.
func Load(v *viper.Viper) (*authserver.Config, error) {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := v.GetString(KeyConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &authserver.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Write serializes cfg as YAML to path, creating parent directories.
func Write(path string, cfg *authserver.Config) error {
	if cfg == nil {
		cfg = authserver.DefaultConfig()
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error serializing config file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
