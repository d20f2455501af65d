// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app provides the entry point for the sentinel command-line application.
package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/sentinel/pkg/authserver"
	"github.com/stacklok/sentinel/pkg/config"
	"github.com/stacklok/sentinel/pkg/logger"
)

// NewRootCmd creates a new root command for the sentinel CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "sentinel",
		DisableAutoGenTag: true,
		Short:             "Sentinel - token issuing and credential verification engine",
		Long: `Sentinel issues and verifies authorization codes, access tokens and refresh tokens,
and authenticates users and OAuth clients against a static directory.

The commands operate on the engine configured by the --config file and SENTINEL_
environment variables. Token commands refuse to run unless a persistent storage
backend (sqlite or redis) is configured.`,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				logger.Errorf("Error displaying help: %v", err)
			}
		},
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.Initialize()
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	if err != nil {
		logger.Errorf("Error binding debug flag: %v", err)
	}

	rootCmd.PersistentFlags().StringP(config.KeyConfigFile, "c", "", "Path to the sentinel configuration file")
	err = viper.BindPFlag(config.KeyConfigFile, rootCmd.PersistentFlags().Lookup(config.KeyConfigFile))
	if err != nil {
		logger.Errorf("Error binding config flag: %v", err)
	}

	rootCmd.AddCommand(newHashCmd())
	rootCmd.AddCommand(newVerifyHashCmd())
	rootCmd.AddCommand(newEncryptCmd())
	rootCmd.AddCommand(newDecryptCmd())
	rootCmd.AddCommand(newSecretCmd())
	rootCmd.AddCommand(newHashPasswordCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newConfigCmd())

	// Silence printing the usage on error
	rootCmd.SilenceUsage = true

	return rootCmd
}

// loadConfig reads the configuration selected by --config and the environment.
func loadConfig() (*authserver.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("configuration loading failed: %w", err)
	}
	return cfg, nil
}
