// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stacklok/sentinel/pkg/authserver"
	"github.com/stacklok/sentinel/pkg/config"
	"github.com/stacklok/sentinel/pkg/logger"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the sentinel configuration",
	}
	cmd.AddCommand(newConfigValidateCmd())
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Long: `Load the configuration from --config and SENTINEL_ environment variables
and check it. Storage settings, hash settings and every registered client and user
are validated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				logger.Errorf("Configuration validation failed: %v", err)
				return err
			}

			logger.Debugw("configuration loaded", "storage", cfg.Storage.Type, "hash_algorithm", cfg.HashAlgorithm)
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Configuration is valid")
			_, _ = fmt.Fprintf(out, "  Storage: %s\n", cfg.Storage.Type)
			_, _ = fmt.Fprintf(out, "  Hash algorithm: %s\n", cfg.HashAlgorithm)
			_, _ = fmt.Fprintf(out, "  Users: %d\n", len(cfg.Users))
			_, _ = fmt.Fprintf(out, "  Clients: %d\n", len(cfg.Clients))
			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with the default settings",
		Long: `Write a configuration file holding the default settings. Without a path the
file is written to the per-user configuration directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				p, err := config.DefaultPath()
				if err != nil {
					return fmt.Errorf("unable to locate config directory: %w", err)
				}
				path = p
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite it", path)
			}
			if err := config.Write(path, authserver.DefaultConfig()); err != nil {
				return err
			}
			logger.Infof("Wrote default configuration to %s", path)
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
