// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stacklok/sentinel/pkg/authserver"
	"github.com/stacklok/sentinel/pkg/authserver/directory"
	"github.com/stacklok/sentinel/pkg/crypto"
	"github.com/stacklok/sentinel/pkg/logger"
)

func newHashCmd() *cobra.Command {
	var unsalted bool
	cmd := &cobra.Command{
		Use:   "hash <text>",
		Short: "Hash a text with the configured algorithm",
		Long: `Hash a text with the configured SHA-2 algorithm. The result is base64 encoded
and carries a random salt unless --unsalted is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := providerFromConfig()
			if err != nil {
				return err
			}
			h, err := provider.CreateHash(args[0], !unsalted)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), h)
			return err
		},
	}
	cmd.Flags().BoolVar(&unsalted, "unsalted", false, "Produce a deterministic hash without salt")
	return cmd
}

func newVerifyHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-hash <text> <hash>",
		Short: "Check a text against a hash",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := providerFromConfig()
			if err != nil {
				return err
			}
			if !provider.ValidateHash(args[0], args[1]) {
				return fmt.Errorf("hash does not match")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "hash matches")
			return err
		},
	}
}

func newEncryptCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "encrypt <text>",
		Short: "Encrypt a text into a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := providerFromConfig()
			if err != nil {
				return err
			}
			ticket, err := provider.Encrypt(args[0], key)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), ticket)
			return err
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Encryption key")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newDecryptCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "decrypt <ticket>",
		Short: "Decrypt a ticket produced by encrypt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := providerFromConfig()
			if err != nil {
				return err
			}
			text, err := provider.Decrypt(args[0], key)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Encryption key")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newSecretCmd() *cobra.Command {
	var bits int
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Generate a client secret and its hash",
		Long: `Generate a random client secret. The first line is the secret to hand to the
client, the second line is the salted hash to put in the client's secret_hash setting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			provider, err := providerFromConfig()
			if err != nil {
				return err
			}
			secret, hash, err := provider.CreateHashWithText(bits)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", secret, hash)
			return err
		},
	}
	cmd.Flags().IntVar(&bits, "bits", directory.DefaultClientSecretBits, "Amount of randomness in the secret")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Produce a bcrypt hash for a user's password_hash setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := crypto.NewPasswordHasher(cost).Hash(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), h)
			return err
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost (default cost when zero)")
	return cmd
}

func providerFromConfig() (*crypto.SHA2Provider, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return authserver.NewProvider(cfg, crypto.WithLogger(logger.Get()))
}
