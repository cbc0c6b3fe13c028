// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/folio/internal/platform/sec"
)

// defaultIssuer matches the JWT_ISSUER default of the API server.
const defaultIssuer = "folio.app"

func newTokenCmd() *cobra.Command {
	var (
		keyPath  string
		userID   string
		username string
		issuer   string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for local development",
		Long: `token signs an RS256 access token with a private key, standing in for the
account service when exercising the API locally.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := sec.NewTokenSigner(keyPath, issuer)
			if err != nil {
				return err
			}
			token, err := signer.GenerateAccessToken(userID, username, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&keyPath, "key", "", "PEM-encoded RSA private key")
	cmd.Flags().StringVar(&userID, "user", "", "user id carried by the token")
	cmd.Flags().StringVar(&username, "username", "", "display name carried by the token")
	cmd.Flags().StringVar(&issuer, "issuer", defaultIssuer, "token issuer")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
