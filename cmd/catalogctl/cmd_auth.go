package main

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvaleed/mjcatalog/internal/auth"
)

func (c *cli) tokenCmd() *cobra.Command {
	var (
		clientID string
		scopes   []string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an access token with JWT_SECRET_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if clientID == "" {
				clientID = cfg.APIClientID
			}
			if ttl <= 0 {
				ttl = cfg.AccessTokenTTL
			}
			for _, s := range scopes {
				if s != auth.ScopeCatalogRead && s != auth.ScopeCatalogWrite {
					return fmt.Errorf("unknown scope %q", s)
				}
			}

			jwtCfg := auth.DefaultJWTConfig()
			jwtCfg.SecretKey = cfg.JWTSecretKey
			jwtCfg.AccessTokenTTL = ttl

			token, expiresAt, err := auth.NewJWTManager(jwtCfg).GenerateAccessToken(auth.TokenPayload{
				ClientID: clientID,
				Scopes:   scopes,
			})
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "Client id (default API_CLIENT_ID)")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{auth.ScopeCatalogRead, auth.ScopeCatalogWrite}, "Scopes to grant")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default ACCESS_TOKEN_TTL)")
	return cmd
}

func (c *cli) hashSecretCmd() *cobra.Command {
	var generate bool

	cmd := &cobra.Command{
		Use:   "hash-secret [secret]",
		Short: "Print the bcrypt hash for API_CLIENT_SECRET_HASH",
		Long: `Hashes the secret given as an argument or read from stdin.
With --generate a random secret is created and printed before its hash.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var secret string
			switch {
			case generate:
				buf := make([]byte, 32)
				if _, err := rand.Read(buf); err != nil {
					return fmt.Errorf("generate secret: %w", err)
				}
				secret = base64.RawURLEncoding.EncodeToString(buf)
				fmt.Fprintf(cmd.OutOrStdout(), "secret: %s\n", secret)
			case len(args) == 1:
				secret = args[0]
			default:
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read secret from stdin: %w", err)
				}
				secret = strings.TrimRight(line, "\r\n")
			}

			if err := auth.ValidateSecretStrength(secret); err != nil {
				return err
			}
			hash, err := auth.HashSecret(secret)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "hash: %s\n", hash)
			return nil
		},
	}
	cmd.Flags().BoolVar(&generate, "generate", false, "Generate a random secret")
	return cmd
}
