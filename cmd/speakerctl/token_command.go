package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/speakerkit/auth/jwt"
	"github.com/kbukum/speakerkit/config"
	"github.com/kbukum/speakerkit/service"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var (
		configFile string
		secret     string
		subject    string
		scopes     []string
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for speakerd",
		Long: `Token signs a JWT with the shared secret speakerd validates against.

Without --secret the speakerd configuration is loaded (auth.jwt.* keys, or
AUTH_JWT_SECRET from the environment), so the method, issuer and audience
match the server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jwtCfg, err := tokenConfig(configFile, secret)
			if err != nil {
				return err
			}
			tokens, err := jwt.NewService(&jwtCfg, func() *jwt.Claims { return &jwt.Claims{} })
			if err != nil {
				return err
			}

			claims := &jwt.Claims{Scopes: scopes}
			claims.Subject = subject
			token, err := tokens.GenerateAccess(claims, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}

			if ctx.json {
				return writeJSON(cmd, map[string]any{
					"token":      token,
					"scopes":     scopes,
					"expires_at": claims.ExpiresAt,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "speakerd configuration file")
	cmd.Flags().StringVar(&secret, "secret", "", "HMAC secret (at least 32 bytes)")
	cmd.Flags().StringVar(&subject, "subject", "speakerctl", "Token subject")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{jwt.ScopeRead, jwt.ScopeWrite}, "Granted scopes")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default: server access_token_ttl)")
	return cmd
}

// tokenConfig resolves the JWT settings from the speakerd config, with
// secret taking precedence when set.
func tokenConfig(configFile, secret string) (jwt.Config, error) {
	var cfg service.Config
	var opts []config.Option
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if err := config.LoadConfig("speakerd", &cfg, opts...); err != nil {
		return jwt.Config{}, err
	}
	jwtCfg := cfg.Auth.JWT
	if secret != "" {
		jwtCfg.Secret = secret
	}
	jwtCfg.ApplyDefaults()
	if err := jwtCfg.Validate(); err != nil {
		return jwt.Config{}, err
	}
	return jwtCfg, nil
}
