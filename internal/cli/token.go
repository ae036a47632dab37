package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deskline/support-portal/internal/auth"
)

var (
	tokenEmail string
	tokenName  string
	tokenTTL   time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Sign a bearer token for local testing",
	Long: `Sign a token with the configured secret, issuer and audience. The portal
creates the profile on first use when it does not exist yet.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenEmail == "" {
			return fmt.Errorf("--email is required")
		}
		tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience, tokenTTL)
		raw, expiresAt, err := tokens.GenerateToken(args[0], tokenEmail, tokenName)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), raw)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "e-mail claim")
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "display name claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
}
