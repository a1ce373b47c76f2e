package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aditya-max148/student-risk-dashboard/internal/infrastructure/crypto"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed admin token for the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return fmt.Errorf("--subject is required")
			}
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			jwtManager, err := crypto.NewJWTManager(cfg.Auth)
			if err != nil {
				return err
			}
			token, err := jwtManager.GenerateJWT(subject, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject, recorded as updated_by on settings changes")
	cmd.Flags().StringVar(&role, "role", constants.AdminRole, "role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default: auth.token_ttl)")
	return cmd
}

func init() {
	rootCmd.AddCommand(newTokenCmd())
}
