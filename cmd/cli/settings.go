package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	appservice "github.com/Aditya-max148/student-risk-dashboard/internal/application/service"
	domainservice "github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
	"github.com/Aditya-max148/student-risk-dashboard/internal/infrastructure/messaging"
	"github.com/Aditya-max148/student-risk-dashboard/internal/infrastructure/persistence/postgres"
	"github.com/Aditya-max148/student-risk-dashboard/internal/infrastructure/persistence/redis"
)

// settingsCmd groups the threshold commands.
// settingsCmd 阈值配置相关命令。
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read or replace the risk thresholds stored in the database",
}

// withSettingsService opens the database from config and hands fn a settings
// service. Replacements are published to Kafka when it is enabled so running
// servers drop their cached copy.
func withSettingsService(ctx context.Context, fn func(appservice.SettingsAppService) error) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := postgres.NewDBConnection(ctx, &cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	var publisher domainservice.EventPublisher = messaging.NewLogPublisher(log)
	if cfg.Kafka.Enabled {
		publisher = messaging.NewKafkaPublisher(cfg.Kafka, log)
	}
	defer publisher.Close()

	svc := appservice.NewSettingsAppService(
		postgres.NewSettingsRepository(db.DB(), log),
		redis.NewSettingsCache(nil, time.Second, log),
		publisher,
		nil,
		log,
	)
	return fn(svc)
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the active thresholds as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSettingsService(cmd.Context(), func(svc appservice.SettingsAppService) error {
				settings, err := svc.GetSettings(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd, settings)
			})
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	var updatedBy string
	cmd := &cobra.Command{
		Use:   "set FILE",
		Short: "Replace the thresholds with the full config in FILE (JSON)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readThresholds(args[0])
			if err != nil {
				return err
			}
			// Validate before touching the database.
			if err := domainservice.ValidateThresholds(cfg); err != nil {
				return err
			}
			return withSettingsService(cmd.Context(), func(svc appservice.SettingsAppService) error {
				settings, err := svc.ReplaceThresholds(cmd.Context(), cfg, updatedBy)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "thresholds replaced, version %d\n", settings.Version)
				return printJSON(cmd, settings)
			})
		},
	}
	cmd.Flags().StringVar(&updatedBy, "by", "risk-admin", "name recorded as updated_by")
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	settingsCmd.AddCommand(newSettingsGetCmd(), newSettingsSetCmd())
	rootCmd.AddCommand(settingsCmd)
}
