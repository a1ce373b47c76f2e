package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aditya-max148/student-risk-dashboard/internal/config"
	"github.com/Aditya-max148/student-risk-dashboard/internal/infrastructure/monitoring"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

var configFile string

// rootCmd represents the base command when the `risk-admin` binary is called without any subcommands.
// rootCmd 代表在没有任何子命令的情况下调用 `risk-admin` 二进制文件时的基本命令。
var rootCmd = &cobra.Command{
	Use:   "risk-admin",
	Short: "A CLI tool for administering the student-risk service.",
	Long: `risk-admin performs administrative tasks against the student-risk service:
evaluating metric files offline, reading and replacing the risk thresholds,
and minting admin tokens for the HTTP API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./config.yaml or /etc/student-risk/config.yaml)")
}

// Execute adds all child commands to the root command and runs it.
// 如果发生错误，它会打印错误并退出。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration the same way the server does; CLI
// output stays quiet unless something fails.
func loadConfig() (*config.Config, logger.Logger, error) {
	log, err := monitoring.NewZapLogger(&config.LogConfig{Level: "warn", Format: "console"})
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.NewLoader(log, configFile).Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
