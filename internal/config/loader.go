package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

// Loader reads configuration with viper and can watch the file for changes.
type Loader struct {
	v   *viper.Viper
	log logger.Logger
}

// NewLoader builds a Loader with defaults registered. configFile may be empty.
func NewLoader(log logger.Logger, configFile string) *Loader {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/student-risk/")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("STUDENT_RISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v, log: log}
}

// LoadConfig loads the configuration from file and environment variables.
func LoadConfig(log logger.Logger) (*Config, error) {
	return NewLoader(log, "").Load()
}

// Load reads the config file (if any), applies env overrides and validates.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		l.log.Info(context.Background(), "no config file found, using defaults and environment")
	}

	cfg, err := l.decode()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Watch calls onChange with the re-read configuration each time the file changes.
// Invalid reloads are logged and ignored.
func (l *Loader) Watch(onChange func(*Config)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := l.decode()
		if err != nil {
			l.log.Warn(context.Background(), "ignoring invalid config reload", logger.Fields{
				"file":  e.Name,
				"error": err.Error(),
			})
			return
		}
		l.log.Info(context.Background(), "config reloaded", logger.Fields{"file": e.Name, "op": e.Op.String()})
		onChange(cfg)
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.shutdown_timeout", 10)
	v.SetDefault("server.enable_pprof", false)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.database", "student_risk")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.sqlite_path", "student_risk.db")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", 30)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addresses", []string{"localhost:6379"})
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "student-risk-events")

	v.SetDefault("auth.jwt_secret", "change-me")
	v.SetDefault("auth.issuer", constants.ServiceName)
	v.SetDefault("auth.token_ttl", 3600)

	v.SetDefault("risk.batch_workers", constants.DefaultBatchWorkers)
	v.SetDefault("risk.cache_ttl", int(constants.DefaultSettingsCacheTTL.Seconds()))
	v.SetDefault("risk.weights.attendance", 1.0)
	v.SetDefault("risk.weights.exam", 1.0)
	v.SetDefault("risk.weights.fee", 1.0)

	v.SetDefault("alerts.sendgrid_api_key", "")
	v.SetDefault("alerts.twilio_account_sid", "")
	v.SetDefault("alerts.twilio_auth_token", "")
	v.SetDefault("alerts.twilio_from_number", "")
	v.SetDefault("alerts.from_email", "alerts@student-risk.local")
	v.SetDefault("alerts.from_name", "Student Risk Alerts")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.default_rpm", 600)
	v.SetDefault("rate_limit.alerts_rpm", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("tracing.service_name", constants.ServiceName)
	v.SetDefault("tracing.sample_rate", 0.1)
}
