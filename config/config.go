// Package config provides YAML and environment based configuration loading.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/nixxel-company-limited/ecr-task-server/ecr"
)

// EnvPrefix is the prefix of environment overrides, e.g. ECR_LOG_LEVEL=debug
const EnvPrefix = "ECR"

// Config is the root application configuration
type Config struct {
	Server   ServerConfig  `mapstructure:"server"`
	Device   DeviceConfig  `mapstructure:"device"`
	Log      LogConfig     `mapstructure:"log"`
	Metrics  MetricsConfig `mapstructure:"metrics"`
	Messages ecr.Messages  `mapstructure:"messages"`
}

// ServerConfig configures the TCP task listener
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// DeviceConfig selects and configures the register driver
type DeviceConfig struct {
	// Driver names the driver implementation; only "simulator" is bundled
	Driver string `mapstructure:"driver"`
	// Settings is passed verbatim to the driver; empty keeps driver defaults
	Settings string `mapstructure:"settings"`
}

// LogConfig defines logger settings
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Outputs: stdout, stderr or file paths
	Outputs     []string       `mapstructure:"outputs"`
	Rotation    RotationConfig `mapstructure:"rotation"`
	Development bool           `mapstructure:"development"`
}

// RotationConfig controls log file rotation for file outputs
type RotationConfig struct {
	Enable     bool `mapstructure:"enable"`
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	Compress   bool `mapstructure:"compress"`
}

// MetricsConfig configures the Prometheus endpoint; an empty address disables it
type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// Default returns a Config populated with defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{Address: "localhost:9100"},
		Device: DeviceConfig{Driver: "simulator"},
		Log: LogConfig{
			Level:   "info",
			Format:  "console",
			Outputs: []string{"stdout"},
			Rotation: RotationConfig{
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
		Messages: ecr.DefaultMessages(),
	}
}

// Load reads configuration from path when given, otherwise from ecr.yaml in
// the working directory or ./configs if present. Environment variables
// override both; SERVER_ADDRESS is honoured for the listen address.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("server.address", EnvPrefix+"_SERVER_ADDRESS", "SERVER_ADDRESS"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	v.SetDefault("server.address", cfg.Server.Address)
	v.SetDefault("device.driver", cfg.Device.Driver)
	v.SetDefault("device.settings", cfg.Device.Settings)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)
	v.SetDefault("metrics.address", cfg.Metrics.Address)

	m := cfg.Messages
	v.SetDefault("messages.init_failure", m.InitFailure)
	v.SetDefault("messages.incorrect_settings", m.IncorrectSettings)
	v.SetDefault("messages.error_code", m.ErrorCode)
	v.SetDefault("messages.incorrect_product_name", m.IncorrectProductName)
	v.SetDefault("messages.incorrect_product_price", m.IncorrectProductPrice)
	v.SetDefault("messages.incorrect_product_quantity", m.IncorrectProductQuantity)
	v.SetDefault("messages.payment_incorrect", m.PaymentIncorrect)
	v.SetDefault("messages.type_close_incorrect", m.TypeCloseIncorrect)
	v.SetDefault("messages.incorrect_cash_amount", m.IncorrectCashAmount)
	v.SetDefault("messages.unsupported_operation", m.UnsupportedOperation)
	v.SetDefault("messages.unsupported_report", m.UnsupportedReport)

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ecr")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}

	if strings.TrimSpace(c.Server.Address) == "" {
		return errors.New("server.address must not be empty")
	}

	c.Device.Driver = strings.ToLower(strings.TrimSpace(c.Device.Driver))
	if c.Device.Driver != "simulator" {
		return fmt.Errorf("unsupported device.driver: %q", c.Device.Driver)
	}

	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	return nil
}
