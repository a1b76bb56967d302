package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"desideri-go/internal/app"
	"desideri-go/internal/domain"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

var rootCmd = &cobra.Command{
	Use:   "desideri",
	Short: "Restaurant order management service",
	Long: `desideri routes dishes to kitchen, grill and cashier, tracks each
dish through service and serves the order boards over a JSON API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return initConfig()
	},
}

// Execute runs the root command. Called once by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./desideri.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (json, text)")
}

func setupLogging() {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if logFormat == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	slog.SetDefault(logger)
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/desideri")
		viper.SetConfigName("desideri")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DESIDERI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
		logger.Debug("no config file, using defaults and environment")
		return nil
	}
	logger.Info("config loaded", "file", viper.ConfigFileUsed())
	return nil
}

func setDefaults() {
	viper.SetDefault("addr", ":8080")
	viper.SetDefault("base_url", "http://localhost:8080")

	viper.SetDefault("db.driver", "sqlite3")
	viper.SetDefault("db.dsn", "desideri.db")

	viper.SetDefault("amqp.url", "")
	viper.SetDefault("amqp.exchange", "desideri.events")

	viper.SetDefault("catalog_file", "")

	viper.SetDefault("session.hash_key_hex", "")
	viper.SetDefault("session.ttl", "24h")

	viper.SetDefault("role_password.cassiere", "cassa123")
	viper.SetDefault("role_password.bracerista", "brace123")
	viper.SetDefault("role_password.cuoca", "cucina123")
	viper.SetDefault("role_password.cameriere", "cameriere123")
}

func loadConfig() (app.Config, error) {
	cfg := app.Config{
		Addr:         viper.GetString("addr"),
		BaseURL:      viper.GetString("base_url"),
		DBDriver:     viper.GetString("db.driver"),
		DBDSN:        viper.GetString("db.dsn"),
		AMQPURL:      viper.GetString("amqp.url"),
		AMQPExchange: viper.GetString("amqp.exchange"),
		CatalogFile:  viper.GetString("catalog_file"),
		SessionTTL:   viper.GetDuration("session.ttl"),

		RolePasswords: map[domain.Role]string{},
	}

	if hk := strings.TrimSpace(viper.GetString("session.hash_key_hex")); hk != "" {
		b, err := hex.DecodeString(hk)
		if err != nil {
			return cfg, fmt.Errorf("session.hash_key_hex: %w", err)
		}
		cfg.SessionHashKey = b
	}

	for _, role := range domain.Roles {
		if pw := viper.GetString("role_password." + string(role)); pw != "" {
			cfg.RolePasswords[role] = pw
		}
	}
	return cfg, nil
}
