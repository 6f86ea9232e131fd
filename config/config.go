// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"goobert/stats-api/pkg/util"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configFile      = pflag.String("config", "", "Path to a config file (defaults to ./config.toml)")
	validLogLevels  = []string{"debug", "info", "warn", "error", "fatal"}
	validDBDrivers  = []string{"sqlite", "postgres"}
	minFlushPeriod  = time.Second
	defaultExportTo = "exports"
)

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that. A missing config file is fine, every key has a default.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	// .env is optional, real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file, %w", err)
	}

	if *configFile != "" {
		v.SetConfigFile(*configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.cors", "host_cors")

	v.BindEnv("security.rate_limit", "security_rate_limit")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.path", "db_path")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("stats.flush_interval", "stats_flush_interval")

	v.BindEnv("export.dir", "export_dir")
	v.BindEnv("export.schedule", "export_schedule")

	v.BindEnv("export.s3.enabled", "export_s3_enabled")
	v.BindEnv("export.s3.bucket", "export_s3_bucket")
	v.BindEnv("export.s3.region", "export_s3_region")
	v.BindEnv("export.s3.endpoint", "export_s3_endpoint")
	v.BindEnv("export.s3.path_style", "export_s3_path_style")
	v.BindEnv("export.s3.prefix", "export_s3_prefix")
	v.BindEnv("export.s3.access_key_id", "export_s3_access_key_id")
	v.BindEnv("export.s3.secret_access_key", "export_s3_secret_access_key")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors", []string{"http://localhost:5000"})

	v.SetDefault("security.rate_limit", 20)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.path", util.DefaultDBPath())

	v.SetDefault("stats.flush_interval", 10*time.Second)

	v.SetDefault("export.dir", defaultExportTo)
	v.SetDefault("export.s3.enabled", false)
	v.SetDefault("export.s3.region", "auto")

	if err := v.ReadInConfig(); err != nil {
		var notFound v.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	return validate()
}

func validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetInt("security.rate_limit") <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	if !slices.Contains(validDBDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	switch v.GetString("db.driver") {
	case "sqlite":
		if v.GetString("db.path") == "" {
			return errors.New("db.path can't be empty")
		}
	case "postgres":
		if v.GetString("db.dsn") == "" {
			return errors.New("db.dsn can't be empty when using postgres")
		}
	}

	if v.GetDuration("stats.flush_interval") < minFlushPeriod {
		return fmt.Errorf("stats.flush_interval must be at least %s", minFlushPeriod)
	}

	if s := v.GetString("export.schedule"); s != "" {
		if _, err := cron.ParseStandard(s); err != nil {
			return fmt.Errorf("invalid export.schedule, %w", err)
		}
	}

	if v.GetBool("export.s3.enabled") {
		if v.GetString("export.s3.bucket") == "" {
			return errors.New("bucket can't be empty")
		}
		if v.GetString("export.s3.access_key_id") == "" {
			return errors.New("access key id can't be empty")
		}
		if v.GetString("export.s3.secret_access_key") == "" {
			return errors.New("secret access key can't be empty")
		}
	}

	return nil
}
