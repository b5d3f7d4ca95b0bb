// Package config loads server settings from defaults, an optional YAML file
// and NAJDENO_* environment variables, in increasing order of precedence.
// Command-line flags bound to the returned viper instance win over all three.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys shared with the command-line flags.
const (
	KeyAddr          = "addr"
	KeyDB            = "db"
	KeyLog           = "log"
	KeyLogFormat     = "log_format"
	KeyJWTSecret     = "jwt.secret"
	KeyJWTExpiration = "jwt.expiration"
	KeyAdminEmail    = "admin.email"
	KeyCORSOrigins   = "cors.origins"
	KeyAuthRate      = "ratelimit.auth_per_minute"
	KeyUploadMax     = "upload.max_bytes"
)

// EnvPrefix is prepended to every environment variable, e.g. NAJDENO_JWT_SECRET.
const EnvPrefix = "NAJDENO"

// Config is the resolved server configuration.
type Config struct {
	Addr      string `mapstructure:"addr"`
	DB        string `mapstructure:"db"`
	Log       string `mapstructure:"log"`
	LogFormat string `mapstructure:"log_format"`
	JWT       struct {
		// Secret signs tokens. Empty means use the secret persisted in the database.
		Secret     string        `mapstructure:"secret"`
		Expiration time.Duration `mapstructure:"expiration"`
	} `mapstructure:"jwt"`
	Admin struct {
		Email string `mapstructure:"email"`
	} `mapstructure:"admin"`
	CORS struct {
		Origins []string `mapstructure:"origins"`
	} `mapstructure:"cors"`
	RateLimit struct {
		AuthPerMinute int `mapstructure:"auth_per_minute"`
	} `mapstructure:"ratelimit"`
	Upload struct {
		MaxBytes int64 `mapstructure:"max_bytes"`
	} `mapstructure:"upload"`
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyAddr, ":8080")
	v.SetDefault(KeyDB, "najdeno.sqlite3")
	v.SetDefault(KeyLog, "")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyJWTSecret, "")
	v.SetDefault(KeyJWTExpiration, 24*time.Hour)
	v.SetDefault(KeyAdminEmail, "admin@najdeno.local")
	v.SetDefault(KeyCORSOrigins, []string{"*"})
	v.SetDefault(KeyAuthRate, 20)
	v.SetDefault(KeyUploadMax, 5<<20)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file into v when file is set and returns the validated config.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.DB == "" {
		errs = append(errs, errors.New("db must not be empty"))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	if c.JWT.Expiration <= 0 {
		errs = append(errs, fmt.Errorf("jwt.expiration must be positive, got %s", c.JWT.Expiration))
	}
	if c.RateLimit.AuthPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("ratelimit.auth_per_minute must be positive, got %d", c.RateLimit.AuthPerMinute))
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("upload.max_bytes must be positive, got %d", c.Upload.MaxBytes))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
