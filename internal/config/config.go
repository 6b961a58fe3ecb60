package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Addr             string        `mapstructure:"ADDR"`
	Env              string        `mapstructure:"ENV"`
	EmailAPIURL      string        `mapstructure:"EMAIL_API_URL"`
	EmailAPIKey      string        `mapstructure:"EMAIL_API_KEY"`
	EmailFromName    string        `mapstructure:"EMAIL_FROM_NAME"`
	EmailFromAddress string        `mapstructure:"EMAIL_FROM_ADDRESS"`
	IntakeInbox      string        `mapstructure:"INTAKE_INBOX"`
	SubmitTimeout    time.Duration `mapstructure:"SUBMIT_TIMEOUT"`
	ClinicName       string        `mapstructure:"CLINIC_NAME"`
	ClinicTimezone   string        `mapstructure:"CLINIC_TIMEZONE"`
	ClinicPhone      string        `mapstructure:"CLINIC_PHONE"`
	SessionTTL       time.Duration `mapstructure:"SESSION_TTL"`
	SessionCacheSize int           `mapstructure:"SESSION_CACHE_SIZE"`
	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
}

var keys = []string{
	"ADDR",
	"ENV",
	"EMAIL_API_URL",
	"EMAIL_API_KEY",
	"EMAIL_FROM_NAME",
	"EMAIL_FROM_ADDRESS",
	"INTAKE_INBOX",
	"SUBMIT_TIMEOUT",
	"CLINIC_NAME",
	"CLINIC_TIMEZONE",
	"CLINIC_PHONE",
	"SESSION_TTL",
	"SESSION_CACHE_SIZE",
	"REDIS_ADDR",
}

// Load reads the environment and an optional .env file in the working directory
func Load() (*Config, error) {
	return load(".env")
}

func load(file string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(file)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("ADDR", ":8080")
	v.SetDefault("ENV", "production")
	v.SetDefault("EMAIL_API_URL", "https://api.resend.com/emails")
	v.SetDefault("EMAIL_FROM_NAME", "TMS Intake")
	v.SetDefault("SUBMIT_TIMEOUT", "20s")
	v.SetDefault("CLINIC_NAME", "TMS of Emerald Coast")
	v.SetDefault("CLINIC_TIMEZONE", "America/Chicago")
	v.SetDefault("CLINIC_PHONE", "850-254-9575")
	v.SetDefault("SESSION_TTL", "2h")
	v.SetDefault("SESSION_CACHE_SIZE", 1024)

	for _, key := range keys {
		v.BindEnv(key)
	}

	// .env is optional, but a present one must parse
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Location resolves the clinic time zone that defines "today" for date rules
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ClinicTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid CLINIC_TIMEZONE %q: %w", c.ClinicTimezone, err)
	}
	return loc, nil
}

// Validate checks that the configuration is safe to serve with. Outside
// development the email credential and addresses must be present.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.SubmitTimeout <= 0 {
		return fmt.Errorf("SUBMIT_TIMEOUT must be positive, got %s", c.SubmitTimeout)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.SessionCacheSize <= 0 {
		return fmt.Errorf("SESSION_CACHE_SIZE must be positive, got %d", c.SessionCacheSize)
	}
	if c.IsDev() {
		return nil
	}
	if c.EmailAPIKey == "" {
		return fmt.Errorf("EMAIL_API_KEY is required when ENV=%q", c.Env)
	}
	if c.EmailFromAddress == "" {
		return fmt.Errorf("EMAIL_FROM_ADDRESS is required when ENV=%q", c.Env)
	}
	if c.IntakeInbox == "" {
		return fmt.Errorf("INTAKE_INBOX is required when ENV=%q", c.Env)
	}
	return nil
}
