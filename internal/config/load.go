package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for all environment variables the application reads,
// e.g. LABELWISE_DATABASE_URL maps to the database.url key.
const envPrefix = "LABELWISE"

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take precedence
// over values from config files. Returns a populated Config struct or an
// error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults for everything that has a sensible one; secrets and
	// connection strings must come from the environment.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("queue.name", "auto_labeling_queue")
	v.SetDefault("queue.lease_seconds", 300)
	v.SetDefault("queue.max_redeliveries", 3)
	v.SetDefault("queue.batch_size", 100)
	v.SetDefault("queue.retry_policy", string(RetryPolicyRevertAndAck))
	v.SetDefault("queue.stuck_task_age_minutes", 30)
	v.SetDefault("queue.sweep_interval_minutes", 5)
	v.SetDefault("labeler.model_name", "gemini-2.0-flash")
	v.SetDefault("labeler.max_retries", 3)
	v.SetDefault("labeler.retry_delay_seconds", 2)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine; the environment alone may be complete.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Viper only knows about keys it has seen; bind the env-only ones
	// explicitly so AutomaticEnv picks them up during Unmarshal.
	for _, key := range []string{
		"server.port", "server.log_level",
		"database.url",
		"auth.jwt_secret", "auth.token_lifetime_minutes",
		"queue.name", "queue.lease_seconds", "queue.max_redeliveries",
		"queue.batch_size", "queue.retry_policy",
		"queue.stuck_task_age_minutes", "queue.sweep_interval_minutes",
		"labeler.gemini_api_key", "labeler.model_name",
		"labeler.max_retries", "labeler.retry_delay_seconds",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
