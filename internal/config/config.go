package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Queue    QueueConfig    `mapstructure:"queue" validate:"required"`
	Labeler  LabelerConfig  `mapstructure:"labeler" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
	// TokenLifetimeMinutes controls how long issued annotator tokens stay valid.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// RetryPolicy selects what the consumer does with the queue message when the
// labeling invocation itself fails (the task is reverted to uploaded either way).
type RetryPolicy string

// Possible retry policy values.
const (
	// RetryPolicyRevertAndAck acknowledges the message after reverting the
	// task; the task is picked up again by a later publish batch.
	RetryPolicyRevertAndAck RetryPolicy = "revert_and_ack"

	// RetryPolicyRequeue returns the message to the queue for redelivery,
	// up to the broker's redelivery cap, after which it is dead-lettered.
	RetryPolicyRequeue RetryPolicy = "requeue"
)

// QueueConfig contains the durable work queue settings shared by the
// publisher and consumer.
type QueueConfig struct {
	// Name of the single work queue.
	Name string `mapstructure:"name" validate:"required"`

	// LeaseSeconds is how long a claimed message stays invisible to other
	// consumers before it becomes redeliverable.
	LeaseSeconds int `mapstructure:"lease_seconds" validate:"required,gt=0"`

	// MaxRedeliveries caps how many times a message may be redelivered
	// before it is dead-lettered.
	MaxRedeliveries int `mapstructure:"max_redeliveries" validate:"gte=0"`

	// BatchSize is the default number of uploaded tasks a publish cycle reads.
	BatchSize int `mapstructure:"batch_size" validate:"required,gt=0"`

	// RetryPolicy selects the labeling-failure handling mode.
	RetryPolicy RetryPolicy `mapstructure:"retry_policy" validate:"required,oneof=revert_and_ack requeue"`

	// StuckTaskAgeMinutes is how long a task may sit in processing before
	// the sweeper reverts it to uploaded.
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"required,gt=0"`

	// SweepIntervalMinutes is how often the sweeper runs.
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes" validate:"required,gt=0"`
}

// StuckTaskAge returns the configured stuck-task age as a duration.
func (c QueueConfig) StuckTaskAge() time.Duration {
	return time.Duration(c.StuckTaskAgeMinutes) * time.Minute
}

// SweepInterval returns the configured sweep interval as a duration.
func (c QueueConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}

// Lease returns the configured message lease as a duration.
func (c QueueConfig) Lease() time.Duration {
	return time.Duration(c.LeaseSeconds) * time.Second
}

// LabelerConfig contains the automated-labeling integration settings.
type LabelerConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name" validate:"required"`

	// MaxRetries is how many times a transient model error is retried.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0"`

	// RetryDelaySeconds is the base delay for exponential backoff between retries.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}
