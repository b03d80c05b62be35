// Package config loads and validates application configuration from
// environment variables (prefix PULSEPREP_) and an optional config file.
package config

// Config holds all application configuration, grouped by concern.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Distribute DistributeConfig `mapstructure:"distribute" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// DistributeConfig controls the daily distribution run.
type DistributeConfig struct {
	// WorkerCount caps how many per-user executions run concurrently.
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`

	// UserTimeoutSeconds bounds one per-user execution (content selection
	// and delivery are the unbounded-latency calls).
	UserTimeoutSeconds int `mapstructure:"user_timeout_seconds" validate:"required,gt=0"`

	// Hour is the UTC hour of the daily scheduled run.
	Hour int `mapstructure:"hour" validate:"gte=0,lte=23"`

	// DeliveryRetries is the number of additional delivery attempts after a
	// transient channel failure.
	DeliveryRetries int `mapstructure:"delivery_retries" validate:"gte=0"`
}

// GenerationConfig controls the generative content fallback.
type GenerationConfig struct {
	// Provider selects the backend: "gemini", "openai" or "" (disabled).
	Provider string `mapstructure:"provider" validate:"omitempty,oneof=gemini openai"`

	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	OpenAIAPIKey string `mapstructure:"openai_api_key"`

	// ModelName overrides the provider's default model.
	ModelName string `mapstructure:"model_name"`

	// MaxRetries and RetryDelaySeconds shape the backoff on transient
	// provider failures.
	MaxRetries        int `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=0"`

	// Topic seeds generated questions when the pool is exhausted.
	Topic string `mapstructure:"topic"`
}

// TelegramConfig controls the Telegram delivery channel adapter.
type TelegramConfig struct {
	// Token enables the adapter when non-empty.
	Token string `mapstructure:"token"`
}
