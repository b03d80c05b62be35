package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and, when present, a
// config.yaml in the working directory. Environment variables take
// precedence over file values. Returns a validated Config or an error
// describing every failed field.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No file is fine; env vars alone can carry the config.
	}

	v.SetEnvPrefix("PULSEPREP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv does not register keys for Unmarshal, so bind the ones we
	// read explicitly.
	for _, key := range []string{
		"server.port", "server.log_level",
		"database.url",
		"distribute.worker_count", "distribute.user_timeout_seconds",
		"distribute.hour", "distribute.delivery_retries",
		"generation.provider", "generation.gemini_api_key",
		"generation.openai_api_key", "generation.model_name",
		"generation.max_retries", "generation.retry_delay_seconds",
		"generation.topic",
		"telegram.token",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("distribute.worker_count", 10)
	v.SetDefault("distribute.user_timeout_seconds", 30)
	v.SetDefault("distribute.hour", 9)
	v.SetDefault("distribute.delivery_retries", 2)
	v.SetDefault("generation.max_retries", 3)
	v.SetDefault("generation.retry_delay_seconds", 2)
}

func validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return fmt.Errorf("config validation setup failed: %w", err)
		}

		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Cross-field rule the struct tags cannot express: an enabled provider
	// needs its API key.
	switch cfg.Generation.Provider {
	case "gemini":
		if cfg.Generation.GeminiAPIKey == "" {
			return fmt.Errorf("invalid configuration: generation.gemini_api_key required for gemini provider")
		}
	case "openai":
		if cfg.Generation.OpenAIAPIKey == "" {
			return fmt.Errorf("invalid configuration: generation.openai_api_key required for openai provider")
		}
	}

	return nil
}
