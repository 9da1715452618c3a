package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional config file and from
// environment variables. Environment variables use the STOCKPIX_
// prefix with underscores for nesting (STOCKPIX_SERVER_PORT) and take
// precedence over file values. Returns a validated Config or an error
// describing the first problem found.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults keep a minimal deployment to just credentials + bucket.
	// Required keys get empty defaults so AutomaticEnv can see them
	// during Unmarshal.
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.prefix", "")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("imagegen.api_key", "")
	v.SetDefault("imagegen.quality", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("storage.region", "ap-northeast-1")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("imagegen.api_base_url", "https://api.openai.com/v1")
	v.SetDefault("imagegen.model", "gpt-image-1.5")
	v.SetDefault("imagegen.size", "1024x1024")
	v.SetDefault("pipeline.worker_count", 4)
	v.SetDefault("pipeline.queue_size", 16)
	v.SetDefault("pipeline.upscale_factor", 2)
	v.SetDefault("pipeline.presign_ttl_seconds", 3600)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STOCKPIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; env vars and defaults carry it.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
