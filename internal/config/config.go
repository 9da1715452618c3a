package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	ImageGen ImageGenConfig `mapstructure:"imagegen" validate:"required"`
	Pipeline PipelineConfig `mapstructure:"pipeline" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StorageConfig contains the object storage settings.
type StorageConfig struct {
	Bucket string `mapstructure:"bucket" validate:"required"`
	Region string `mapstructure:"region"`
	// Endpoint points at an S3-compatible store; empty means AWS.
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
	// Prefix namespaces every key written by this deployment.
	Prefix string `mapstructure:"prefix"`
}

// LLMConfig contains the settings of the text-generation backend used
// for ideas, drawing prompts, and submission metadata.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName         string `mapstructure:"model_name" validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0,lte=60"`
}

// ImageGenConfig contains the settings of the image-generation API.
type ImageGenConfig struct {
	APIKey     string `mapstructure:"api_key" validate:"required"`
	APIBaseURL string `mapstructure:"api_base_url" validate:"required,url"`
	Model      string `mapstructure:"model" validate:"required"`
	Size       string `mapstructure:"size"`
	Quality    string `mapstructure:"quality"`
}

// PipelineConfig tunes the batch pipeline itself.
type PipelineConfig struct {
	// WorkerCount bounds concurrent external calls within a batch.
	WorkerCount int `mapstructure:"worker_count" validate:"required,gte=1,lte=32"`
	// QueueSize is the background task queue buffer.
	QueueSize int `mapstructure:"queue_size" validate:"required,gte=1"`
	// UpscaleFactor multiplies both image dimensions on registration.
	UpscaleFactor int `mapstructure:"upscale_factor" validate:"required,gte=2,lte=4"`
	// PresignTTLSeconds is the lifetime of gallery download URLs.
	PresignTTLSeconds int `mapstructure:"presign_ttl_seconds" validate:"required,gte=60"`
}
