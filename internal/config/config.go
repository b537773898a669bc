package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Task     TaskConfig     `mapstructure:"task"`
	Network  NetworkConfig  `mapstructure:"network"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains all Gemini integration related settings, including the
// retry budget for API calls.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"      validate:"required"`
	ModelName         string `mapstructure:"model_name"          validate:"required"`
	MaxAttempts       int    `mapstructure:"max_attempts"        validate:"required,gte=1"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
	PromptsPerBook    int    `mapstructure:"prompts_per_book"    validate:"gte=1"`
}

// TaskConfig contains background task processing settings.
type TaskConfig struct {
	WorkerCount             int `mapstructure:"worker_count"               validate:"gte=1"`
	QueueSize               int `mapstructure:"queue_size"                 validate:"gte=1"`
	StuckTaskAgeMinutes     int `mapstructure:"stuck_task_age_minutes"     validate:"gte=1"`
	StuckCheckIntervalMins  int `mapstructure:"stuck_check_interval_mins"  validate:"gte=1"`
}

// NetworkConfig contains connectivity monitor settings.
type NetworkConfig struct {
	ProbeAddr            string `mapstructure:"probe_addr"`
	ProbeIntervalSeconds int    `mapstructure:"probe_interval_seconds" validate:"gte=1"`
	ProbeTimeoutSeconds  int    `mapstructure:"probe_timeout_seconds"  validate:"gte=1"`
}
