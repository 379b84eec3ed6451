package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Environment  string           `mapstructure:"environment"`
	Server       ServerConfig     `mapstructure:"server"`
	Database     DatabaseConfig   `mapstructure:"database"`
	Storage      StorageConfig    `mapstructure:"storage"`
	Processing   ProcessingConfig `mapstructure:"processing"`
	OpenAI       OpenAIConfig     `mapstructure:"openai"`
	Emotion      EmotionConfig    `mapstructure:"emotion"`
	Moderation   ModerationConfig `mapstructure:"moderation"`
	Pipeline     PipelineConfig   `mapstructure:"pipeline"`
	Auth         AuthConfig       `mapstructure:"auth"`
	RateLimiting RateLimitConfig  `mapstructure:"rate_limiting"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	Verbose bool   `mapstructure:"verbose"`
}

// StorageConfig contains working and durable storage settings.
// WorkDir holds per-job temp directories for intermediate audio segments;
// UploadsDir holds finished episode files served under PublicBase.
type StorageConfig struct {
	WorkDir    string `mapstructure:"work_dir"`
	UploadsDir string `mapstructure:"uploads_dir"`
	PublicBase string `mapstructure:"public_base"`
}

// ProcessingConfig contains job queue and audio tooling settings
type ProcessingConfig struct {
	Workers          int           `mapstructure:"workers"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	JobTimeout       time.Duration `mapstructure:"job_timeout"`
	MaxRetries       int           `mapstructure:"max_retries"`
	JobRetentionDays int           `mapstructure:"job_retention_days"`
	FFmpegPath       string        `mapstructure:"ffmpeg_path"`
	FFprobePath      string        `mapstructure:"ffprobe_path"`
	FFmpegTimeout    time.Duration `mapstructure:"ffmpeg_timeout"`
}

// OpenAIConfig contains language-model and text-to-speech API settings
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	ChatModel   string        `mapstructure:"chat_model"`
	ChatTimeout time.Duration `mapstructure:"chat_timeout"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	TTSModel    string        `mapstructure:"tts_model"`
	TTSFormat   string        `mapstructure:"tts_format"`
	TTSTimeout  time.Duration `mapstructure:"tts_timeout"`
}

// EmotionConfig contains optional emotion classifier settings.
// When disabled the synthesizer falls back to keyword heuristics.
type EmotionConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ModerationConfig contains content safety settings.
// The toxicity threshold is configurable rather than hard-coded.
type ModerationConfig struct {
	ToxicityThreshold float64  `mapstructure:"toxicity_threshold"`
	ExtraKeywords     []string `mapstructure:"extra_keywords"`
}

// PipelineConfig contains podcast generation tuning knobs
type PipelineConfig struct {
	PauseSeconds    float64 `mapstructure:"pause_seconds"`
	BedPath         string  `mapstructure:"bed_path"`
	BedVolume       float64 `mapstructure:"bed_volume"`
	WordsPerMinute  int     `mapstructure:"words_per_minute"`
	ScenesPerMinute int     `mapstructure:"scenes_per_minute"`
}

// AuthConfig contains authentication settings
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	DevToken  string `mapstructure:"dev_token"`
}

// RateLimitConfig contains per-client rate limiting settings
type RateLimitConfig struct {
	RequestsPerSecond int `mapstructure:"requests_per_second"`
	Burst             int `mapstructure:"burst"`
}
