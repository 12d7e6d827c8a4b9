package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	defaultEnvFile  = ".env"

	configPathEnv     = "REVIEW_INSIGHTS_CONFIG"
	envFileEnv        = "REVIEW_INSIGHTS_ENV_FILE"
	logLevelEnv       = "LOG_LEVEL"
	providerEnv       = "GENERATION_PROVIDER"
	modelEnv          = "GENERATION_MODEL"
	databaseDSNEnv    = "DATABASE_DSN"
	databaseDriverEnv = "DATABASE_DRIVER"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	mlInferenceURLEnv = "ML_INFERENCE_URL"
	httpAddrEnv       = "HTTP_ADDR"
)

// providerKeyEnv names the API key variable of each generation provider.
var providerKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Generation    GenerationConfig   `yaml:"generation"`
	Analysis      AnalysisConfig     `yaml:"analysis"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	ML            MLConfig           `yaml:"ml"`
	HTTP          HTTPConfig         `yaml:"http"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// GenerationConfig defines how to contact the text-generation provider.
type GenerationConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"maxAttempts"`
	RetryDelay  time.Duration `yaml:"retryDelay"`
}

// AnalysisConfig tunes the topic pipeline.
type AnalysisConfig struct {
	MinTopics int `yaml:"minTopics"`
	MaxTopics int `yaml:"maxTopics"`
	BatchSize int `yaml:"batchSize"`
	Workers   int `yaml:"workers"`
}

// DatabaseConfig describes the report store. Driver is "postgres" or "sqlite";
// an empty DSN disables persistence.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SchedulerConfig defines when the scheduled analysis should run and on what input.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	InputPath      string         `yaml:"inputPath"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// ChatIDValue parses ChatID; ok is false when it is empty or not numeric.
func (t TelegramConfig) ChatIDValue() (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(t.ChatID), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// MLConfig describes the sentiment-classifier service.
type MLConfig struct {
	InferenceURL string        `yaml:"inferenceUrl"`
	APIKey       string        `yaml:"apiKey"`
	Timeout      time.Duration `yaml:"timeout"`
}

// HTTPConfig configures the upload API.
type HTTPConfig struct {
	Addr           string `yaml:"addr"`
	MaxUploadBytes int64  `yaml:"maxUploadBytes"`
}

// Load reads an optional dotenv file and YAML configuration, then applies
// environment overrides.
func Load() Config {
	loadEnvFile()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func loadEnvFile() {
	path := os.Getenv(envFileEnv)
	if path == "" {
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: cannot load env file %s: %v", path, err)
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(providerEnv); v != "" {
		c.Generation.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(modelEnv); v != "" {
		c.Generation.Model = v
	}
	if name, ok := providerKeyEnv[c.Generation.Provider]; ok {
		if v := os.Getenv(name); v != "" {
			c.Generation.APIKey = v
		}
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(mlInferenceURLEnv); v != "" {
		c.ML.InferenceURL = v
	}

	if v := os.Getenv(httpAddrEnv); v != "" {
		c.HTTP.Addr = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Generation.Provider != "" {
		base.Generation.Provider = strings.ToLower(override.Generation.Provider)
	}
	if override.Generation.Model != "" {
		base.Generation.Model = override.Generation.Model
	}
	if override.Generation.APIKey != "" {
		base.Generation.APIKey = override.Generation.APIKey
	}
	if override.Generation.BaseURL != "" {
		base.Generation.BaseURL = override.Generation.BaseURL
	}
	if override.Generation.Timeout > 0 {
		base.Generation.Timeout = override.Generation.Timeout
	}
	if override.Generation.MaxAttempts > 0 {
		base.Generation.MaxAttempts = override.Generation.MaxAttempts
	}
	if override.Generation.RetryDelay > 0 {
		base.Generation.RetryDelay = override.Generation.RetryDelay
	}

	if override.Analysis.MinTopics > 0 {
		base.Analysis.MinTopics = override.Analysis.MinTopics
	}
	if override.Analysis.MaxTopics > 0 {
		base.Analysis.MaxTopics = override.Analysis.MaxTopics
	}
	if override.Analysis.BatchSize > 0 {
		base.Analysis.BatchSize = override.Analysis.BatchSize
	}
	if override.Analysis.Workers > 0 {
		base.Analysis.Workers = override.Analysis.Workers
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
		if base.Database.Driver == "" {
			base.Database.Driver = defaultConfig().Database.Driver
		}
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}
	if override.Scheduler.InputPath != "" {
		base.Scheduler.InputPath = override.Scheduler.InputPath
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.ML.InferenceURL != "" {
		base.ML.InferenceURL = override.ML.InferenceURL
	}
	if override.ML.APIKey != "" {
		base.ML.APIKey = override.ML.APIKey
	}
	if override.ML.Timeout > 0 {
		base.ML.Timeout = override.ML.Timeout
	}

	if override.HTTP.Addr != "" {
		base.HTTP.Addr = override.HTTP.Addr
	}
	if override.HTTP.MaxUploadBytes > 0 {
		base.HTTP.MaxUploadBytes = override.HTTP.MaxUploadBytes
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Generation: GenerationConfig{
			Provider:    "openai",
			Model:       "gpt-4o",
			Timeout:     60 * time.Second,
			MaxAttempts: 1,
			RetryDelay:  500 * time.Millisecond,
		},
		Analysis: AnalysisConfig{
			MinTopics: 8,
			MaxTopics: 15,
			BatchSize: 10,
			Workers:   4,
		},
		Database:  DatabaseConfig{Driver: "sqlite", DSN: ""},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		ML:        MLConfig{Timeout: 15 * time.Second},
		HTTP:      HTTPConfig{Addr: ":8000", MaxUploadBytes: 32 << 20},
	}
}
