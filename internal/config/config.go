package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "PAPERCAST_CONFIG"
	listingURLEnv    = "ARXIV_URL"
	llmEndpointEnv   = "LLM_URL"
	llmAPIKeyEnv     = "LLM_API_KEY"
	llmModelEnv      = "MODEL_NAME"
	cacheDirEnv      = "PAPERCAST_CACHE_DIR"
	telegramToken    = "TELEGRAM_BOT_TOKEN"
	telegramChatID   = "TELEGRAM_CHAT_ID"
	defaultTierName  = "medium"
	defaultBatchSize = 50
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Server        ServerConfig       `yaml:"server"`
	Cache         CacheConfig        `yaml:"cache"`
	Listing       ListingConfig      `yaml:"listing"`
	LLM           LLMConfig          `yaml:"llm"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Converter     ConverterConfig    `yaml:"converter"`
	TTS           TTSConfig          `yaml:"tts"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
}

// LoggingConfig selects handler level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig describes the HTTP trigger surface.
type ServerConfig struct {
	Port         string   `yaml:"port"`
	ReadTimeout  Duration `yaml:"readTimeout"`
	WriteTimeout Duration `yaml:"writeTimeout"`
	IdleTimeout  Duration `yaml:"idleTimeout"`
}

// CacheConfig selects the store backend and its location. Backend is one of
// "fs", "memory" or "sqlite".
type CacheConfig struct {
	Backend    string `yaml:"backend"`
	Dir        string `yaml:"dir"`
	SQLitePath string `yaml:"sqlitePath"`
}

// ListingConfig points at the upstream daily listing page.
type ListingConfig struct {
	URL string `yaml:"url"`
}

// LLMConfig describes how to contact the model service. Tiers map quality
// level names to models; an empty tier endpoint inherits the shared one.
type LLMConfig struct {
	Endpoint          string              `yaml:"endpoint"`
	APIKey            string              `yaml:"apiKey"`
	DefaultTier       string              `yaml:"defaultTier"`
	RequestsPerSecond float64             `yaml:"requestsPerSecond"`
	Burst             int                 `yaml:"burst"`
	Tiers             map[string]TierSpec `yaml:"tiers"`
}

// TierSpec is one quality level of the model service.
type TierSpec struct {
	Model    string `yaml:"model"`
	Endpoint string `yaml:"endpoint"`
}

// PipelineConfig tunes orchestration fan-out.
type PipelineConfig struct {
	MaxArticles    int `yaml:"maxArticles"`
	BatchSize      int `yaml:"batchSize"`
	FilterWorkers  int `yaml:"filterWorkers"`
	SummaryWorkers int `yaml:"summaryWorkers"`
}

// ConverterConfig names the external document-to-text command.
type ConverterConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// TTSConfig wires the speech command and the audio transcoder. SpeechArgs
// may contain the {input} and {output} placeholders.
type TTSConfig struct {
	SpeechCommand string   `yaml:"speechCommand"`
	SpeechArgs    []string `yaml:"speechArgs"`
	FFmpegCommand string   `yaml:"ffmpegCommand"`
}

// NotificationConfig encapsulates outbound progress channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to push progress messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SchedulerConfig gates the recurring daily generation run.
type SchedulerConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Interval    Duration `yaml:"interval"`
	Prompt      string   `yaml:"prompt"`
	MaxArticles int      `yaml:"maxArticles"`
	Output      string   `yaml:"output"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides on top of defaults.
func Load() Config {
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
	cfg.fillGaps()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(listingURLEnv); v != "" {
		c.Listing.URL = v
	}
	if v := os.Getenv(llmEndpointEnv); v != "" {
		c.LLM.Endpoint = v
	}
	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		tier := c.LLM.Tiers[c.LLM.DefaultTier]
		tier.Model = v
		if c.LLM.Tiers == nil {
			c.LLM.Tiers = map[string]TierSpec{}
		}
		c.LLM.Tiers[c.LLM.DefaultTier] = tier
	}
	if v := os.Getenv(cacheDirEnv); v != "" {
		c.Cache.Dir = v
	}
	if v := os.Getenv(telegramToken); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatID); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) fillGaps() {
	if c.LLM.DefaultTier == "" {
		c.LLM.DefaultTier = defaultTierName
	}
	if c.Pipeline.BatchSize <= 0 {
		c.Pipeline.BatchSize = defaultBatchSize
	}
	if c.Pipeline.MaxArticles <= 0 {
		c.Pipeline.MaxArticles = 5
	}
	if c.Pipeline.FilterWorkers <= 0 {
		c.Pipeline.FilterWorkers = 4
	}
	if c.Pipeline.SummaryWorkers <= 0 {
		c.Pipeline.SummaryWorkers = 4
	}
	if c.Scheduler.Interval <= 0 {
		c.Scheduler.Interval = Duration(24 * time.Hour)
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Server.Port != "" {
		base.Server.Port = override.Server.Port
	}
	if override.Server.ReadTimeout > 0 {
		base.Server.ReadTimeout = override.Server.ReadTimeout
	}
	if override.Server.WriteTimeout > 0 {
		base.Server.WriteTimeout = override.Server.WriteTimeout
	}
	if override.Server.IdleTimeout > 0 {
		base.Server.IdleTimeout = override.Server.IdleTimeout
	}

	if override.Cache.Backend != "" {
		base.Cache.Backend = override.Cache.Backend
	}
	if override.Cache.Dir != "" {
		base.Cache.Dir = override.Cache.Dir
	}
	if override.Cache.SQLitePath != "" {
		base.Cache.SQLitePath = override.Cache.SQLitePath
	}

	if override.Listing.URL != "" {
		base.Listing.URL = override.Listing.URL
	}

	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.DefaultTier != "" {
		base.LLM.DefaultTier = override.LLM.DefaultTier
	}
	if override.LLM.RequestsPerSecond > 0 {
		base.LLM.RequestsPerSecond = override.LLM.RequestsPerSecond
	}
	if override.LLM.Burst > 0 {
		base.LLM.Burst = override.LLM.Burst
	}
	if len(override.LLM.Tiers) > 0 {
		base.LLM.Tiers = override.LLM.Tiers
	}

	if override.Pipeline.MaxArticles > 0 {
		base.Pipeline.MaxArticles = override.Pipeline.MaxArticles
	}
	if override.Pipeline.BatchSize > 0 {
		base.Pipeline.BatchSize = override.Pipeline.BatchSize
	}
	if override.Pipeline.FilterWorkers > 0 {
		base.Pipeline.FilterWorkers = override.Pipeline.FilterWorkers
	}
	if override.Pipeline.SummaryWorkers > 0 {
		base.Pipeline.SummaryWorkers = override.Pipeline.SummaryWorkers
	}

	if override.Converter.Command != "" {
		base.Converter = override.Converter
	}

	if override.TTS.SpeechCommand != "" {
		base.TTS = override.TTS
	}
	if base.TTS.FFmpegCommand == "" {
		base.TTS.FFmpegCommand = "ffmpeg"
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Prompt != "" {
		base.Scheduler.Prompt = override.Scheduler.Prompt
	}
	if override.Scheduler.MaxArticles > 0 {
		base.Scheduler.MaxArticles = override.Scheduler.MaxArticles
	}
	if override.Scheduler.Output != "" {
		base.Scheduler.Output = override.Scheduler.Output
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			Port:         "14200",
			ReadTimeout:  Duration(30 * time.Second),
			WriteTimeout: Duration(30 * time.Minute),
			IdleTimeout:  Duration(60 * time.Second),
		},
		Cache: CacheConfig{
			Backend:    "fs",
			Dir:        "cache",
			SQLitePath: "cache/papercast.db",
		},
		Listing: ListingConfig{URL: "https://arxiv.org/list/cs/new"},
		LLM: LLMConfig{
			Endpoint:          "http://127.0.0.1:4000/v1",
			DefaultTier:       defaultTierName,
			RequestsPerSecond: 2,
			Burst:             4,
			Tiers: map[string]TierSpec{
				"low":    {Model: "mistral-small-latest"},
				"medium": {Model: "mistral-small-latest"},
				"high":   {Model: "mistral-large-latest"},
			},
		},
		Pipeline: PipelineConfig{
			MaxArticles:    5,
			BatchSize:      defaultBatchSize,
			FilterWorkers:  4,
			SummaryWorkers: 4,
		},
		Converter: ConverterConfig{
			Command: "pdftotext",
			Args:    []string{"-layout", "-nopgbrk"},
		},
		TTS: TTSConfig{
			SpeechCommand: "piper",
			SpeechArgs:    []string{"--file", "{input}", "--output_file", "{output}"},
			FFmpegCommand: "ffmpeg",
		},
		Scheduler: SchedulerConfig{
			Enabled:     false,
			Interval:    Duration(24 * time.Hour),
			MaxArticles: 5,
			Output:      "daily_report.mp3",
		},
	}
}
