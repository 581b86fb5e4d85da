package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone    = "America/New_York"
	configPathEnv      = "QUANTUM_DAILY_CONFIG"
	dbFileEnv          = "DB_FILE"
	openAIAPIKeyEnv    = "OPENAI_API_KEY"
	openAIModelEnv     = "OPENAI_MODEL"
	newsAPIKeyEnv      = "NEWSAPI_KEY"
	sendGridKeyEnv     = "SENDGRID_API_KEY"
	smtpHostEnv        = "SMTP_HOST"
	smtpUserEnv        = "SMTP_USER"
	smtpPassEnv        = "SMTP_PASS"
	emailFromEnv       = "EMAIL_FROM"
	emailToEnv         = "EMAIL_TO"
	sendModeEnv        = "SEND_MODE"
	adminAPIKeyEnv     = "ADMIN_API_KEY"
	timezoneEnv        = "TIMEZONE"
	defaultSendHourEnv = "DEFAULT_SEND_HOUR"
	logLevelEnv        = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	HTTP      HTTPConfig      `yaml:"http"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Ranking   RankingConfig   `yaml:"ranking"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Email     EmailConfig     `yaml:"email"`
	Export    ExportConfig    `yaml:"export"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig describes the SQLite database location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// HTTPConfig describes the API listener and admin auth.
type HTTPConfig struct {
	Addr        string `yaml:"addr"`
	AdminAPIKey string `yaml:"adminApiKey"`
}

// SchedulerConfig defines when the daily issue run fires.
type SchedulerConfig struct {
	Timezone        string         `yaml:"timezone"`
	DefaultSendHour int            `yaml:"defaultSendHour"`
	location        *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// IngestConfig groups settings for article providers.
type IngestConfig struct {
	Topic               string   `yaml:"topic"`
	SinceHours          int      `yaml:"sinceHours"`
	MaxItemsPerProvider int      `yaml:"maxItemsPerProvider"`
	NewsAPIKey          string   `yaml:"newsApiKey"`
	StaticFeeds         []string `yaml:"staticFeeds"`
}

// RankingConfig tunes issue selection and preference learning.
type RankingConfig struct {
	TopN         int     `yaml:"topN"`
	LearningRate float64 `yaml:"learningRate"`
}

// OpenAIConfig defines how to contact the summarization API.
type OpenAIConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// EmailConfig wires the delivery channel. Mode is console, smtp, or sendgrid.
type EmailConfig struct {
	Mode           string `yaml:"mode"`
	From           string `yaml:"from"`
	To             string `yaml:"to"`
	SMTPHost       string `yaml:"smtpHost"`
	SMTPPort       int    `yaml:"smtpPort"`
	SMTPUser       string `yaml:"smtpUser"`
	SMTPPass       string `yaml:"smtpPass"`
	SendGridAPIKey string `yaml:"sendGridApiKey"`
}

// ExportConfig holds output paths for rendered artifacts.
type ExportConfig struct {
	PDFDir string `yaml:"pdfDir"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
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
	cfg.bindTimezone()

	if len(cfg.Ingest.StaticFeeds) == 0 {
		cfg.Ingest.StaticFeeds = defaultConfig().Ingest.StaticFeeds
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(dbFileEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}

	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.Ingest.NewsAPIKey = v
	}

	if v := os.Getenv(sendGridKeyEnv); v != "" {
		c.Email.SendGridAPIKey = v
	}
	if v := os.Getenv(smtpHostEnv); v != "" {
		c.Email.SMTPHost = v
	}
	if v := os.Getenv(smtpUserEnv); v != "" {
		c.Email.SMTPUser = v
	}
	if v := os.Getenv(smtpPassEnv); v != "" {
		c.Email.SMTPPass = v
	}
	if v := os.Getenv(emailFromEnv); v != "" {
		c.Email.From = v
	}
	if v := os.Getenv(emailToEnv); v != "" {
		c.Email.To = v
	}
	if v := os.Getenv(sendModeEnv); v != "" {
		c.Email.Mode = v
	}

	if v := os.Getenv(adminAPIKeyEnv); v != "" {
		c.HTTP.AdminAPIKey = v
	}

	if v := os.Getenv(timezoneEnv); v != "" {
		c.Scheduler.Timezone = v
	}
	if v := os.Getenv(defaultSendHourEnv); v != "" {
		if hour, err := strconv.Atoi(v); err == nil {
			c.Scheduler.DefaultSendHour = hour
		}
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
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
	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.HTTP.Addr != "" {
		base.HTTP.Addr = override.HTTP.Addr
	}
	if override.HTTP.AdminAPIKey != "" {
		base.HTTP.AdminAPIKey = override.HTTP.AdminAPIKey
	}

	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}
	if override.Scheduler.DefaultSendHour != 0 {
		base.Scheduler.DefaultSendHour = override.Scheduler.DefaultSendHour
	}

	if override.Ingest.Topic != "" {
		base.Ingest.Topic = override.Ingest.Topic
	}
	if override.Ingest.SinceHours != 0 {
		base.Ingest.SinceHours = override.Ingest.SinceHours
	}
	if override.Ingest.MaxItemsPerProvider != 0 {
		base.Ingest.MaxItemsPerProvider = override.Ingest.MaxItemsPerProvider
	}
	if override.Ingest.NewsAPIKey != "" {
		base.Ingest.NewsAPIKey = override.Ingest.NewsAPIKey
	}
	if len(override.Ingest.StaticFeeds) > 0 {
		base.Ingest.StaticFeeds = override.Ingest.StaticFeeds
	}

	if override.Ranking.TopN != 0 {
		base.Ranking.TopN = override.Ranking.TopN
	}
	if override.Ranking.LearningRate != 0 {
		base.Ranking.LearningRate = override.Ranking.LearningRate
	}

	if override.OpenAI.Endpoint != "" {
		base.OpenAI.Endpoint = override.OpenAI.Endpoint
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.SystemPrompt != "" {
		base.OpenAI.SystemPrompt = override.OpenAI.SystemPrompt
	}

	if override.Email.Mode != "" {
		base.Email.Mode = override.Email.Mode
	}
	if override.Email.From != "" {
		base.Email.From = override.Email.From
	}
	if override.Email.To != "" {
		base.Email.To = override.Email.To
	}
	if override.Email.SMTPHost != "" {
		base.Email.SMTPHost = override.Email.SMTPHost
	}
	if override.Email.SMTPPort != 0 {
		base.Email.SMTPPort = override.Email.SMTPPort
	}
	if override.Email.SMTPUser != "" {
		base.Email.SMTPUser = override.Email.SMTPUser
	}
	if override.Email.SMTPPass != "" {
		base.Email.SMTPPass = override.Email.SMTPPass
	}
	if override.Email.SendGridAPIKey != "" {
		base.Email.SendGridAPIKey = override.Email.SendGridAPIKey
	}

	if override.Export.PDFDir != "" {
		base.Export.PDFDir = override.Export.PDFDir
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database: DatabaseConfig{Path: "quantum_daily.db"},
		HTTP:     HTTPConfig{Addr: ":8080"},
		Scheduler: SchedulerConfig{
			Timezone:        defaultTimezone,
			DefaultSendHour: 8,
			location:        tz,
		},
		Ingest: IngestConfig{
			Topic:               "quantum computing",
			SinceHours:          24,
			MaxItemsPerProvider: 50,
			StaticFeeds: []string{
				"https://news.google.com/rss/search?q=quantum+computing+industry",
				"https://www.prnewswire.com/rss/technology-latest-news.rss",
				"https://www.hpcwire.com/feed/",
				"https://www.ibm.com/blogs/research/category/quantum/feed/",
				"https://www.quantinuum.com/rss.xml",
				"https://ionq.com/rss.xml",
				"https://export.arxiv.org/rss/quant-ph",
			},
		},
		Ranking: RankingConfig{TopN: 12, LearningRate: 0.05},
		OpenAI: OpenAIConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			APIKey:       "",
			SystemPrompt: "You are a concise news summarizer. Output plain, non-jargon English. Avoid hype; stick to facts present in the text.",
		},
		Email: EmailConfig{
			Mode:     "console",
			From:     "bot@example.com",
			To:       "",
			SMTPPort: 587,
		},
		Export:  ExportConfig{PDFDir: "exports"},
		Logging: LoggingConfig{Level: "info"},
	}
}
