package config

import (
	"log"
	"time"

	"github.com/spf13/viper"

	"github.com/newsgap/newsgap/global"
	"github.com/newsgap/newsgap/logger"
)

// Config is decoded by viper, which matches keys through mapstructure
// tags, not yaml tags.
type Config struct {
	App struct {
		Name string `mapstructure:"name"`
		Port string `mapstructure:"port"`
	} `mapstructure:"app"`
	Database struct {
		Host         string `mapstructure:"host"`
		Port         string `mapstructure:"port"`
		User         string `mapstructure:"user"`
		Password     string `mapstructure:"password"`
		Name         string `mapstructure:"name"`
		Sslmode      string `mapstructure:"sslmode"`
		Timezone     string `mapstructure:"timezone"`
		MaxIdleConns int    `mapstructure:"max_idle_conns"`
		MaxOpenConns int    `mapstructure:"max_open_conns"`
	} `mapstructure:"database"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"DB"`
	} `mapstructure:"redis"`
	Crawler struct {
		DefaultWindowHours int    `mapstructure:"default_window_hours"`
		FetchTimeoutSecs   int    `mapstructure:"fetch_timeout_secs"`
		UserAgent          string `mapstructure:"user_agent"`
	} `mapstructure:"crawler"`
	Intelligence struct {
		MinThreshold   int `mapstructure:"min_threshold"`
		MaxAttempts    int `mapstructure:"max_attempts"`
		RetryDelaySecs int `mapstructure:"retry_delay_secs"`
	} `mapstructure:"intelligence"`
	LLM struct {
		RequestTimeoutSecs int    `mapstructure:"request_timeout_secs"`
		OllamaHost         string `mapstructure:"ollama_host"`
	} `mapstructure:"llm"`
	Security struct {
		CredentialKey string `mapstructure:"credential_key"`
	} `mapstructure:"security"`
	Schedule struct {
		Enabled bool   `mapstructure:"enabled"`
		Cron    string `mapstructure:"cron"`
	} `mapstructure:"schedule"`
}

var AppConfig *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.default_window_hours", 24)
	v.SetDefault("crawler.fetch_timeout_secs", 20)
	v.SetDefault("crawler.user_agent", "NewsGap/1.0")
	v.SetDefault("intelligence.min_threshold", 5)
	v.SetDefault("intelligence.max_attempts", 2)
	v.SetDefault("intelligence.retry_delay_secs", 3)
	v.SetDefault("llm.request_timeout_secs", 120)
	v.SetDefault("llm.ollama_host", "http://localhost:11434")
	v.SetDefault("schedule.cron", "0 */6 * * *")
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func InitConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")

	setDefaults(viper.GetViper())

	err := viper.ReadInConfig()
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	AppConfig, err = decode(viper.GetViper())
	if err != nil {
		log.Fatalf("Failed to unmarshal config: %v", err)
	}

	global.Logger = logger.New()

	initDB()
	initRedis()
}

// FetchTimeout returns the per-source feed fetch deadline.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Crawler.FetchTimeoutSecs) * time.Second
}

// RetryDelay returns the ingestion retry back-off.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Intelligence.RetryDelaySecs) * time.Second
}

// LLMTimeout returns the AI provider request deadline.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.RequestTimeoutSecs) * time.Second
}
