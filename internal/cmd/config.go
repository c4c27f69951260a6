package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/MattLee479/UpdatedWebsite2/internal/aggregator"
	"github.com/MattLee479/UpdatedWebsite2/internal/model"
)

// Config is the resolved runtime configuration.
type Config struct {
	LogFile          string
	FeedbackFile     string
	Listen           string
	Scope            model.Window
	RefreshPerSecond float64
	LogLevel         string
	LogFormat        string

	ChatEnabled   bool
	Company       string
	KnowledgeBase string

	OpenAIKey         string
	OpenAIBaseURL     string
	OpenAIModel       string
	OpenAITemperature float64
}

// LoadConfig reads the configuration from v. When listen is unset, PORT is
// honoured for hosting platforms that inject it, else :5000.
func LoadConfig(v *viper.Viper) (Config, error) {
	scope, err := model.ParseWindow(v.GetString("scope"))
	if err != nil {
		return Config{}, fmt.Errorf("scope: %w", err)
	}

	cfg := Config{
		LogFile:           v.GetString("log_file"),
		FeedbackFile:      v.GetString("feedback_file"),
		Listen:            v.GetString("listen"),
		Scope:             scope,
		RefreshPerSecond:  v.GetFloat64("refresh_per_second"),
		LogLevel:          v.GetString("log.level"),
		LogFormat:         v.GetString("log.format"),
		ChatEnabled:       v.GetBool("chat.enabled"),
		Company:           v.GetString("chat.company"),
		KnowledgeBase:     v.GetString("chat.knowledge_base"),
		OpenAIKey:         v.GetString("openai.api_key"),
		OpenAIBaseURL:     v.GetString("openai.base_url"),
		OpenAIModel:       v.GetString("openai.model"),
		OpenAITemperature: v.GetFloat64("openai.temperature"),
	}
	if cfg.Listen == "" {
		cfg.Listen = ":5000"
		if port := os.Getenv("PORT"); port != "" {
			cfg.Listen = ":" + port
		}
	}
	if cfg.RefreshPerSecond <= 0 {
		cfg.RefreshPerSecond = 2
	}
	return cfg, nil
}

func (c Config) aggregatorOptions() aggregator.Options {
	return aggregator.Options{Scope: c.Scope}
}
