package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/MattLee479/UpdatedWebsite2/internal/model"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	v := viper.New()
	setDefaults(v)

	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogFile != "chat_log.txt" || cfg.FeedbackFile != "feedback_log.txt" || cfg.Listen != ":5000" || cfg.Scope != model.Month {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.RefreshPerSecond != 2 || cfg.OpenAIModel != "gpt-3.5-turbo" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("CHATLOOM_SCOPE", "week")
	t.Setenv("CHATLOOM_LOG_LEVEL", "debug")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	v := viper.New()
	setDefaults(v)

	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("expected PORT to set listen, got %q", cfg.Listen)
	}
	if cfg.Scope != model.Week || cfg.LogLevel != "debug" || cfg.OpenAIKey != "sk-test" {
		t.Errorf("env not applied: %+v", cfg)
	}

	t.Setenv("CHATLOOM_LISTEN", "127.0.0.1:9000")
	if cfg, _ := LoadConfig(v); cfg.Listen != "127.0.0.1:9000" {
		t.Errorf("explicit listen should win over PORT, got %q", cfg.Listen)
	}
}

func TestLoadConfigBadScope(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("scope", "fortnight")

	if _, err := LoadConfig(v); err == nil {
		t.Error("expected error for unknown scope")
	}
}

func TestLoadRecordsWithArchives(t *testing.T) {
	dir := t.TempDir()
	entry := func(user string) string {
		return model.Format(model.LogRecord{
			Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local),
			Route:     model.RouteModel,
			UserText:  user,
			BotText:   "ok then",
		})
	}
	if err := os.WriteFile(filepath.Join(dir, "chat_log.txt"), []byte(entry("live")), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "chat_log.1.txt"), []byte(entry("old")+"User: torn"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Config{LogFile: filepath.Join(dir, "chat_log.txt")}
	res, err := loadRecords(context.Background(), cfg, []string{filepath.Join(dir, "chat_log.*.txt")})
	if err != nil {
		t.Fatalf("loadRecords: %v", err)
	}
	if len(res.Records) != 2 || res.Records[0].UserText != "old" || res.Records[1].UserText != "live" {
		t.Errorf("unexpected records %+v", res.Records)
	}
	if res.Skipped != 1 {
		t.Errorf("expected torn tail skipped, got %d", res.Skipped)
	}
}
