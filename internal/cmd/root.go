package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MattLee479/UpdatedWebsite2/internal/pkg/logger"
)

var (
	cfgFile   string
	outputFmt string
	logFile   string
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "chatloom",
	Short: "chatloom — chatbot log analytics",
	Long: `chatloom reads the website chatbot's append-only conversation log,
classifies each exchange, and reports volume, top questions, hour-of-day
activity and conversion intent in the terminal or on a live web dashboard.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.chatloom.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "output format: text, json")
	rootCmd.PersistentFlags().StringVarP(&logFile, "log-file", "f", "", "chat log path (default: chat_log.txt)")
	_ = viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".chatloom")
		viper.SetConfigType("yaml")
	}

	setDefaults(viper.GetViper())
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			cobra.CheckErr(fmt.Errorf("read config: %w", err))
		}
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_file", "chat_log.txt")
	v.SetDefault("feedback_file", "feedback_log.txt")
	v.SetDefault("scope", "month")
	v.SetDefault("refresh_per_second", 2.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("chat.enabled", true)
	v.SetDefault("chat.company", "Solaris AI")
	v.SetDefault("chat.knowledge_base", "company_data/knowledge_base.txt")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-3.5-turbo")
	v.SetDefault("openai.temperature", 0.4)

	v.SetEnvPrefix("chatloom")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("openai.api_key", "CHATLOOM_OPENAI_API_KEY", "OPENAI_API_KEY")
}

func newLogger(cfg Config) *logger.Logger {
	return logger.New(cfg.LogLevel, cfg.LogFormat)
}
