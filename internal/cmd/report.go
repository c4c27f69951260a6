package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MattLee479/UpdatedWebsite2/internal/aggregator"
	"github.com/MattLee479/UpdatedWebsite2/internal/dashboard"
	"github.com/MattLee479/UpdatedWebsite2/internal/logstore"
	"github.com/MattLee479/UpdatedWebsite2/internal/output"
	"github.com/MattLee479/UpdatedWebsite2/internal/parser"
)

var (
	archivePatterns []string
	showLogs        bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print dashboard statistics for the chat log",
	Long: `Compute window counts, top questions, category and hour histograms and
the conversion rate, and print them once.

Examples:
  chatloom report
  chatloom report --archive "logs/**/chat_log*.txt.zst" --output json`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

var filterCmd = &cobra.Command{
	Use:   "filter <quote|unanswered>",
	Short: "List log entries matching a named filter",
	Long: `List log entries matching a named filter. An unknown name lists nothing.

Examples:
  chatloom filter unanswered
  chatloom filter quote --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runFilter,
}

func init() {
	reportCmd.Flags().StringSliceVar(&archivePatterns, "archive", nil, "also read rotated logs matching these globs (.zst supported)")
	reportCmd.Flags().BoolVar(&showLogs, "logs", false, "include the full log listing")
	filterCmd.Flags().StringSliceVar(&archivePatterns, "archive", nil, "also read rotated logs matching these globs (.zst supported)")
	rootCmd.AddCommand(reportCmd, filterCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	return printPayload(cmd, dashboard.Options{IncludeLogs: showLogs})
}

func runFilter(cmd *cobra.Command, args []string) error {
	return printPayload(cmd, dashboard.Options{Filter: args[0]})
}

func printPayload(cmd *cobra.Command, opts dashboard.Options) error {
	cfg, err := LoadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	res, err := loadRecords(cmd.Context(), cfg, archivePatterns)
	if err != nil {
		return err
	}
	if res.Skipped > 0 {
		log.Debug("skipped malformed entries", "count", res.Skipped)
	}

	st := aggregator.Compute(res.Records, time.Now(), cfg.aggregatorOptions())
	st.Skipped = res.Skipped
	return output.New(outputFmt, os.Stdout).Render(dashboard.Assemble(st, res.Records, opts))
}

// loadRecords reads archives first so the live log comes last in the listing.
func loadRecords(ctx context.Context, cfg Config, archives []string) (*parser.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	out := &parser.Result{}
	if len(archives) > 0 {
		res, _, err := logstore.LoadArchives(ctx, archives)
		if err != nil {
			return nil, fmt.Errorf("load archives: %w", err)
		}
		out.Records = append(out.Records, res.Records...)
		out.Skipped += res.Skipped
	}

	res, _, err := logstore.New(cfg.LogFile).Records(ctx)
	if err != nil {
		return nil, err
	}
	out.Records = append(out.Records, res.Records...)
	out.Skipped += res.Skipped
	return out, nil
}
