package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/MattLee479/UpdatedWebsite2/internal/output"
	"github.com/MattLee479/UpdatedWebsite2/internal/pkg/logger"
	"github.com/MattLee479/UpdatedWebsite2/internal/tailer"
	"github.com/MattLee479/UpdatedWebsite2/internal/watcher"
)

var (
	tailFromStart  bool
	checkpointPath string
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow the chat log and print exchanges as they happen",
	Long: `Follow the chat log and print each exchange, tagged with its category,
as soon as its entry is complete. The read position is checkpointed so a
restart resumes where it stopped.

Examples:
  chatloom tail
  chatloom tail --from-start --output json`,
	Args: cobra.NoArgs,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().BoolVar(&tailFromStart, "from-start", false, "read the existing log before following")
	tailCmd.Flags().StringVar(&checkpointPath, "checkpoint", ".chatloom-state.json", "checkpoint file")
	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, _ []string) error {
	cfg, err := LoadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New([]string{cfg.LogFile}, log)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	ckpt, err := tailer.NewCheckpoint(checkpointPath)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	t := tailer.New(cfg.LogFile, w.Events, ckpt, tailFromStart, log)

	fmt.Fprintf(os.Stderr, "following %s\n", cfg.LogFile)

	if err := follow(ctx, w, t, output.New(outputFmt, os.Stdout), log); err != nil {
		return err
	}
	if n := t.Skipped(); n > 0 {
		log.Info("skipped malformed entries", "count", n)
	}
	return nil
}

// follow renders tailed records until the context is cancelled and both the
// watcher and the tailer have stopped.
func follow(ctx context.Context, w *watcher.Watcher, t *tailer.Tailer, r output.Renderer, log *logger.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w.Start(gctx)
		return nil
	})
	g.Go(func() error {
		t.Start(gctx)
		return nil
	})

	for rec := range t.Records() {
		if err := r.RenderRecord(rec); err != nil {
			log.WithError(err).Warn("render failed")
		}
	}
	return g.Wait()
}
