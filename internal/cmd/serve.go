package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/MattLee479/UpdatedWebsite2/internal/aggregator"
	"github.com/MattLee479/UpdatedWebsite2/internal/chat"
	"github.com/MattLee479/UpdatedWebsite2/internal/dashboard"
	"github.com/MattLee479/UpdatedWebsite2/internal/hub"
	"github.com/MattLee479/UpdatedWebsite2/internal/logstore"
	"github.com/MattLee479/UpdatedWebsite2/internal/pkg/logger"
	"github.com/MattLee479/UpdatedWebsite2/internal/server"
	"github.com/MattLee479/UpdatedWebsite2/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API and chat endpoint",
	Long: `Serve the dashboard JSON API, chart data, filtered listings, the raw log
download and the chat endpoint. Connected dashboards receive a fresh payload
over a websocket whenever the log changes.

Examples:
  chatloom serve
  chatloom serve --listen :8080 --log-file /srv/chat_log.txt`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("listen", "", "listen address (default :5000, or :$PORT)")
	_ = viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := LoadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := logstore.New(cfg.LogFile)
	cache := aggregator.NewCache(store, cfg.aggregatorOptions())

	w, err := watcher.New([]string{cfg.LogFile}, log)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	var srv *server.Server
	h := hub.New(w.Events, func(ctx context.Context) dashboard.Payload {
		cache.Invalidate()
		return srv.Payload(ctx, dashboard.Options{})
	}, cfg.RefreshPerSecond, log)

	srv = server.New(server.Deps{
		Store:    store,
		Feedback: logstore.New(cfg.FeedbackFile),
		Cache:    cache,
		Hub:      h,
		Chat:     newChatService(cfg, store, log),
		Logger:   log,
	})

	log.Info("serving dashboard", "listen", cfg.Listen, "log_file", cfg.LogFile, "scope", cfg.Scope.String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w.Start(gctx)
		return nil
	})
	g.Go(func() error {
		h.Start(gctx)
		return nil
	})
	g.Go(func() error {
		return srv.Run(gctx, cfg.Listen)
	})
	err = g.Wait()
	log.Info("shut down")
	return err
}

// newChatService wires the reply generator. Without an API key every model
// routed message gets the fallback reply.
func newChatService(cfg Config, store *logstore.Store, log *logger.Logger) *chat.Service {
	if !cfg.ChatEnabled {
		return nil
	}
	kb, err := os.ReadFile(cfg.KnowledgeBase)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("knowledge base not found", "path", cfg.KnowledgeBase)
		} else {
			log.WithError(err).Warn("read knowledge base failed")
		}
	}

	var completer chat.Completer
	if cfg.OpenAIKey != "" {
		completer = &chat.OpenAIClient{
			BaseURL:     cfg.OpenAIBaseURL,
			APIKey:      cfg.OpenAIKey,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.OpenAITemperature,
		}
	} else {
		log.Warn("no OpenAI API key configured, chat will use the fallback reply")
	}

	return chat.NewService(chat.Config{
		Company:       cfg.Company,
		KnowledgeBase: strings.TrimSpace(string(kb)),
	}, completer, store, log)
}
