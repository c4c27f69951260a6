package cmd

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MattLee479/UpdatedWebsite2/internal/model"
	"github.com/MattLee479/UpdatedWebsite2/internal/output"
	"github.com/MattLee479/UpdatedWebsite2/internal/pkg/logger"
	"github.com/MattLee479/UpdatedWebsite2/internal/tailer"
	"github.com/MattLee479/UpdatedWebsite2/internal/watcher"
)

func TestFollowRendersAndStops(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "chat_log.txt")
	rec := model.LogRecord{
		Timestamp: time.Date(2026, 2, 17, 12, 0, 0, 0, time.Local),
		Route:     model.RouteModel,
		UserText:  "how much is a quote",
		BotText:   "it depends",
	}
	if err := os.WriteFile(logPath, []byte(model.Format(rec)), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := watcher.New([]string{logPath}, logger.Discard())
	if err != nil {
		t.Fatal(err)
	}
	ckpt, err := tailer.NewCheckpoint(filepath.Join(dir, "state.json"))
	if err != nil {
		t.Fatal(err)
	}
	tl := tailer.New(logPath, w.Events, ckpt, true, logger.Discard())

	pr, pw := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- follow(ctx, w, tl, output.New("json", pw), logger.Discard())
		pw.Close()
	}()

	lines := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(pr).ReadString('\n')
		lines <- line
	}()

	select {
	case line := <-lines:
		if !strings.Contains(line, `"how much is a quote"`) || !strings.Contains(line, `"category":"pricing"`) {
			t.Errorf("unexpected output: %s", line)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for rendered record")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean stop, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("follow did not stop after cancel")
	}
}
