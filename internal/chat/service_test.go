package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/MattLee479/UpdatedWebsite2/internal/model"
	"github.com/MattLee479/UpdatedWebsite2/internal/pkg/logger"
)

type memLog struct {
	mu      sync.Mutex
	records []model.LogRecord
	err     error
}

func (m *memLog) Append(_ context.Context, r model.LogRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, r)
	return nil
}

type fakeCompleter struct {
	reply string
	err   error
	last  []Message
}

func (f *fakeCompleter) Complete(_ context.Context, msgs []Message) (string, error) {
	f.last = msgs
	return f.reply, f.err
}

func newTestService(c Completer, l *memLog) *Service {
	return NewService(Config{Company: "Acme", KnowledgeBase: "We build chatbots."}, c, l, logger.Discard())
}

func TestReplyRoutes(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		comp  *fakeCompleter
		route string
		reply string
	}{
		{"blocked", "this is a SCAM", &fakeCompleter{reply: "x"}, model.RouteBlocked, BlockedReply},
		{"identity", "Are you a bot?", &fakeCompleter{reply: "x"}, model.RouteIdentity, "I'm the official chatbot for Acme — here to help you with any queries."},
		{"model", "what do you build?", &fakeCompleter{reply: "Chatbots."}, model.RouteModel, "Chatbots."},
		{"fallback", "what do you build?", &fakeCompleter{err: errors.New("timeout")}, model.RouteFallback, FallbackReply},
		{"empty completion", "hi", &fakeCompleter{}, model.RouteFallback, FallbackReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &memLog{}
			r := newTestService(tt.comp, l).Reply(context.Background(), "", tt.text)

			if r.Route != tt.route {
				t.Errorf("expected route %q, got %q", tt.route, r.Route)
			}
			if r.Text != tt.reply {
				t.Errorf("expected reply %q, got %q", tt.reply, r.Text)
			}
			if r.SessionID == "" {
				t.Error("expected a session id")
			}
			if len(l.records) != 1 || l.records[0].Route != tt.route || l.records[0].UserText != tt.text {
				t.Errorf("unexpected log %+v", l.records)
			}
		})
	}
}

func TestReplyKeepsPerSessionHistory(t *testing.T) {
	comp := &fakeCompleter{reply: "answer"}
	svc := newTestService(comp, &memLog{})
	ctx := context.Background()

	first := svc.Reply(ctx, "", "q0")
	for i := 1; i <= 6; i++ {
		svc.Reply(ctx, first.SessionID, "q")
	}

	// system + 5 turns * 2 + current
	if len(comp.last) != 12 {
		t.Fatalf("expected 12 messages, got %d", len(comp.last))
	}
	if comp.last[0].Role != "system" || !strings.Contains(comp.last[0].Content, "We build chatbots.") {
		t.Errorf("unexpected system message %+v", comp.last[0])
	}

	other := svc.Reply(ctx, "", "fresh")
	if other.SessionID == first.SessionID {
		t.Error("expected a distinct session")
	}
	if len(comp.last) != 2 {
		t.Errorf("expected no history for new session, got %d messages", len(comp.last))
	}
}

func TestReplySurvivesLogFailure(t *testing.T) {
	r := newTestService(&fakeCompleter{reply: "fine"}, &memLog{err: errors.New("disk full")}).
		Reply(context.Background(), "", "hello")

	if r.Text != "fine" {
		t.Errorf("expected reply despite log failure, got %q", r.Text)
	}
}

func TestOpenAIClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing auth header")
		}
		var body struct {
			Messages []Message `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages) != 2 {
			t.Errorf("expected 2 messages, got %d", len(body.Messages))
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" hello "}}]}`))
	}))
	defer srv.Close()

	c := &OpenAIClient{BaseURL: srv.URL + "/", APIKey: "key", Model: "gpt-3.5-turbo"}
	got, err := c.Complete(context.Background(), []Message{{"system", "s"}, {"user", "u"}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "hello" {
		t.Errorf("expected hello, got %q", got)
	}
}

func TestOpenAIClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := &OpenAIClient{BaseURL: srv.URL}
	if _, err := c.Complete(context.Background(), nil); err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status error, got %v", err)
	}
}
