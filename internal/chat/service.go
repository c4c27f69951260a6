// Package chat routes visitor messages and appends every exchange to the log.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MattLee479/UpdatedWebsite2/internal/classifier"
	"github.com/MattLee479/UpdatedWebsite2/internal/model"
	"github.com/MattLee479/UpdatedWebsite2/internal/pkg/logger"
)

// Canned replies.
const (
	BlockedReply  = "Let's keep things respectful — I'm here to help."
	FallbackReply = "Sorry, something went wrong on our side."
)

var (
	blockedWords    = []string{"idiot", "scam", "stupid"}
	identityPhrases = []string{
		"are you real", "are you human", "who are you", "what are you",
		"are you ai", "are you an ai", "is this a bot", "are you a bot",
	}
)

// Appender persists one exchange.
type Appender interface {
	Append(ctx context.Context, rec model.LogRecord) error
}

// Reply is the outcome of one visitor message.
type Reply struct {
	SessionID string `json:"session_id"`
	Text      string `json:"reply"`
	Route     string `json:"route"`
}

// Config holds the fixed prompt material.
type Config struct {
	Company       string
	KnowledgeBase string
}

// Service answers visitor messages.
type Service struct {
	cfg       Config
	completer Completer
	log       Appender
	sessions  *Sessions
	logger    *logger.Logger
	now       func() time.Time
}

// NewService wires a Service.
func NewService(cfg Config, c Completer, a Appender, log *logger.Logger) *Service {
	return &Service{
		cfg:       cfg,
		completer: c,
		log:       a,
		sessions:  NewSessions(),
		logger:    log.WithComponent("chat"),
		now:       time.Now,
	}
}

// Reply answers text within the given session, creating one when sessionID is
// empty or invalid. Completion and log failures never reach the caller.
func (s *Service) Reply(ctx context.Context, sessionID, text string) Reply {
	id := s.sessions.Resolve(sessionID)
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)

	var r Reply
	switch {
	case classifier.ContainsAny(lower, blockedWords):
		r = Reply{Text: BlockedReply, Route: model.RouteBlocked}
	case classifier.ContainsAny(lower, identityPhrases):
		r = Reply{Text: s.identityReply(), Route: model.RouteIdentity}
	default:
		r = s.complete(ctx, id, text)
	}
	r.SessionID = id

	err := s.log.Append(ctx, model.LogRecord{
		Timestamp: s.now().Truncate(time.Second),
		Route:     r.Route,
		UserText:  text,
		BotText:   r.Text,
	})
	if err != nil {
		s.logger.WithSession(id).WithError(err).Error("append chat log failed")
	}
	return r
}

func (s *Service) complete(ctx context.Context, id, text string) Reply {
	if s.completer == nil {
		return Reply{Text: FallbackReply, Route: model.RouteFallback}
	}
	reply, err := s.completer.Complete(ctx, s.messages(id, text))
	if err != nil || reply == "" {
		if err == nil {
			err = errors.New("empty completion")
		}
		s.logger.WithSession(id).WithError(err).Warn("completion failed, using fallback")
		return Reply{Text: FallbackReply, Route: model.RouteFallback}
	}
	s.sessions.Record(id, Turn{User: text, Bot: reply})
	return Reply{Text: reply, Route: model.RouteModel}
}

// messages builds the system prompt, up to five prior turns and the new message.
func (s *Service) messages(id, text string) []Message {
	msgs := []Message{{Role: "system", Content: s.systemPrompt()}}
	for _, t := range s.sessions.History(id) {
		msgs = append(msgs,
			Message{Role: "user", Content: t.User},
			Message{Role: "assistant", Content: t.Bot},
		)
	}
	return append(msgs, Message{Role: "user", Content: text})
}

func (s *Service) systemPrompt() string {
	return fmt.Sprintf("You are the official AI chatbot for %[1]s. "+
		"You must ONLY use the information provided below to answer questions. "+
		"Do NOT make up services or capabilities. Do NOT guess. Stay strictly on-topic.\n\n"+
		"================== COMPANY DATA ==================\n"+
		"%[2]s\n"+
		"==================================================\n\n"+
		"If you don't know the answer from the data above, say:\n"+
		"'I'm here to assist with questions specifically about %[1]s and our chatbot services. Please ask about that.'",
		s.company(), s.cfg.KnowledgeBase)
}

func (s *Service) identityReply() string {
	return fmt.Sprintf("I'm the official chatbot for %s — here to help you with any queries.", s.company())
}

func (s *Service) company() string {
	if s.cfg.Company == "" {
		return "Solaris AI"
	}
	return s.cfg.Company
}
