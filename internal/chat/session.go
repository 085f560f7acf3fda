// Package chat runs a question-and-answer conversation about one article.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/infblueocean/khabar/internal/brain"
	"github.com/infblueocean/khabar/internal/logging"
	"github.com/infblueocean/khabar/internal/model"
	"github.com/infblueocean/khabar/internal/otel"
)

// FallbackReply is shown in place of an answer when the model call fails.
const FallbackReply = "Sorry, I encountered an error. Please try again."

const systemPrompt = "You answer questions about a single news article. " +
	"Use the article title and content given. If the article does not say, " +
	"answer from general knowledge and say so. Keep answers short."

// Generator produces a reply for a prompt. brain.Manager and every
// brain.Provider satisfy it.
type Generator interface {
	Generate(ctx context.Context, req brain.Request) (brain.Response, error)
}

// Role is who spoke a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation.
type Turn struct {
	Role Role
	Text string
	At   time.Time
	// Failed marks an assistant turn that carries FallbackReply.
	Failed bool
}

// ServiceError wraps a failed generation for logs.
type ServiceError struct {
	ArticleID string
	Err       error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("chat about %s: %v", e.ArticleID, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

var errEmptyReply = errors.New("empty reply")

// Session is the conversation about one article. Sends are serialized:
// a second Send waits for the first to finish, so turns never interleave.
type Session struct {
	article   model.Article
	gen       Generator
	maxTokens int
	events    *otel.Logger
	now       func() time.Time

	send sync.Mutex // held for the whole of Send

	mu    sync.RWMutex
	turns []Turn
	busy  bool
	last  error
}

// Option configures a Session.
type Option func(*Session)

// WithMaxTokens caps reply length.
func WithMaxTokens(n int) Option {
	return func(s *Session) { s.maxTokens = n }
}

// WithEvents records chat events.
func WithEvents(events *otel.Logger) Option {
	return func(s *Session) { s.events = events }
}

// WithClock sets the turn timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession starts an empty conversation about article.
func NewSession(article model.Article, gen Generator, opts ...Option) *Session {
	s := &Session{article: article, gen: gen, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send asks text about the article and returns the assistant's turn.
// Blank text is ignored and returns the zero Turn. Failures never escape:
// they become a FallbackReply turn and are available from LastError.
func (s *Session) Send(ctx context.Context, text string) Turn {
	if strings.TrimSpace(text) == "" {
		return Turn{}
	}

	s.send.Lock()
	defer s.send.Unlock()

	s.mu.Lock()
	prior := append([]Turn(nil), s.turns...)
	s.turns = append(s.turns, Turn{Role: RoleUser, Text: text, At: s.now()})
	s.busy = true
	s.mu.Unlock()

	s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindChatSend, Comp: "chat", Source: s.article.ID, Query: text})
	start := time.Now()

	reply := Turn{Role: RoleAssistant}
	resp, err := s.gen.Generate(ctx, brain.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   BuildPrompt(s.article, prior, text),
		MaxTokens:    s.maxTokens,
	})
	if err == nil && strings.TrimSpace(resp.Content) == "" {
		err = errEmptyReply
	}
	if err != nil {
		err = &ServiceError{ArticleID: s.article.ID, Err: err}
		logging.Error("chat reply failed", "article", s.article.ID, "error", err)
		s.events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindChatError, Comp: "chat", Source: s.article.ID, Dur: time.Since(start), Err: err.Error()})
		reply.Text = FallbackReply
		reply.Failed = true
	} else {
		reply.Text = strings.TrimSpace(resp.Content)
		s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindChatReply, Comp: "chat", Source: s.article.ID, Dur: time.Since(start), Count: len(reply.Text), Msg: resp.Model})
	}
	reply.At = s.now()

	s.mu.Lock()
	s.turns = append(s.turns, reply)
	s.busy = false
	s.last = err
	s.mu.Unlock()
	return reply
}

// Turns returns a copy of the conversation so far.
func (s *Session) Turns() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Turn(nil), s.turns...)
}

// Busy reports whether a reply is being generated.
func (s *Session) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy
}

// Article returns the article under discussion.
func (s *Session) Article() model.Article { return s.article }

// LastError returns the error behind the most recent fallback reply, or nil.
func (s *Session) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// BuildPrompt renders the article, earlier turns and the new question.
func BuildPrompt(a model.Article, prior []Turn, question string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Article Title: %s\nArticle Content: %s\n", a.Title, a.Description)
	if len(prior) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, t := range prior {
			if t.Failed {
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Text)
		}
	}
	fmt.Fprintf(&b, "\nUser Question: %s", question)
	return b.String()
}
