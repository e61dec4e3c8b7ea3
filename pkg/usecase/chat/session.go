// Package chat runs the interactive conversational path: one streaming
// reply per user turn, with each utterance also fed through the fact
// extractor so personalization accumulates over the session.
package chat

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jeni-ai/jeni/pkg/adapter"
	"github.com/jeni-ai/jeni/pkg/model"
	"github.com/jeni-ai/jeni/pkg/usecase/extract"
	"github.com/jeni-ai/jeni/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

const systemPrompt = "You are a helpful assistant named Jeni, and you like to mention your name.\n" +
	"Use memory when it helps personalize answers.\n" +
	"Do not store or repeat highly sensitive identifiers."

// Metrics receives chat counters. Implementations must be safe for
// concurrent use.
type Metrics interface {
	ExtractionFailed()
}

type nopMetrics struct{}

func (nopMetrics) ExtractionFailed() {}

// Session is one live conversation. It owns its chat history and its
// extractor state; sessions share nothing with each other. Turns within a
// session are serialized by the caller.
type Session struct {
	identity  model.SessionIdentity
	chat      *genai.Chat
	extractor *extract.Extractor
	metrics   Metrics

	// lastActivity is unix nanos, read by the manager's janitor while
	// turns are in flight
	lastActivity atomic.Int64
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithMetrics attaches chat counters to the session
func WithMetrics(m Metrics) SessionOption {
	return func(s *Session) {
		s.metrics = m
	}
}

// NewSession creates a session for the given identity
func NewSession(ctx context.Context, gemini adapter.Gemini, identity model.SessionIdentity, opts ...SessionOption) (*Session, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, ""),
	}

	genaiChat, err := gemini.CreateChat(ctx, config, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create chat",
			goerr.V("session_id", identity.SessionID))
	}

	s := &Session{
		identity:  identity,
		chat:      genaiChat,
		extractor: extract.New(gemini),
		metrics:   nopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastActivity.Store(time.Now().UnixNano())
	return s, nil
}

// Identity returns the session's resolved identity
func (s *Session) Identity() model.SessionIdentity {
	return s.identity
}

// Facts returns the facts accumulated so far in this session
func (s *Session) Facts() model.FactSet {
	return s.extractor.Facts()
}

// Send runs one conversational turn. Reply chunks are passed to emit in
// the order the model produces them; emit returning an error aborts the
// stream. The utterance is also fed to the extractor first; an extraction
// failure degrades personalization silently and never interrupts the
// reply. Cancelling ctx aborts the pending inference call; extractor state
// is only mutated after a successful parse, so cancellation cannot corrupt
// it.
func (s *Session) Send(ctx context.Context, message string, emit func(chunk string) error) error {
	s.lastActivity.Store(time.Now().UnixNano())

	if result := s.extractor.Extract(ctx, message); result.Error != "" {
		s.metrics.ExtractionFailed()
		logging.From(ctx).Warn("fact extraction failed",
			"session_id", s.identity.SessionID, "error", result.Error)
	}

	for resp, err := range s.chat.SendMessageStream(ctx, genai.Part{Text: message}) {
		if err != nil {
			return goerr.Wrap(err, "failed to stream reply",
				goerr.V("session_id", s.identity.SessionID))
		}
		if chunk := chunkText(resp); chunk != "" {
			if err := emit(chunk); err != nil {
				return err
			}
		}
	}

	return nil
}

// chunkText flattens one streamed response into its text parts
func chunkText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	text := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text += part.Text
		}
	}
	return text
}
