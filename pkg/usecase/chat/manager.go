package chat

import (
	"context"
	"sync"
	"time"

	"github.com/jeni-ai/jeni/pkg/adapter"
	"github.com/jeni-ai/jeni/pkg/model"
	"github.com/jeni-ai/jeni/pkg/utils/logging"
)

const defaultInactivityTimeout = 30 * time.Minute

// Manager keeps live sessions keyed by session id so repeated invocations
// with the same id continue the same conversation and FactSet. Sessions
// never share extractor state; the per-session instance is created here
// and nowhere else.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	gemini      adapter.Gemini
	timeout     time.Duration
	sessionOpts []SessionOption
}

// NewManager creates a session manager. A non-positive timeout falls back
// to the default. Session options are applied to every session it creates.
func NewManager(gemini adapter.Gemini, timeout time.Duration, opts ...SessionOption) *Manager {
	if timeout <= 0 {
		timeout = defaultInactivityTimeout
	}
	return &Manager{
		sessions:    make(map[string]*Session),
		gemini:      gemini,
		timeout:     timeout,
		sessionOpts: opts,
	}
}

// Acquire returns the live session for the identity, creating one on first
// use. An existing session keeps its original actor binding.
func (m *Manager) Acquire(ctx context.Context, identity model.SessionIdentity) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[identity.SessionID]; ok {
		return s, nil
	}

	s, err := NewSession(ctx, m.gemini, identity, m.sessionOpts...)
	if err != nil {
		return nil, err
	}

	m.sessions[identity.SessionID] = s
	return s, nil
}

// ActiveCount returns the number of live sessions
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StartJanitor periodically drops sessions idle past the timeout. Returns
// when ctx is cancelled.
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireIdle(ctx)
			}
		}
	}()
}

func (m *Manager) expireIdle(ctx context.Context) {
	now := time.Now().UnixNano()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if time.Duration(now-s.lastActivity.Load()) < m.timeout {
			continue
		}
		delete(m.sessions, id)
		logging.From(ctx).Info("expired idle session", "session_id", id)
	}
}
