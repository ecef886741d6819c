package memory

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrDuplicateSession = errors.New("session already exists")

const (
	DefaultSessionTimeout = 30 * time.Minute
	DefaultContextLimit   = 10
)

type Config struct {
	SessionTimeout time.Duration `envconfig:"SESSION_TIMEOUT" split_words:"true" default:"30m"`
}

// Service is the process-wide conversational memory. The session map is the
// only mutable shared state in the core; one coarse mutex guards every
// mutation, and it is never held across model or datastore I/O. Expired
// sessions are evicted lazily on access, never swept proactively.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*Session
	timeout  time.Duration

	now func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(cfg Config, opts ...Option) *Service {
	timeout := cfg.SessionTimeout
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}

	s := &Service{
		sessions: make(map[string]*Session),
		timeout:  timeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateSession registers a new session. A colliding live id returns
// ErrDuplicateSession; an expired one is silently replaced.
func (s *Service) CreateSession(sessionID, businessID, userID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing, ok := s.sessions[sessionID]; ok && !existing.expired(now, s.timeout) {
		return nil, ErrDuplicateSession
	}

	session := newSession(sessionID, businessID, userID, now)
	s.sessions[sessionID] = session
	log.Info().Str("session_id", sessionID).Str("business_id", businessID).Msg("created conversation session")
	return cloneSession(session), nil
}

// GetSession returns a copy of the session, or nil. A found-but-expired
// session is evicted and reported as absent.
func (s *Service) GetSession(sessionID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSession(s.liveSession(sessionID))
}

// liveSession must be called with the lock held.
func (s *Service) liveSession(sessionID string) *Session {
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	if session.expired(s.now(), s.timeout) {
		delete(s.sessions, sessionID)
		log.Info().Str("session_id", sessionID).Msg("session expired, evicted")
		return nil
	}
	return session
}

// AddUserMessage appends a user turn, creating the session if absent.
func (s *Service) AddUserMessage(sessionID, text, businessID, userID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.liveSession(sessionID)
	if session == nil {
		session = newSession(sessionID, businessID, userID, s.now())
		s.sessions[sessionID] = session
	}
	session.appendMessage(RoleUser, text, s.now())
	return cloneSession(session)
}

// AddAssistantMessage appends an assistant turn. A missing or expired
// session returns nil without creating anything: an assistant turn with no
// prior user turn is a caller bug, not a new conversation.
func (s *Service) AddAssistantMessage(sessionID, text string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.liveSession(sessionID)
	if session == nil {
		return nil
	}
	session.appendMessage(RoleAssistant, text, s.now())
	return cloneSession(session)
}

// ConversationContext renders the last limit messages for prompt injection.
// Empty string when the session is absent or has no messages.
func (s *Service) ConversationContext(sessionID string, limit int) string {
	if limit <= 0 {
		limit = DefaultContextLimit
	}
	session := s.GetSession(sessionID)
	if session == nil {
		return ""
	}
	return session.ConversationContext(limit)
}

// OrderContext derives the advisory keyword extraction. Never fails.
func (s *Service) OrderContext(sessionID string) OrderContext {
	session := s.GetSession(sessionID)
	if session == nil {
		return OrderContext{}
	}
	return session.ExtractOrderContext()
}

// History returns the full message list in arrival order.
func (s *Service) History(sessionID string) []Message {
	session := s.GetSession(sessionID)
	if session == nil {
		return nil
	}
	return session.Messages
}

// ClearSession removes a session. True iff one was removed.
func (s *Service) ClearSession(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return false
	}
	delete(s.sessions, sessionID)
	log.Info().Str("session_id", sessionID).Msg("cleared conversation session")
	return true
}

// CleanupExpired evicts every expired session and returns the count.
// Operator convenience; nothing in the core schedules it.
func (s *Service) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, session := range s.sessions {
		if session.expired(now, s.timeout) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.Info().Int("count", removed).Msg("cleaned up expired sessions")
	}
	return removed
}

type Stats struct {
	ActiveSessions     int            `json:"active_sessions"`
	TotalMessages      int            `json:"total_messages"`
	SessionsByBusiness map[string]int `json:"sessions_by_business"`
}

func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{SessionsByBusiness: make(map[string]int)}
	for _, session := range s.sessions {
		stats.ActiveSessions++
		stats.TotalMessages += len(session.Messages)
		if session.BusinessID != "" {
			stats.SessionsByBusiness[session.BusinessID]++
		}
	}
	return stats
}

// cloneSession returns a defensive copy so callers never observe (or race
// with) a concurrent append to the live message slice.
func cloneSession(s *Session) *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return &out
}
