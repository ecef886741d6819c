package memory

import (
	"strings"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation. Immutable once appended.
type Message struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Session is the unit of multi-turn conversational memory, keyed by an
// opaque id. Owned exclusively by the Service; callers only ever see copies.
type Session struct {
	SessionID    string    `json:"session_id"`
	BusinessID   string    `json:"business_id,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

func newSession(sessionID, businessID, userID string, now time.Time) *Session {
	return &Session{
		SessionID:    sessionID,
		BusinessID:   businessID,
		UserID:       userID,
		CreatedAt:    now.UTC(),
		LastActivity: now.UTC(),
	}
}

func (s *Session) appendMessage(role, content string, now time.Time) {
	s.Messages = append(s.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: now.UTC(),
	})
	s.touch(now)
}

// touch keeps LastActivity monotonically non-decreasing.
func (s *Session) touch(now time.Time) {
	utc := now.UTC()
	if utc.After(s.LastActivity) {
		s.LastActivity = utc
	}
}

func (s *Session) expired(now time.Time, timeout time.Duration) bool {
	return now.UTC().Sub(s.LastActivity) > timeout
}

// RecentMessages returns the last limit messages in arrival order.
func (s *Session) RecentMessages(limit int) []Message {
	if s == nil || len(s.Messages) == 0 || limit <= 0 {
		return nil
	}
	start := len(s.Messages) - limit
	if start < 0 {
		start = 0
	}
	out := make([]Message, len(s.Messages)-start)
	copy(out, s.Messages[start:])
	return out
}

// ConversationContext renders the recent transcript as the role-tagged block
// injected verbatim into agent prompts. This string is the only channel by
// which multi-turn memory reaches the stateless agents.
func (s *Session) ConversationContext(limit int) string {
	recent := s.RecentMessages(limit)
	if len(recent) == 0 {
		return ""
	}

	lines := make([]string, 0, len(recent)+2)
	lines = append(lines, "CONVERSATION HISTORY:")
	for _, msg := range recent {
		lines = append(lines, "["+msg.Timestamp.Format("15:04")+"] "+titleRole(msg.Role)+": "+msg.Content)
	}
	lines = append(lines, "", "Please continue this conversation naturally, maintaining context from previous messages.")
	return strings.Join(lines, "\n")
}

func titleRole(role string) string {
	if role == "" {
		return role
	}
	return strings.ToUpper(role[:1]) + role[1:]
}

// OrderContext is a point-in-time keyword extraction from a session's user
// messages. Purely advisory; recomputed on demand, never persisted.
type OrderContext struct {
	DietaryRestrictions []string `json:"dietary_restrictions"`
	QuantityRequests    []string `json:"quantity_requests"`
	Preferences         []string `json:"preferences"`
}

func (o OrderContext) Empty() bool {
	return len(o.DietaryRestrictions) == 0 && len(o.QuantityRequests) == 0 && len(o.Preferences) == 0
}

// PromptLines renders the extraction for prompt injection.
func (o OrderContext) PromptLines() string {
	if o.Empty() {
		return ""
	}
	var b strings.Builder
	b.WriteString("ORDER CONTEXT:")
	if len(o.DietaryRestrictions) > 0 {
		b.WriteString("\nDietary mentions: " + strings.Join(o.DietaryRestrictions, ", "))
	}
	if len(o.QuantityRequests) > 0 {
		b.WriteString("\nQuantity mentions: " + strings.Join(o.QuantityRequests, ", "))
	}
	if len(o.Preferences) > 0 {
		b.WriteString("\nPreference mentions: " + strings.Join(o.Preferences, ", "))
	}
	return b.String()
}

var (
	dietaryKeywords    = []string{"vegetarian", "vegan", "gluten-free", "keto", "allergic", "allergy"}
	quantityKeywords   = []string{"2", "two", "3", "three", "large", "small", "extra"}
	preferenceKeywords = []string{"spicy", "mild", "hot", "cold", "sweet", "sour"}
)

// ExtractOrderContext scans user messages for dietary, quantity, and
// preference keywords. Best-effort heuristic; it never fails.
func (s *Session) ExtractOrderContext() OrderContext {
	var out OrderContext
	if s == nil {
		return out
	}
	for _, msg := range s.Messages {
		if msg.Role != RoleUser {
			continue
		}
		content := strings.ToLower(msg.Content)
		out.DietaryRestrictions = appendMatches(out.DietaryRestrictions, content, dietaryKeywords)
		out.QuantityRequests = appendMatches(out.QuantityRequests, content, quantityKeywords)
		out.Preferences = appendMatches(out.Preferences, content, preferenceKeywords)
	}
	return out
}

func appendMatches(acc []string, content string, keywords []string) []string {
	for _, kw := range keywords {
		if !strings.Contains(content, kw) {
			continue
		}
		if !containsString(acc, kw) {
			acc = append(acc, kw)
		}
	}
	return acc
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
