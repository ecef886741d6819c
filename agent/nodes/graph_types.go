package nodes

import (
	"context"
	"errors"
	"time"

	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
	memoryx "github.com/saveurlabs/saveur-agent/agent/memory"
	menux "github.com/saveurlabs/saveur-agent/agent/menu"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
	ErrInvalidTool    = errors.New("tool name is empty")
)

// degradedReply is returned when an execution path fails outright; the turn
// still completes so the customer is never left without an answer.
const degradedReply = "I'm sorry, I'm having trouble processing your request right now. Please try again in a moment."

type GraphInput struct {
	SessionID  string
	UserID     string
	BusinessID string
	Message    string
	Mode       contractx.Mode
	Tool       string
}

type GraphOutput struct {
	Reply     string
	SessionID string
	Mode      contractx.Mode
	Grounded  bool
	FellBack  bool
	Degraded  bool
}

type GraphState struct {
	SessionID  string
	UserID     string
	BusinessID string
	Message    string
	Mode       contractx.Mode
	Tool       string
	Now        time.Time

	Menu *menux.Snapshot
	Turn contractx.TurnContext

	Reply    string
	Grounded bool
	FellBack bool
	Degraded bool
}

// SessionStore is the slice of the memory service the graph needs.
type SessionStore interface {
	AddUserMessage(sessionID, text, businessID, userID string) *memoryx.Session
	AddAssistantMessage(sessionID, text string) *memoryx.Session
	ConversationContext(sessionID string, limit int) string
	OrderContext(sessionID string) memoryx.OrderContext
}

// ToolInvoker runs one stateless direct tool call.
type ToolInvoker interface {
	Invoke(ctx context.Context, name string, turn contractx.TurnContext, userMessage string) (string, error)
}
