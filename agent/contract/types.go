package contract

import "time"

// AgentName identifies one member of the ordering swarm. The set is closed:
// a handoff naming anything else is treated as a final answer.
type AgentName string

const (
	AgentOrderCoordinator   AgentName = "order_coordinator"
	AgentMenuSpecialist     AgentName = "menu_specialist"
	AgentLanguageSpecialist AgentName = "language_specialist"
	AgentDietarySpecialist  AgentName = "dietary_specialist"
	AgentOrderValidator     AgentName = "order_validator"
)

// SwarmAgents lists the swarm members in their registry order.
// AgentOrderCoordinator is always the entry point.
var SwarmAgents = []AgentName{
	AgentOrderCoordinator,
	AgentMenuSpecialist,
	AgentLanguageSpecialist,
	AgentDietarySpecialist,
	AgentOrderValidator,
}

// KnownAgent reports whether name is a member of the swarm.
func KnownAgent(name AgentName) bool {
	for _, a := range SwarmAgents {
		if a == name {
			return true
		}
	}
	return false
}

// SpecialistKind identifies a directly-callable specialist tool.
type SpecialistKind string

const (
	SpecialistOrdering       SpecialistKind = "ordering"
	SpecialistRecommendation SpecialistKind = "recommendation"
	SpecialistTranslation    SpecialistKind = "translation"
	SpecialistDietary        SpecialistKind = "dietary"
)

// Mode selects the execution path for one customer turn.
type Mode string

const (
	// ModeFallback runs the single comprehensive agent. Default path.
	ModeFallback Mode = "fallback"
	// ModeSwarm runs the multi-agent handoff chain. Opt-in.
	ModeSwarm Mode = "swarm"
	// ModeDirect calls one named specialist tool without session memory.
	ModeDirect Mode = "direct"
)

// TurnContext carries everything an otherwise-stateless agent needs for one
// invocation. MenuContext always precedes ConversationContext in the
// composed system prompt so grounding instructions survive long transcripts.
type TurnContext struct {
	BusinessID          string
	MenuContext         string
	ConversationContext string
	OrderContext        string
}

// StepRequest is one agent invocation.
type StepRequest struct {
	Turn        TurnContext
	UserMessage string
}

// StepResult is one swarm agent's output. An empty HandoffTo means the
// message is the final answer for the turn.
type StepResult struct {
	Message   string
	HandoffTo AgentName
}

// OrderItem is one line of a confirmed order.
type OrderItem struct {
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
}

// CustomerInfo is collected by the ordering flow before placement.
type CustomerInfo struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// Order is the placement request handed to the order backend.
type Order struct {
	BusinessID string       `json:"business_id"`
	SessionID  string       `json:"session_id,omitempty"`
	Items      []OrderItem  `json:"items"`
	Customer   CustomerInfo `json:"customer"`
}

// TurnEvent is the best-effort notification published after each turn.
type TurnEvent struct {
	Type       string    `json:"type"`
	SessionID  string    `json:"session_id,omitempty"`
	BusinessID string    `json:"business_id,omitempty"`
	Mode       Mode      `json:"mode"`
	Grounded   bool      `json:"grounded"`
	At         time.Time `json:"at"`
}
