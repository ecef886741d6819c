package tool

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
)

// Public names for the directly-callable specialist tools. Direct calls are
// stateless: no session is created and no conversation history is attached.
const (
	ToolOrderingAssistant   = "ordering_assistant"
	ToolRecommendationAgent = "recommendation_agent"
	ToolTranslationAgent    = "translation_agent"
	ToolDietaryAssistant    = "dietary_assistant"
)

var toolKinds = map[string]contractx.SpecialistKind{
	ToolOrderingAssistant:   contractx.SpecialistOrdering,
	ToolRecommendationAgent: contractx.SpecialistRecommendation,
	ToolTranslationAgent:    contractx.SpecialistTranslation,
	ToolDietaryAssistant:    contractx.SpecialistDietary,
}

// Names lists the callable tool names in a stable order.
func Names() []string {
	return []string{
		ToolOrderingAssistant,
		ToolRecommendationAgent,
		ToolTranslationAgent,
		ToolDietaryAssistant,
	}
}

// Resolve maps a public tool name to its specialist kind.
func Resolve(name string) (contractx.SpecialistKind, bool) {
	kind, ok := toolKinds[strings.TrimSpace(strings.ToLower(name))]
	return kind, ok
}

// Invoker runs a named specialist tool against the current menu snapshot.
type Invoker struct {
	registry contractx.Registry
}

func NewInvoker(registry contractx.Registry) *Invoker {
	return &Invoker{registry: registry}
}

// Invoke executes one stateless tool call. The turn context carries only the
// menu snapshot; conversation memory is deliberately absent on this path.
func (i *Invoker) Invoke(ctx context.Context, name string, turn contractx.TurnContext, userMessage string) (string, error) {
	kind, ok := Resolve(name)
	if !ok {
		return "", fmt.Errorf("%w: unknown tool=%s", contractx.ErrValidation, name)
	}
	specialist, ok := i.registry.Specialist(kind)
	if !ok {
		return "", fmt.Errorf("%w: specialist=%s is not registered", contractx.ErrValidation, kind)
	}

	turn.ConversationContext = ""
	turn.OrderContext = ""
	return specialist.Respond(ctx, contractx.StepRequest{
		Turn:        turn,
		UserMessage: userMessage,
	})
}
