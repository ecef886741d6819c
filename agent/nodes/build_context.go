package nodes

import (
	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
	memoryx "github.com/saveurlabs/saveur-agent/agent/memory"
)

// BuildContext assembles the per-turn prompt context. Menu context is always
// present; conversation and order context only exist for session-backed
// modes.
func BuildContext(in *GraphState, store SessionStore) (*GraphState, error) {
	turn := contractx.TurnContext{
		BusinessID:  in.BusinessID,
		MenuContext: in.Menu.PromptContext(),
	}

	if in.Mode != contractx.ModeDirect {
		turn.ConversationContext = store.ConversationContext(in.SessionID, memoryx.DefaultContextLimit)
		turn.OrderContext = store.OrderContext(in.SessionID).PromptLines()
	}

	in.Turn = turn
	return in, nil
}
