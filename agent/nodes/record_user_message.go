package nodes

import contractx "github.com/saveurlabs/saveur-agent/agent/contract"

// RecordUserMessage appends the customer turn to memory, creating the
// session if absent. Direct tool calls are stateless and skip memory
// entirely.
func RecordUserMessage(in *GraphState, store SessionStore) (*GraphState, error) {
	if in.Mode == contractx.ModeDirect {
		return in, nil
	}
	store.AddUserMessage(in.SessionID, in.Message, in.BusinessID, in.UserID)
	return in, nil
}
