package nodes

import (
	"github.com/rs/zerolog/log"
	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
)

// RecordAssistantMessage appends the final reply to memory. The session can
// expire between the user turn and this point; that only costs history, so
// it is logged and ignored.
func RecordAssistantMessage(in *GraphState, store SessionStore) (*GraphState, error) {
	if in.Mode == contractx.ModeDirect {
		return in, nil
	}
	if session := store.AddAssistantMessage(in.SessionID, in.Reply); session == nil {
		log.Warn().Str("session_id", in.SessionID).Msg("session vanished before assistant turn could be recorded")
	}
	return in, nil
}
