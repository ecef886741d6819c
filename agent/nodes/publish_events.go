package nodes

import (
	"context"

	"github.com/rs/zerolog/log"
	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
)

// PublishEvents emits the turn event best-effort. A nil publisher disables
// eventing; a publish failure is logged and never blocks the reply.
func PublishEvents(ctx context.Context, in *GraphState, publisher contractx.EventPublisher) (*GraphState, error) {
	if publisher == nil {
		return in, nil
	}

	event := contractx.TurnEvent{
		Type:       "turn.completed",
		SessionID:  in.SessionID,
		BusinessID: in.BusinessID,
		Mode:       in.Mode,
		Grounded:   in.Grounded,
		At:         in.Now,
	}
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("session_id", in.SessionID).Msg("turn event publish failed")
	}
	return in, nil
}
