package nodes

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	swarmx "github.com/saveurlabs/saveur-agent/agent/agents/swarm"
	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
)

// SwarmRunner is the slice of the coordinator the graph needs.
type SwarmRunner interface {
	Run(ctx context.Context, req contractx.StepRequest) (swarmx.Result, error)
}

// ExecuteFallback runs the single comprehensive agent. This is the default
// execution path.
func ExecuteFallback(ctx context.Context, in *GraphState, registry contractx.Registry) (*GraphState, error) {
	reply, err := registry.Fallback().Respond(ctx, contractx.StepRequest{
		Turn:        in.Turn,
		UserMessage: in.Message,
	})
	if err != nil {
		log.Error().Err(err).Str("session_id", in.SessionID).Msg("fallback agent failed")
		in.Reply = degradedReply
		in.Degraded = true
		return in, nil
	}
	in.Reply = reply
	return in, nil
}

// ExecuteSwarm runs the multi-agent handoff chain.
func ExecuteSwarm(ctx context.Context, in *GraphState, coordinator SwarmRunner) (*GraphState, error) {
	res, err := coordinator.Run(ctx, contractx.StepRequest{
		Turn:        in.Turn,
		UserMessage: in.Message,
	})
	if err != nil {
		log.Error().Err(err).Str("session_id", in.SessionID).Msg("swarm execution failed")
		in.Reply = degradedReply
		in.Degraded = true
		return in, nil
	}
	in.Reply = res.Message
	in.FellBack = res.FellBack
	return in, nil
}

// ExecuteDirect runs one named specialist tool. An unknown tool name is a
// request error and propagates; a model failure degrades like the other
// paths.
func ExecuteDirect(ctx context.Context, in *GraphState, invoker ToolInvoker) (*GraphState, error) {
	reply, err := invoker.Invoke(ctx, in.Tool, in.Turn, in.Message)
	if err != nil {
		if errors.Is(err, contractx.ErrValidation) {
			return nil, err
		}
		log.Error().Err(err).Str("tool", in.Tool).Msg("direct tool call failed")
		in.Reply = degradedReply
		in.Degraded = true
		return in, nil
	}
	in.Reply = reply
	return in, nil
}
