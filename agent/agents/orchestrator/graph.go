package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
	nodex "github.com/saveurlabs/saveur-agent/agent/nodes"
)

func (o *Orchestrator) compileHandleTurnGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("record_user_message",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RecordUserMessage(in, o.memory)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node record_user_message: %w", err)
	}

	if err := graph.AddLambdaNode("load_menu",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadMenu(ctx, in, o.catalog)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_menu: %w", err)
	}

	if err := graph.AddLambdaNode("build_context",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.BuildContext(in, o.memory)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node build_context: %w", err)
	}

	if err := graph.AddLambdaNode("execute_fallback",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExecuteFallback(ctx, in, o.models)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_fallback: %w", err)
	}

	if err := graph.AddLambdaNode("execute_swarm",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExecuteSwarm(ctx, in, o.swarm)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_swarm: %w", err)
	}

	if err := graph.AddLambdaNode("execute_direct",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExecuteDirect(ctx, in, o.tools)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_direct: %w", err)
	}

	if err := graph.AddLambdaNode("ground_response",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.GroundResponse(in, o.validator)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node ground_response: %w", err)
	}

	if err := graph.AddLambdaNode("record_assistant_message",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RecordAssistantMessage(in, o.memory)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node record_assistant_message: %w", err)
	}

	if err := graph.AddLambdaNode("publish_events",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.PublishEvents(ctx, in, o.events)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node publish_events: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
			}
			switch in.Mode {
			case contractx.ModeSwarm:
				return "execute_swarm", nil
			case contractx.ModeDirect:
				return "execute_direct", nil
			default:
				return "execute_fallback", nil
			}
		},
		map[string]bool{
			"execute_fallback": true,
			"execute_swarm":    true,
			"execute_direct":   true,
		},
	)
	if err := graph.AddBranch("build_context", branch); err != nil {
		return nil, fmt.Errorf("add execution branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "record_user_message"},
		{"record_user_message", "load_menu"},
		{"load_menu", "build_context"},
		{"execute_fallback", "ground_response"},
		{"execute_swarm", "ground_response"},
		{"execute_direct", "ground_response"},
		{"ground_response", "record_assistant_message"},
		{"record_assistant_message", "publish_events"},
		{"publish_events", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
