package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	swarmx "github.com/saveurlabs/saveur-agent/agent/agents/swarm"
	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
	groundingx "github.com/saveurlabs/saveur-agent/agent/grounding"
	memoryx "github.com/saveurlabs/saveur-agent/agent/memory"
	nodex "github.com/saveurlabs/saveur-agent/agent/nodes"
	toolx "github.com/saveurlabs/saveur-agent/agent/tool"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
	ErrInvalidTool    = nodex.ErrInvalidTool
)

// TurnRequest is one customer message on any execution path.
type TurnRequest struct {
	SessionID  string
	UserID     string
	BusinessID string
	Message    string
	Mode       contractx.Mode
	Tool       string
}

// TurnReply is the finished turn.
type TurnReply struct {
	Reply     string
	SessionID string
	Mode      contractx.Mode
	Grounded  bool
	FellBack  bool
	Degraded  bool
}

// Orchestrator owns the per-turn pipeline: memory, menu snapshot, execution
// path selection, grounding, and event publication.
type Orchestrator struct {
	memory    *memoryx.Service
	catalog   contractx.Catalog
	models    contractx.Registry
	swarm     nodex.SwarmRunner
	tools     nodex.ToolInvoker
	validator *groundingx.Validator
	events    contractx.EventPublisher

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

// New wires the pipeline. Memory, catalog, and models are required. A nil
// swarm runner or tool invoker is built from the registry; a nil event
// publisher disables eventing.
func New(
	memory *memoryx.Service,
	catalog contractx.Catalog,
	models contractx.Registry,
	swarm nodex.SwarmRunner,
	tools nodex.ToolInvoker,
	events contractx.EventPublisher,
) (*Orchestrator, error) {
	if memory == nil {
		return nil, errors.New("memory service is required")
	}
	if catalog == nil {
		return nil, errors.New("menu catalog is required")
	}
	if models == nil {
		return nil, errors.New("model registry is required")
	}
	if swarm == nil {
		swarm = swarmx.NewCoordinator(models, swarmx.Config{})
	}
	if tools == nil {
		tools = toolx.NewInvoker(models)
	}

	o := &Orchestrator{
		memory:    memory,
		catalog:   catalog,
		models:    models,
		swarm:     swarm,
		tools:     tools,
		validator: groundingx.New(),
		events:    events,
		now:       time.Now,
	}

	graphRunner, err := o.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleTurn runs one customer message through the pipeline.
func (o *Orchestrator) HandleTurn(ctx context.Context, req TurnRequest) (TurnReply, error) {
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID:  req.SessionID,
		UserID:     req.UserID,
		BusinessID: req.BusinessID,
		Message:    req.Message,
		Mode:       req.Mode,
		Tool:       req.Tool,
	})
	if err != nil {
		return TurnReply{}, err
	}
	return TurnReply{
		Reply:     out.Reply,
		SessionID: out.SessionID,
		Mode:      out.Mode,
		Grounded:  out.Grounded,
		FellBack:  out.FellBack,
		Degraded:  out.Degraded,
	}, nil
}

// CreateSession registers a conversation session ahead of the first message.
func (o *Orchestrator) CreateSession(sessionID, businessID, userID string) (*memoryx.Session, error) {
	return o.memory.CreateSession(sessionID, businessID, userID)
}

// History returns the full transcript of a session, or nil.
func (o *Orchestrator) History(sessionID string) []memoryx.Message {
	return o.memory.History(sessionID)
}

// ClearSession drops a session. True iff one existed.
func (o *Orchestrator) ClearSession(sessionID string) bool {
	return o.memory.ClearSession(sessionID)
}

// Stats reports memory usage counters.
func (o *Orchestrator) Stats() memoryx.Stats {
	return o.memory.Stats()
}

// CleanupExpired evicts expired sessions on demand.
func (o *Orchestrator) CleanupExpired() int {
	return o.memory.CleanupExpired()
}
