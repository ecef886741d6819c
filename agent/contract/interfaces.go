package contract

import (
	"context"

	menux "github.com/saveurlabs/saveur-agent/agent/menu"
)

// Responder is a single-turn text agent: all state enters via the request,
// nothing persists between calls. Implementations must return an error
// rather than panic; callers convert errors to degraded text responses.
type Responder interface {
	Respond(ctx context.Context, req StepRequest) (string, error)
}

// SwarmAgent is a Responder that may additionally name the next agent.
type SwarmAgent interface {
	Name() AgentName
	Step(ctx context.Context, req StepRequest) (StepResult, error)
}

// Registry resolves the configured agents.
type Registry interface {
	Swarm(name AgentName) (SwarmAgent, bool)
	Fallback() Responder
	Specialist(kind SpecialistKind) (Responder, bool)
}

// Catalog is the authoritative menu source. Implementations must return an
// empty snapshot rather than an error on transient failure so conversation
// is never blocked on the datastore.
type Catalog interface {
	GetMenu(ctx context.Context, businessID string) (*menux.Snapshot, error)
}

// OrderPlacer submits a confirmed order and returns its id.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, order Order) (string, error)
}

// EventPublisher delivers turn events best-effort. Failures are logged by
// callers and never block the response path.
type EventPublisher interface {
	Publish(ctx context.Context, event TurnEvent) error
}
