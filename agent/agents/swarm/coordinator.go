package swarm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
)

const (
	DefaultMaxHandoffs      = 6
	DefaultMaxIterations    = 8
	DefaultExecutionTimeout = 180 * time.Second
	DefaultPerAgentTimeout  = 60 * time.Second
	DefaultRepetitiveWindow = 3
	DefaultMinUniqueAgents  = 2
)

type Config struct {
	MaxHandoffs      int           `envconfig:"MAX_HANDOFFS" split_words:"true" default:"6"`
	MaxIterations    int           `envconfig:"MAX_ITERATIONS" split_words:"true" default:"8"`
	ExecutionTimeout time.Duration `envconfig:"EXECUTION_TIMEOUT" split_words:"true" default:"180s"`
	PerAgentTimeout  time.Duration `envconfig:"PER_AGENT_TIMEOUT" split_words:"true" default:"60s"`
	RepetitiveWindow int           `envconfig:"REPETITIVE_WINDOW" split_words:"true" default:"3"`
	MinUniqueAgents  int           `envconfig:"MIN_UNIQUE_AGENTS" split_words:"true" default:"2"`
}

func (c Config) withDefaults() Config {
	if c.MaxHandoffs <= 0 {
		c.MaxHandoffs = DefaultMaxHandoffs
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.ExecutionTimeout <= 0 {
		c.ExecutionTimeout = DefaultExecutionTimeout
	}
	if c.PerAgentTimeout <= 0 {
		c.PerAgentTimeout = DefaultPerAgentTimeout
	}
	if c.RepetitiveWindow <= 0 {
		c.RepetitiveWindow = DefaultRepetitiveWindow
	}
	if c.MinUniqueAgents <= 0 {
		c.MinUniqueAgents = DefaultMinUniqueAgents
	}
	return c
}

// TerminationReason records why the handoff loop ended.
type TerminationReason string

const (
	TerminationCompleted      TerminationReason = "completed"
	TerminationHandoffLimit   TerminationReason = "handoff_limit_exceeded"
	TerminationIterationLimit TerminationReason = "iteration_limit_exceeded"
	TerminationTimeout        TerminationReason = "timeout"
	TerminationCycleDetected  TerminationReason = "cycle_detected"
	TerminationAgentError     TerminationReason = "agent_error"
)

// HandoffRecord is one edge of the executed handoff chain.
type HandoffRecord struct {
	From contractx.AgentName
	To   contractx.AgentName
	At   time.Time
}

// Result is the outcome of one swarm execution, including the audit trail.
type Result struct {
	Message        string
	AgentsInvolved []contractx.AgentName
	Handoffs       []HandoffRecord
	Iterations     int
	Termination    TerminationReason
	FellBack       bool
}

// Coordinator drives the multi-agent handoff chain. The order coordinator is
// always the entry point; any non-convergent run is replayed against the
// single comprehensive agent with the customer's original request.
type Coordinator struct {
	registry contractx.Registry
	cfg      Config
	now      func() time.Time
}

type Option func(*Coordinator)

// WithClock overrides the handoff timestamp source in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

func NewCoordinator(registry contractx.Registry, cfg Config, opts ...Option) *Coordinator {
	c := &Coordinator{
		registry: registry,
		cfg:      cfg.withDefaults(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes the swarm for one customer turn. The returned error is
// non-nil only when the fallback replay itself fails; every loop-level
// failure degrades to the fallback agent first.
func (c *Coordinator) Run(ctx context.Context, req contractx.StepRequest) (Result, error) {
	execCtx, cancel := context.WithTimeout(ctx, c.cfg.ExecutionTimeout)
	defer cancel()

	res := Result{Termination: TerminationCompleted}
	current := contractx.AgentOrderCoordinator
	handoffs := 0

	for res.Iterations < c.cfg.MaxIterations {
		agent, ok := c.registry.Swarm(current)
		if !ok {
			// Registry invariant broken; nothing sensible to run.
			return c.fallback(ctx, req, res, TerminationAgentError,
				fmt.Errorf("%w: swarm agent=%s is not registered", contractx.ErrValidation, current))
		}

		res.Iterations++
		res.AgentsInvolved = append(res.AgentsInvolved, current)

		stepCtx, stepCancel := context.WithTimeout(execCtx, c.cfg.PerAgentTimeout)
		step, err := agent.Step(stepCtx, req)
		stepCancel()
		if err != nil {
			reason := TerminationAgentError
			if execCtx.Err() != nil || stepCtx.Err() != nil {
				reason = TerminationTimeout
			}
			return c.fallback(ctx, req, res, reason, err)
		}

		if step.HandoffTo == "" {
			res.Message = step.Message
			res.Termination = TerminationCompleted
			log.Info().
				Int("iterations", res.Iterations).
				Int("handoffs", handoffs).
				Str("final_agent", string(current)).
				Msg("swarm completed")
			return res, nil
		}

		handoffs++
		if handoffs > c.cfg.MaxHandoffs {
			return c.fallback(ctx, req, res, TerminationHandoffLimit, nil)
		}

		res.Handoffs = append(res.Handoffs, HandoffRecord{From: current, To: step.HandoffTo, At: c.now()})
		log.Debug().
			Str("from", string(current)).
			Str("to", string(step.HandoffTo)).
			Int("handoff", handoffs).
			Msg("swarm handoff")
		current = step.HandoffTo

		if c.repetitive(res.AgentsInvolved, current) {
			return c.fallback(ctx, req, res, TerminationCycleDetected, nil)
		}
	}

	return c.fallback(ctx, req, res, TerminationIterationLimit, nil)
}

// repetitive reports whether the most recent window of the chain, including
// the agent about to run, bounces between too few distinct agents.
func (c *Coordinator) repetitive(involved []contractx.AgentName, next contractx.AgentName) bool {
	chain := append(append([]contractx.AgentName{}, involved...), next)
	if len(chain) < c.cfg.RepetitiveWindow {
		return false
	}
	window := chain[len(chain)-c.cfg.RepetitiveWindow:]
	unique := make(map[contractx.AgentName]struct{}, len(window))
	for _, name := range window {
		unique[name] = struct{}{}
	}
	return len(unique) < c.cfg.MinUniqueAgents
}

// fallback replays the customer's original request against the single
// comprehensive agent after a non-convergent swarm run.
func (c *Coordinator) fallback(ctx context.Context, req contractx.StepRequest, res Result, reason TerminationReason, cause error) (Result, error) {
	res.Termination = reason
	res.FellBack = true

	evt := log.Warn().
		Str("reason", string(reason)).
		Int("iterations", res.Iterations)
	if cause != nil {
		evt = evt.Err(cause)
	}
	evt.Msg("swarm did not converge, replaying with fallback agent")

	fbCtx, cancel := context.WithTimeout(ctx, c.cfg.PerAgentTimeout)
	defer cancel()

	message, err := c.registry.Fallback().Respond(fbCtx, req)
	if err != nil {
		return res, fmt.Errorf("swarm fallback replay: %w", err)
	}
	res.Message = message
	return res, nil
}
