package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	swarmx "github.com/saveurlabs/saveur-agent/agent/agents/swarm"
	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
	memoryx "github.com/saveurlabs/saveur-agent/agent/memory"
	menux "github.com/saveurlabs/saveur-agent/agent/menu"
)

type fakeCatalog struct {
	snap *menux.Snapshot
	err  error
}

func (f *fakeCatalog) GetMenu(ctx context.Context, businessID string) (*menux.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.snap != nil {
		return f.snap, nil
	}
	return &menux.Snapshot{BusinessID: businessID}, nil
}

type fakeResponder struct {
	reply string
	err   error
	calls int
	last  contractx.StepRequest
}

func (f *fakeResponder) Respond(ctx context.Context, req contractx.StepRequest) (string, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeRegistry struct {
	fallback *fakeResponder
}

func (r *fakeRegistry) Swarm(name contractx.AgentName) (contractx.SwarmAgent, bool) {
	return nil, false
}

func (r *fakeRegistry) Fallback() contractx.Responder { return r.fallback }

func (r *fakeRegistry) Specialist(kind contractx.SpecialistKind) (contractx.Responder, bool) {
	return nil, false
}

type fakeSwarmRunner struct {
	res   swarmx.Result
	err   error
	calls int
}

func (f *fakeSwarmRunner) Run(ctx context.Context, req contractx.StepRequest) (swarmx.Result, error) {
	f.calls++
	if f.err != nil {
		return swarmx.Result{}, f.err
	}
	return f.res, nil
}

type fakeInvoker struct {
	reply string
	err   error
	calls int
	name  string
	turn  contractx.TurnContext
}

func (f *fakeInvoker) Invoke(ctx context.Context, name string, turn contractx.TurnContext, userMessage string) (string, error) {
	f.calls++
	f.name = name
	f.turn = turn
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakePublisher struct {
	events []contractx.TurnEvent
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, event contractx.TurnEvent) error {
	f.events = append(f.events, event)
	return f.err
}

func coffeeSnapshot() *menux.Snapshot {
	return &menux.Snapshot{
		BusinessID: "biz-1",
		Business:   menux.BusinessInfo{Name: "Cafe Aurora", CuisineType: "Coffee"},
		Categories: []menux.Category{
			{
				Name: "Coffee",
				Items: []menux.Item{
					{ID: "m1", Name: "Cappuccino", Price: 200, Available: true},
					{ID: "m2", Name: "Latte", Price: 210, Available: true},
				},
			},
		},
	}
}

func newTestOrchestrator(t *testing.T, catalog *fakeCatalog, registry *fakeRegistry, swarm *fakeSwarmRunner, tools *fakeInvoker, events *fakePublisher) (*Orchestrator, *memoryx.Service) {
	t.Helper()

	memory := memoryx.NewService(memoryx.Config{})
	var publisher contractx.EventPublisher
	if events != nil {
		publisher = events
	}
	o, err := New(memory, catalog, registry, swarm, tools, publisher)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o, memory
}

func TestHandleTurnFallbackRecordsAndPublishes(t *testing.T) {
	t.Parallel()

	registry := &fakeRegistry{fallback: &fakeResponder{reply: "The Cappuccino is ₱200."}}
	events := &fakePublisher{}
	o, memory := newTestOrchestrator(t, &fakeCatalog{snap: coffeeSnapshot()}, registry, &fakeSwarmRunner{}, &fakeInvoker{}, events)

	out, err := o.HandleTurn(context.Background(), TurnRequest{
		SessionID:  "s1",
		BusinessID: "biz-1",
		Message:    "How much is a cappuccino?",
	})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if out.Reply != "The Cappuccino is ₱200." {
		t.Fatalf("unexpected reply: %q", out.Reply)
	}
	if out.Mode != contractx.ModeFallback {
		t.Fatalf("unexpected mode: %q", out.Mode)
	}
	if !out.Grounded {
		t.Fatal("reply naming only real items must be grounded")
	}

	history := memory.History("s1")
	if len(history) != 2 {
		t.Fatalf("expected user+assistant turns in memory, got %d", len(history))
	}
	if history[0].Role != memoryx.RoleUser || history[1].Role != memoryx.RoleAssistant {
		t.Fatalf("unexpected roles: %+v", history)
	}

	if len(events.events) != 1 {
		t.Fatalf("expected one turn event, got %d", len(events.events))
	}
	if events.events[0].Type != "turn.completed" || !events.events[0].Grounded {
		t.Fatalf("unexpected event: %+v", events.events[0])
	}
}

func TestHandleTurnGroundingSubstitutesCorrectedResponse(t *testing.T) {
	t.Parallel()

	registry := &fakeRegistry{fallback: &fakeResponder{reply: "Our beef burger is very popular!"}}
	o, memory := newTestOrchestrator(t, &fakeCatalog{snap: coffeeSnapshot()}, registry, &fakeSwarmRunner{}, &fakeInvoker{}, nil)

	out, err := o.HandleTurn(context.Background(), TurnRequest{
		SessionID:  "s1",
		BusinessID: "biz-1",
		Message:    "What do you recommend?",
	})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if out.Grounded {
		t.Fatal("hallucinated burger must fail grounding")
	}
	if !strings.Contains(out.Reply, "Cappuccino (₱200)") {
		t.Fatalf("corrected response must list real items, got %q", out.Reply)
	}
	if strings.Contains(out.Reply, "burger") {
		t.Fatalf("corrected response must not echo the hallucination, got %q", out.Reply)
	}

	history := memory.History("s1")
	if len(history) != 2 || history[1].Content != out.Reply {
		t.Fatal("memory must record the corrected response, not the candidate")
	}
}

func TestHandleTurnSwarmMode(t *testing.T) {
	t.Parallel()

	swarm := &fakeSwarmRunner{res: swarmx.Result{Message: "Order confirmed.", FellBack: true, Termination: swarmx.TerminationHandoffLimit}}
	registry := &fakeRegistry{fallback: &fakeResponder{reply: "unused"}}
	o, _ := newTestOrchestrator(t, &fakeCatalog{snap: coffeeSnapshot()}, registry, swarm, &fakeInvoker{}, nil)

	out, err := o.HandleTurn(context.Background(), TurnRequest{
		SessionID:  "s1",
		BusinessID: "biz-1",
		Message:    "confirm my order",
		Mode:       contractx.ModeSwarm,
	})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if swarm.calls != 1 {
		t.Fatalf("swarm runner called %d times", swarm.calls)
	}
	if registry.fallback.calls != 0 {
		t.Fatal("orchestrator must not call fallback directly in swarm mode")
	}
	if out.Reply != "Order confirmed." || !out.FellBack {
		t.Fatalf("unexpected reply: %+v", out)
	}
}

func TestHandleTurnDirectModeIsStateless(t *testing.T) {
	t.Parallel()

	tools := &fakeInvoker{reply: "Latte translates to..."}
	registry := &fakeRegistry{fallback: &fakeResponder{reply: "unused"}}
	o, memory := newTestOrchestrator(t, &fakeCatalog{snap: coffeeSnapshot()}, registry, &fakeSwarmRunner{}, tools, nil)

	out, err := o.HandleTurn(context.Background(), TurnRequest{
		BusinessID: "biz-1",
		Message:    "translate latte",
		Mode:       contractx.ModeDirect,
		Tool:       "translation_agent",
	})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if tools.calls != 1 || tools.name != "translation_agent" {
		t.Fatalf("unexpected tool invocation: %+v", tools)
	}
	if out.Reply != "Latte translates to..." {
		t.Fatalf("unexpected reply: %q", out.Reply)
	}
	if stats := memory.Stats(); stats.ActiveSessions != 0 {
		t.Fatalf("direct mode must not touch memory, got %+v", stats)
	}
}

func TestHandleTurnValidation(t *testing.T) {
	t.Parallel()

	registry := &fakeRegistry{fallback: &fakeResponder{reply: "x"}}
	o, _ := newTestOrchestrator(t, &fakeCatalog{}, registry, &fakeSwarmRunner{}, &fakeInvoker{}, nil)

	cases := []struct {
		name string
		req  TurnRequest
		want error
	}{
		{"empty message", TurnRequest{SessionID: "s1", BusinessID: "b1"}, ErrInvalidMessage},
		{"missing session", TurnRequest{BusinessID: "b1", Message: "hi"}, ErrInvalidSession},
		{"direct without tool", TurnRequest{BusinessID: "b1", Message: "hi", Mode: contractx.ModeDirect}, ErrInvalidTool},
	}
	for _, tc := range cases {
		_, err := o.HandleTurn(context.Background(), tc.req)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestHandleTurnWithoutBusinessFailsOpen(t *testing.T) {
	t.Parallel()

	// A turn with no business binding runs against an empty menu, so even a
	// generic-term reply passes through ungated.
	registry := &fakeRegistry{fallback: &fakeResponder{reply: "We have a great burger selection!"}}
	o, memory := newTestOrchestrator(t, &fakeCatalog{snap: coffeeSnapshot()}, registry, &fakeSwarmRunner{}, &fakeInvoker{}, nil)

	out, err := o.HandleTurn(context.Background(), TurnRequest{
		SessionID: "s1",
		Message:   "what do you have?",
	})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if out.Reply != "We have a great burger selection!" || !out.Grounded {
		t.Fatalf("unbound turn must fail open: %+v", out)
	}
	if len(memory.History("s1")) != 2 {
		t.Fatal("unbound turn must still record the conversation")
	}
}

func TestHandleTurnDegradedOnModelFailure(t *testing.T) {
	t.Parallel()

	registry := &fakeRegistry{fallback: &fakeResponder{err: errors.New("model down")}}
	events := &fakePublisher{}
	o, memory := newTestOrchestrator(t, &fakeCatalog{snap: coffeeSnapshot()}, registry, &fakeSwarmRunner{}, &fakeInvoker{}, events)

	out, err := o.HandleTurn(context.Background(), TurnRequest{
		SessionID:  "s1",
		BusinessID: "biz-1",
		Message:    "hello",
	})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if !out.Degraded {
		t.Fatal("expected degraded turn")
	}
	if !strings.Contains(out.Reply, "sorry") {
		t.Fatalf("expected apology, got %q", out.Reply)
	}

	history := memory.History("s1")
	if len(history) != 2 {
		t.Fatalf("degraded turn must still be recorded, got %d messages", len(history))
	}
	if len(events.events) != 1 {
		t.Fatal("degraded turn must still publish its event")
	}
}

func TestSessionPassthroughs(t *testing.T) {
	t.Parallel()

	registry := &fakeRegistry{fallback: &fakeResponder{reply: "hi"}}
	o, _ := newTestOrchestrator(t, &fakeCatalog{}, registry, &fakeSwarmRunner{}, &fakeInvoker{}, nil)

	if _, err := o.CreateSession("s1", "biz-1", "u1"); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := o.CreateSession("s1", "biz-1", "u1"); !errors.Is(err, memoryx.ErrDuplicateSession) {
		t.Fatalf("expected ErrDuplicateSession, got %v", err)
	}
	if !o.ClearSession("s1") {
		t.Fatal("ClearSession must report removal")
	}
	if o.ClearSession("s1") {
		t.Fatal("second ClearSession must report absence")
	}
}
