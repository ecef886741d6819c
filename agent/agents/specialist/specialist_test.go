package specialist

import (
	"context"
	"errors"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
)

type fakeToolCallingModel struct {
	responses []*schema.Message
	err       error
	idx       int
	seen      [][]*schema.Message
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.seen = append(f.seen, input)
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return f, nil
}

func TestTextAgentRespondComposesSystemPrompt(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{{Content: "The Cappuccino is ₱200."}},
	}

	agent, err := newTextAgent("fallback", fake, "base prompt")
	if err != nil {
		t.Fatalf("newTextAgent() error = %v", err)
	}

	out, err := agent.Respond(context.Background(), contractx.StepRequest{
		Turn: contractx.TurnContext{
			MenuContext:         `{"menu_items":{}}`,
			ConversationContext: "CONVERSATION HISTORY:\n[10:00] Customer: hi",
		},
		UserMessage: "How much is a cappuccino?",
	})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if out != "The Cappuccino is ₱200." {
		t.Fatalf("unexpected response: %q", out)
	}

	if len(fake.seen) != 1 || len(fake.seen[0]) != 2 {
		t.Fatalf("expected one call with system+user messages, got %#v", fake.seen)
	}
	system := fake.seen[0][0].Content
	menuIdx := strings.Index(system, "MENU DATA:")
	convIdx := strings.Index(system, "CONVERSATION HISTORY:")
	if menuIdx < 0 || convIdx < 0 {
		t.Fatalf("system prompt missing context sections: %q", system)
	}
	if menuIdx > convIdx {
		t.Fatal("menu context must precede conversation context")
	}
}

func TestTextAgentRespondEmptyContent(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{{Content: "   "}},
	}

	agent, err := newTextAgent("fallback", fake, "base prompt")
	if err != nil {
		t.Fatalf("newTextAgent() error = %v", err)
	}

	_, err = agent.Respond(context.Background(), contractx.StepRequest{UserMessage: "hi"})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestTextAgentModelError(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{err: errors.New("upstream down")}

	agent, err := newTextAgent("fallback", fake, "base prompt")
	if err != nil {
		t.Fatalf("newTextAgent() error = %v", err)
	}

	_, err = agent.Respond(context.Background(), contractx.StepRequest{UserMessage: "hi"})
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
}

func TestNewTextAgentEmptyPrompt(t *testing.T) {
	t.Parallel()

	_, err := newTextAgent("fallback", &fakeToolCallingModel{}, "  ")
	if !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("expected ErrPromptMissing, got %v", err)
	}
}

func TestSwarmAgentStepHandoff(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"message":"Let me bring in our dietary specialist.","handoff_to":"dietary_specialist"}`},
		},
	}

	base, err := newTextAgent(string(contractx.AgentOrderCoordinator), fake, "coordinator prompt")
	if err != nil {
		t.Fatalf("newTextAgent() error = %v", err)
	}
	agent := newSwarmAgent(contractx.AgentOrderCoordinator, base)

	out, err := agent.Step(context.Background(), contractx.StepRequest{UserMessage: "I'm allergic to nuts"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if out.HandoffTo != contractx.AgentDietarySpecialist {
		t.Fatalf("unexpected handoff: %q", out.HandoffTo)
	}
	if out.Message == "" {
		t.Fatal("expected a message alongside the handoff")
	}
}

func TestSwarmAgentStepFencedJSON(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: "```json\n{\"message\":\"Here is the menu.\",\"handoff_to\":\"\"}\n```"},
		},
	}

	base, err := newTextAgent(string(contractx.AgentMenuSpecialist), fake, "menu prompt")
	if err != nil {
		t.Fatalf("newTextAgent() error = %v", err)
	}
	agent := newSwarmAgent(contractx.AgentMenuSpecialist, base)

	out, err := agent.Step(context.Background(), contractx.StepRequest{UserMessage: "menu please"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if out.HandoffTo != "" {
		t.Fatalf("expected final answer, got handoff to %q", out.HandoffTo)
	}
	if out.Message != "Here is the menu." {
		t.Fatalf("unexpected message: %q", out.Message)
	}
}

func TestSwarmAgentStepUnknownTargetIsFinal(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"message":"Done.","handoff_to":"billing_specialist"}`},
		},
	}

	base, err := newTextAgent(string(contractx.AgentOrderCoordinator), fake, "coordinator prompt")
	if err != nil {
		t.Fatalf("newTextAgent() error = %v", err)
	}
	agent := newSwarmAgent(contractx.AgentOrderCoordinator, base)

	out, err := agent.Step(context.Background(), contractx.StepRequest{UserMessage: "thanks"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if out.HandoffTo != "" {
		t.Fatalf("unknown target must not propagate, got %q", out.HandoffTo)
	}
}

func TestSwarmAgentStepSelfHandoffIsFinal(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"message":"Our espresso drinks are excellent.","handoff_to":"menu_specialist"}`},
		},
	}

	base, err := newTextAgent(string(contractx.AgentMenuSpecialist), fake, "menu prompt")
	if err != nil {
		t.Fatalf("newTextAgent() error = %v", err)
	}
	agent := newSwarmAgent(contractx.AgentMenuSpecialist, base)

	out, err := agent.Step(context.Background(), contractx.StepRequest{UserMessage: "what's good?"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if out.HandoffTo != "" {
		t.Fatalf("self handoff must not propagate, got %q", out.HandoffTo)
	}
}

func TestSwarmAgentStepPlainTextIsFinal(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: "We have Cappuccino, Latte, and Americano."},
		},
	}

	base, err := newTextAgent(string(contractx.AgentMenuSpecialist), fake, "menu prompt")
	if err != nil {
		t.Fatalf("newTextAgent() error = %v", err)
	}
	agent := newSwarmAgent(contractx.AgentMenuSpecialist, base)

	out, err := agent.Step(context.Background(), contractx.StepRequest{UserMessage: "menu?"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if out.HandoffTo != "" {
		t.Fatalf("plain text must be final, got handoff %q", out.HandoffTo)
	}
	if out.Message != "We have Cappuccino, Latte, and Americano." {
		t.Fatalf("unexpected message: %q", out.Message)
	}
}
