package specialist

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
)

// textAgent is a single-turn responder. Every call rebuilds the system
// prompt from the turn context so menu grounding and conversation history
// are always current; the agent itself holds no per-session state.
type textAgent struct {
	name       string
	chatModel  einomodel.ToolCallingChatModel
	basePrompt string
}

func newTextAgent(name string, chatModel einomodel.ToolCallingChatModel, basePrompt string) (*textAgent, error) {
	if strings.TrimSpace(basePrompt) == "" {
		return nil, fmt.Errorf("%w: prompt for agent=%s", contractx.ErrPromptMissing, name)
	}
	return &textAgent{
		name:       name,
		chatModel:  chatModel,
		basePrompt: basePrompt,
	}, nil
}

func (a *textAgent) Respond(ctx context.Context, req contractx.StepRequest) (string, error) {
	msg, err := a.generate(ctx, req)
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return "", fmt.Errorf("%w: agent=%s returned empty content", contractx.ErrSchemaViolation, a.name)
	}
	return content, nil
}

func (a *textAgent) generate(ctx context.Context, req contractx.StepRequest) (*schema.Message, error) {
	messages := []*schema.Message{
		schema.SystemMessage(composeSystemPrompt(a.basePrompt, req.Turn)),
		schema.UserMessage(req.UserMessage),
	}

	msg, err := a.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: agent=%s generate: %v", contractx.ErrModelInvoke, a.name, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: agent=%s returned nil message", contractx.ErrModelInvoke, a.name)
	}
	return msg, nil
}

// composeSystemPrompt joins the static prompt with the per-turn context.
// Menu context always precedes conversation context so grounding rules stay
// close to the top of the prompt on long transcripts.
func composeSystemPrompt(base string, turn contractx.TurnContext) string {
	sections := []string{base}
	if s := strings.TrimSpace(turn.MenuContext); s != "" {
		sections = append(sections, "MENU DATA:\n"+s)
	}
	if s := strings.TrimSpace(turn.ConversationContext); s != "" {
		sections = append(sections, s)
	}
	if s := strings.TrimSpace(turn.OrderContext); s != "" {
		sections = append(sections, s)
	}
	return strings.Join(sections, "\n\n")
}
