package specialist

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
)

// swarmAgent wraps a textAgent with the structured handoff protocol.
type swarmAgent struct {
	*textAgent
	agentName contractx.AgentName
}

type swarmLLMOutput struct {
	Message   string `json:"message"`
	HandoffTo string `json:"handoff_to"`
}

func newSwarmAgent(name contractx.AgentName, base *textAgent) *swarmAgent {
	return &swarmAgent{textAgent: base, agentName: name}
}

func (s *swarmAgent) Name() contractx.AgentName {
	return s.agentName
}

func (s *swarmAgent) Step(ctx context.Context, req contractx.StepRequest) (contractx.StepResult, error) {
	msg, err := s.generate(ctx, req)
	if err != nil {
		return contractx.StepResult{}, err
	}

	out, ok := parseSwarmOutput(msg.Content)
	if !ok {
		// Plain text from the model is a usable final answer; only the
		// handoff is lost.
		log.Debug().Str("agent", string(s.agentName)).Msg("swarm output is not structured, treating as final")
		return contractx.StepResult{Message: strings.TrimSpace(msg.Content)}, nil
	}

	result := contractx.StepResult{Message: strings.TrimSpace(out.Message)}
	target := contractx.AgentName(strings.TrimSpace(out.HandoffTo))
	if target == "" || target == s.agentName || !contractx.KnownAgent(target) {
		if target != "" && target != s.agentName {
			log.Warn().
				Str("agent", string(s.agentName)).
				Str("target", string(target)).
				Msg("handoff to unknown agent, treating as final")
		}
		return result, nil
	}
	result.HandoffTo = target
	return result, nil
}

// parseSwarmOutput extracts the {message, handoff_to} object, tolerating
// markdown code fences around the JSON.
func parseSwarmOutput(content string) (swarmLLMOutput, bool) {
	raw := strings.TrimSpace(content)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var out swarmLLMOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return swarmLLMOutput{}, false
	}
	if strings.TrimSpace(out.Message) == "" {
		return swarmLLMOutput{}, false
	}
	return out, true
}
