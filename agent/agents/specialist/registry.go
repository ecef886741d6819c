package specialist

import (
	"context"
	"fmt"

	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
	llmx "github.com/saveurlabs/saveur-agent/agent/llm"
	promptx "github.com/saveurlabs/saveur-agent/agent/prompt"
)

type registryImpl struct {
	swarm       map[contractx.AgentName]contractx.SwarmAgent
	fallback    contractx.Responder
	specialists map[contractx.SpecialistKind]contractx.Responder
}

func (r *registryImpl) Swarm(name contractx.AgentName) (contractx.SwarmAgent, bool) {
	a, ok := r.swarm[name]
	return a, ok
}

func (r *registryImpl) Fallback() contractx.Responder {
	return r.fallback
}

func (r *registryImpl) Specialist(kind contractx.SpecialistKind) (contractx.Responder, bool) {
	s, ok := r.specialists[kind]
	return s, ok
}

// NewRegistry builds every agent up front so configuration errors surface at
// startup, not mid-conversation.
func NewRegistry(ctx context.Context, cfg llmx.Config) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()

	swarm := make(map[contractx.AgentName]contractx.SwarmAgent, len(contractx.SwarmAgents))
	for _, name := range contractx.SwarmAgents {
		systemPrompt, ok := prompts.ForSwarm(name)
		if !ok {
			return nil, fmt.Errorf("%w: no prompt for agent=%s", contractx.ErrPromptMissing, name)
		}

		modelCfg := cfg.OpenRouterFor(name)
		chatModel, err := modelCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create model for agent=%s: %v", contractx.ErrModelInvoke, name, err)
		}

		base, err := newTextAgent(string(name), chatModel, systemPrompt)
		if err != nil {
			return nil, err
		}
		swarm[name] = newSwarmAgent(name, base)
	}

	fallbackModelCfg := cfg.OpenRouterFallback()
	fallbackModel, err := fallbackModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create fallback model: %v", contractx.ErrModelInvoke, err)
	}
	fallback, err := newTextAgent("fallback", fallbackModel, prompts.Fallback)
	if err != nil {
		return nil, err
	}

	defaultModelCfg := cfg.OpenRouterDefault()
	defaultModel, err := defaultModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create specialist model: %v", contractx.ErrModelInvoke, err)
	}

	kinds := []contractx.SpecialistKind{
		contractx.SpecialistOrdering,
		contractx.SpecialistRecommendation,
		contractx.SpecialistTranslation,
		contractx.SpecialistDietary,
	}
	specialists := make(map[contractx.SpecialistKind]contractx.Responder, len(kinds))
	for _, kind := range kinds {
		systemPrompt, ok := prompts.ForSpecialist(kind)
		if !ok {
			return nil, fmt.Errorf("%w: no prompt for specialist=%s", contractx.ErrPromptMissing, kind)
		}
		agent, err := newTextAgent(string(kind), defaultModel, systemPrompt)
		if err != nil {
			return nil, err
		}
		specialists[kind] = agent
	}

	return &registryImpl{
		swarm:       swarm,
		fallback:    fallback,
		specialists: specialists,
	}, nil
}
