package prompt

import (
	_ "embed"
	"strings"

	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
)

var (
	//go:embed template/order_coordinator.txt
	orderCoordinatorRaw string

	//go:embed template/menu_specialist.txt
	menuSpecialistRaw string

	//go:embed template/language_specialist.txt
	languageSpecialistRaw string

	//go:embed template/dietary_specialist.txt
	dietarySpecialistRaw string

	//go:embed template/order_validator.txt
	orderValidatorRaw string

	//go:embed template/fallback.txt
	fallbackRaw string

	//go:embed template/ordering.txt
	orderingRaw string

	//go:embed template/recommendation.txt
	recommendationRaw string

	//go:embed template/translation.txt
	translationRaw string

	//go:embed template/dietary.txt
	dietaryRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	OrderCoordinator   string
	MenuSpecialist     string
	LanguageSpecialist string
	DietarySpecialist  string
	OrderValidator     string
	Fallback           string
	Ordering           string
	Recommendation     string
	Translation        string
	Dietary            string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// This is safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		OrderCoordinator:   strings.TrimSpace(orderCoordinatorRaw),
		MenuSpecialist:     strings.TrimSpace(menuSpecialistRaw),
		LanguageSpecialist: strings.TrimSpace(languageSpecialistRaw),
		DietarySpecialist:  strings.TrimSpace(dietarySpecialistRaw),
		OrderValidator:     strings.TrimSpace(orderValidatorRaw),
		Fallback:           strings.TrimSpace(fallbackRaw),
		Ordering:           strings.TrimSpace(orderingRaw),
		Recommendation:     strings.TrimSpace(recommendationRaw),
		Translation:        strings.TrimSpace(translationRaw),
		Dietary:            strings.TrimSpace(dietaryRaw),
	}
}

// ForSwarm returns the prompt for a swarm agent by registry name.
func (p PromptSet) ForSwarm(name contractx.AgentName) (string, bool) {
	switch name {
	case contractx.AgentOrderCoordinator:
		return p.OrderCoordinator, true
	case contractx.AgentMenuSpecialist:
		return p.MenuSpecialist, true
	case contractx.AgentLanguageSpecialist:
		return p.LanguageSpecialist, true
	case contractx.AgentDietarySpecialist:
		return p.DietarySpecialist, true
	case contractx.AgentOrderValidator:
		return p.OrderValidator, true
	}
	return "", false
}

// ForSpecialist returns the prompt for a directly-callable specialist.
func (p PromptSet) ForSpecialist(kind contractx.SpecialistKind) (string, bool) {
	switch kind {
	case contractx.SpecialistOrdering:
		return p.Ordering, true
	case contractx.SpecialistRecommendation:
		return p.Recommendation, true
	case contractx.SpecialistTranslation:
		return p.Translation, true
	case contractx.SpecialistDietary:
		return p.Dietary, true
	}
	return "", false
}
