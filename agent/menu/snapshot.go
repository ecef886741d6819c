package menu

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Snapshot is the authoritative, per-turn view of one business's menu.
// It is fetched fresh for every customer turn and never cached across turns,
// so an edit to the menu is visible on the next request.
type Snapshot struct {
	BusinessID string       `json:"business_id"`
	Business   BusinessInfo `json:"business_info"`
	Categories []Category   `json:"categories"`
}

type BusinessInfo struct {
	Name        string `json:"name"`
	CuisineType string `json:"cuisine_type"`
	Description string `json:"description"`
}

type Category struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Description string   `json:"description,omitempty"`
	Available   bool     `json:"available"`
	Allergens   []string `json:"allergens,omitempty"`
	DietaryInfo string   `json:"dietary_info,omitempty"`
}

// Empty reports whether the snapshot carries no items at all. An empty
// snapshot makes the grounding validator pass responses through unchanged.
func (s *Snapshot) Empty() bool {
	if s == nil {
		return true
	}
	for _, c := range s.Categories {
		if len(c.Items) > 0 {
			return false
		}
	}
	return true
}

// Items returns all items flattened in category order.
func (s *Snapshot) Items() []Item {
	if s == nil {
		return nil
	}
	var out []Item
	for _, c := range s.Categories {
		out = append(out, c.Items...)
	}
	return out
}

// ItemNames returns lowercased item names for substring matching.
func (s *Snapshot) ItemNames() []string {
	items := s.Items()
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, strings.ToLower(it.Name))
	}
	return names
}

// PriceList returns display strings like "Cappuccino (₱200)".
func (s *Snapshot) PriceList() []string {
	items := s.Items()
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Display())
	}
	return out
}

func (it Item) Display() string {
	return it.Name + " (₱" + FormatPrice(it.Price) + ")"
}

func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

type promptContext struct {
	BusinessID        string            `json:"business_id"`
	BusinessInfo      BusinessInfo      `json:"business_info"`
	MenuItems         map[string][]Item `json:"menu_items"`
	TotalItems        int               `json:"total_items"`
	Note              string            `json:"note"`
	ExplicitMenuItems string            `json:"explicit_menu_items"`
	MenuRestrictions  string            `json:"menu_restrictions"`
}

type promptContextError struct {
	Error      string `json:"error"`
	BusinessID string `json:"business_id"`
}

// PromptContext renders the snapshot as the JSON block injected into every
// agent system prompt. The note and restriction strings repeat the explicit
// item list because models weight instructions near concrete data.
func (s *Snapshot) PromptContext() string {
	if s.Empty() {
		businessID := ""
		if s != nil {
			businessID = s.BusinessID
		}
		raw, _ := json.MarshalIndent(promptContextError{
			Error:      "No menu items available at this time.",
			BusinessID: businessID,
		}, "", "  ")
		return string(raw)
	}

	byCategory := make(map[string][]Item, len(s.Categories))
	total := 0
	for _, c := range s.Categories {
		byCategory[c.Name] = c.Items
		total += len(c.Items)
	}

	explicit := strings.Join(s.PriceList(), ", ")

	ctx := promptContext{
		BusinessID:   s.BusinessID,
		BusinessInfo: s.Business,
		MenuItems:    byCategory,
		TotalItems:   total,
		Note: "CRITICAL: You are ONLY allowed to mention, recommend, or suggest items that are " +
			"explicitly listed in this menu. NEVER suggest items that are not in this menu. Use exact " +
			"item names and prices as shown. If a customer asks for something not listed, politely " +
			"inform them it's not available and suggest alternatives from this menu only. " +
			"AVAILABLE ITEMS ONLY: You must ONLY mention these exact items: " + explicit + ".",
		ExplicitMenuItems: explicit,
		MenuRestrictions: "ABSOLUTE RESTRICTION: You are FORBIDDEN from mentioning any items not in " +
			"this list: " + explicit + ". Use ONLY these exact item names and prices.",
	}

	raw, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return ""
	}
	return string(raw)
}

// Summary renders a human-readable category-grouped listing.
func (s *Snapshot) Summary() string {
	if s.Empty() {
		return "No menu items available."
	}

	var b strings.Builder
	b.WriteString("Available Menu Items:\n")
	for _, c := range s.Categories {
		name := c.Name
		if strings.TrimSpace(name) == "" {
			name = "Other"
		}
		b.WriteString("\n" + name + ":\n")
		for _, it := range c.Items {
			b.WriteString("- " + it.Display() + "\n")
		}
	}
	return b.String()
}
