// Package grounding enforces the menu-grounding contract: an agent response
// may only reference items present in the turn's menu snapshot, or must
// explicitly state an item is unavailable.
package grounding

import (
	"strings"

	"github.com/rs/zerolog/log"

	menux "github.com/saveurlabs/saveur-agent/agent/menu"
)

// Result is the validator's verdict. When Valid is false, SafeResponse
// carries a synthesized catalog-derived replacement for the candidate.
type Result struct {
	Valid          bool
	SafeResponse   string
	AvailableItems []string
}

// Validator checks candidate responses against a menu snapshot.
//
// It is advisory-pessimistic, not a formal grounding proof: it catches the
// common hallucination pattern (generic category nouns asserted as if
// available) but does not verify every proper-noun mention against the
// catalog. A pure function of its inputs plus the fixed term tables.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Validate applies the grounding check.
//
// An empty snapshot passes the candidate through unchanged: hard-failing
// here would block all conversation on transient datastore errors, which is
// worse than the small risk of one ungrounded response.
func (v *Validator) Validate(candidate string, snap *menux.Snapshot) Result {
	if snap.Empty() {
		return Result{Valid: true, SafeResponse: candidate}
	}

	itemNames := snap.ItemNames()
	priceList := snap.PriceList()
	lower := strings.ToLower(candidate)

	flagged := flaggedTerms(lower, itemNames)
	if len(flagged) == 0 {
		return Result{Valid: true, SafeResponse: candidate, AvailableItems: priceList}
	}

	// A cart confirmation that names a real item is legitimate even when it
	// also uses a generic noun ("I've added the Beef Burger to your cart").
	if containsAny(lower, cartMarkers) && mentionsAnyItem(lower, itemNames) {
		log.Debug().Strs("terms", flagged).Msg("cart confirmation with real menu items, allowing")
		return Result{Valid: true, SafeResponse: candidate, AvailableItems: priceList}
	}

	log.Warn().Strs("terms", flagged).Str("business_id", snap.BusinessID).
		Msg("response references non-menu items, substituting safe response")

	return Result{
		Valid:          false,
		SafeResponse:   correctedResponse(snap),
		AvailableItems: priceList,
	}
}

// flaggedTerms returns the generic terms mentioned as if available: present
// in the response, not a substring of any real item name, and not covered
// by a negative-availability marker.
func flaggedTerms(lower string, itemNames []string) []string {
	var flagged []string
	for _, term := range genericTerms {
		if !strings.Contains(lower, term) {
			continue
		}
		if substringOfAny(term, itemNames) {
			continue
		}
		if containsAny(lower, negativeMarkers) {
			// The model is declining the item, not hallucinating it.
			continue
		}
		flagged = append(flagged, term)
	}
	return flagged
}

func substringOfAny(term string, names []string) bool {
	for _, name := range names {
		if strings.Contains(name, term) {
			return true
		}
	}
	return false
}

func mentionsAnyItem(lower string, names []string) bool {
	for _, name := range names {
		if name != "" && strings.Contains(lower, name) {
			return true
		}
	}
	return false
}

func containsAny(lower string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// correctedResponse synthesizes a replacement built strictly from the
// catalog: an apology followed by the real items grouped by category with
// exact names and prices.
func correctedResponse(snap *menux.Snapshot) string {
	var b strings.Builder
	b.WriteString("I'm sorry, but I can only recommend items that are actually available on our menu. ")

	if snap.Empty() {
		b.WriteString("Please ask a staff member for our current menu.")
		return b.String()
	}

	b.WriteString("Here are our available items:\n")
	for _, c := range snap.Categories {
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
