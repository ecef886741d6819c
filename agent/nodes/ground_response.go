package nodes

import (
	"github.com/rs/zerolog/log"
	groundingx "github.com/saveurlabs/saveur-agent/agent/grounding"
)

// GroundResponse checks the candidate reply against the menu snapshot and
// substitutes the corrected response when the candidate references items the
// menu does not have. Degraded replies skip validation; they never mention
// menu items.
func GroundResponse(in *GraphState, validator *groundingx.Validator) (*GraphState, error) {
	if in.Degraded {
		in.Grounded = true
		return in, nil
	}

	res := validator.Validate(in.Reply, in.Menu)
	in.Grounded = res.Valid
	if !res.Valid {
		log.Warn().
			Str("session_id", in.SessionID).
			Strs("available_items", res.AvailableItems).
			Msg("response failed menu grounding, substituting corrected response")
		in.Reply = res.SafeResponse
	}
	return in, nil
}
