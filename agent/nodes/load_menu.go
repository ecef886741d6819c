package nodes

import (
	"context"

	"github.com/rs/zerolog/log"
	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
	menux "github.com/saveurlabs/saveur-agent/agent/menu"
)

// LoadMenu fetches a fresh snapshot every turn. Menu data is never cached
// across turns; a mid-conversation menu change is visible on the next
// message. Fetch failure degrades to an empty snapshot rather than failing
// the turn.
func LoadMenu(ctx context.Context, in *GraphState, catalog contractx.Catalog) (*GraphState, error) {
	if in.BusinessID == "" {
		// Turn not bound to a business yet; run against an empty menu.
		in.Menu = &menux.Snapshot{}
		return in, nil
	}

	snap, err := catalog.GetMenu(ctx, in.BusinessID)
	if err != nil || snap == nil {
		if err != nil {
			log.Warn().Err(err).Str("business_id", in.BusinessID).Msg("menu load failed, continuing without menu")
		}
		snap = &menux.Snapshot{BusinessID: in.BusinessID}
	}
	in.Menu = snap
	return in, nil
}
