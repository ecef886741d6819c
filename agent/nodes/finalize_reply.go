package nodes

import (
	"fmt"
	"strings"

	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: execution returned empty reply", contractx.ErrValidation)
	}

	return GraphOutput{
		Reply:     reply,
		SessionID: in.SessionID,
		Mode:      in.Mode,
		Grounded:  in.Grounded,
		FellBack:  in.FellBack,
		Degraded:  in.Degraded,
	}, nil
}
