package nodes

import (
	"strings"
	"time"

	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
)

// ValidateRequest checks the turn's shape. The business id may be empty;
// an unbound turn runs against an empty menu and grounding fails open.
func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, ErrInvalidMessage
	}

	mode := in.Mode
	if mode == "" {
		mode = contractx.ModeFallback
	}

	sessionID := strings.TrimSpace(in.SessionID)
	tool := strings.TrimSpace(in.Tool)
	switch mode {
	case contractx.ModeDirect:
		if tool == "" {
			return nil, ErrInvalidTool
		}
	default:
		if sessionID == "" {
			return nil, ErrInvalidSession
		}
	}

	return &GraphState{
		SessionID:  sessionID,
		UserID:     strings.TrimSpace(in.UserID),
		BusinessID: strings.TrimSpace(in.BusinessID),
		Message:    message,
		Mode:       mode,
		Tool:       tool,
		Now:        nowFn().UTC(),
	}, nil
}
