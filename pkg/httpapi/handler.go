// Package httpapi is the thin HTTP adapter over the orchestrator: it
// decodes requests, calls the agent layer, and encodes replies. No business
// logic lives here.
package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	openaisdk "github.com/openai/openai-go"
	"github.com/rs/zerolog/log"

	orchestratorx "github.com/saveurlabs/saveur-agent/agent/agents/orchestrator"
	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
	memoryx "github.com/saveurlabs/saveur-agent/agent/memory"
)

// Handler exposes the conversation and order APIs.
type Handler struct {
	orchestrator *orchestratorx.Orchestrator
	orders       contractx.OrderPlacer
	llm          *openaisdk.Client
}

// NewHandler wires the adapter. A nil order placer disables POST /v1/orders;
// a nil LLM client makes the provider probe report unconfigured.
func NewHandler(orchestrator *orchestratorx.Orchestrator, orders contractx.OrderPlacer, llm *openaisdk.Client) *Handler {
	return &Handler{orchestrator: orchestrator, orders: orders, llm: llm}
}

// RegisterRoutes registers all routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/health/llm", h.LLMHealth)

	e.POST("/v1/sessions", h.CreateSession)
	e.GET("/v1/sessions/stats", h.SessionStats)
	e.POST("/v1/sessions/cleanup", h.CleanupSessions)
	e.GET("/v1/sessions/:id/history", h.SessionHistory)
	e.DELETE("/v1/sessions/:id", h.DeleteSession)

	e.POST("/v1/chat", h.Chat)
	e.POST("/v1/orders", h.PlaceOrder)
}

// Health reports liveness.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// LLMHealth probes the model provider with the raw SDK client so operators
// can tell credential or provider outages apart from agent bugs.
// GET /health/llm
func (h *Handler) LLMHealth(c echo.Context) error {
	if h.llm == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unconfigured"})
	}
	if _, err := h.llm.Models.List(c.Request().Context()); err != nil {
		log.Warn().Err(err).Msg("llm provider probe failed")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unreachable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CreateSessionRequest starts a conversation ahead of the first message.
// A missing business id leaves the session unbound; turns run against an
// empty menu until one is supplied.
type CreateSessionRequest struct {
	SessionID  string `json:"session_id,omitempty"`
	BusinessID string `json:"business_id,omitempty"`
	UserID     string `json:"user_id,omitempty"`
}

// CreateSession registers a session. A missing session id is generated.
// POST /v1/sessions
func (h *Handler) CreateSession(c echo.Context) error {
	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	session, err := h.orchestrator.CreateSession(sessionID, req.BusinessID, req.UserID)
	if err != nil {
		if errors.Is(err, memoryx.ErrDuplicateSession) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "session already exists"})
		}
		log.Error().Err(err).Msg("create session failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"session_id":  session.SessionID,
		"business_id": session.BusinessID,
		"created_at":  session.CreatedAt,
	})
}

// SessionHistory returns the full transcript.
// GET /v1/sessions/:id/history
func (h *Handler) SessionHistory(c echo.Context) error {
	sessionID := c.Param("id")
	history := h.orchestrator.History(sessionID)
	if history == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"session_id": sessionID,
		"messages":   history,
	})
}

// DeleteSession clears a session.
// DELETE /v1/sessions/:id
func (h *Handler) DeleteSession(c echo.Context) error {
	sessionID := c.Param("id")
	if !h.orchestrator.ClearSession(sessionID) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	return c.JSON(http.StatusOK, map[string]any{"session_id": sessionID, "cleared": true})
}

// SessionStats reports memory counters.
// GET /v1/sessions/stats
func (h *Handler) SessionStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.orchestrator.Stats())
}

// CleanupSessions evicts expired sessions on demand.
// POST /v1/sessions/cleanup
func (h *Handler) CleanupSessions(c echo.Context) error {
	removed := h.orchestrator.CleanupExpired()
	return c.JSON(http.StatusOK, map[string]int{"removed": removed})
}

// ChatRequest is one customer message. Mode defaults to the single
// comprehensive agent; "swarm" opts into the multi-agent chain; "direct"
// calls one named tool without session memory.
type ChatRequest struct {
	SessionID  string `json:"session_id,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	BusinessID string `json:"business_id"`
	Message    string `json:"message"`
	Mode       string `json:"mode,omitempty"`
	Tool       string `json:"tool,omitempty"`
}

// ChatResponse is the finished turn.
type ChatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id,omitempty"`
	Mode      string `json:"mode"`
	Grounded  bool   `json:"grounded"`
	FellBack  bool   `json:"fell_back,omitempty"`
	Degraded  bool   `json:"degraded,omitempty"`
}

// Chat runs one turn. A missing session id on a stateful mode is generated
// so a bare first message starts a conversation.
// POST /v1/chat
func (h *Handler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	mode := contractx.Mode(strings.TrimSpace(strings.ToLower(req.Mode)))
	if mode == "" {
		mode = contractx.ModeFallback
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" && mode != contractx.ModeDirect {
		sessionID = uuid.NewString()
	}

	out, err := h.orchestrator.HandleTurn(c.Request().Context(), orchestratorx.TurnRequest{
		SessionID:  sessionID,
		UserID:     req.UserID,
		BusinessID: req.BusinessID,
		Message:    req.Message,
		Mode:       mode,
		Tool:       req.Tool,
	})
	if err != nil {
		switch {
		case errors.Is(err, orchestratorx.ErrInvalidMessage),
			errors.Is(err, orchestratorx.ErrInvalidSession),
			errors.Is(err, orchestratorx.ErrInvalidTool),
			errors.Is(err, contractx.ErrValidation):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("chat turn failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to process message"})
	}

	return c.JSON(http.StatusOK, ChatResponse{
		Reply:     out.Reply,
		SessionID: out.SessionID,
		Mode:      string(out.Mode),
		Grounded:  out.Grounded,
		FellBack:  out.FellBack,
		Degraded:  out.Degraded,
	})
}

// PlaceOrderRequest submits a confirmed order.
type PlaceOrderRequest struct {
	BusinessID string                 `json:"business_id"`
	SessionID  string                 `json:"session_id,omitempty"`
	Items      []contractx.OrderItem  `json:"items"`
	Customer   contractx.CustomerInfo `json:"customer"`
}

// PlaceOrder writes the order to the order backend.
// POST /v1/orders
func (h *Handler) PlaceOrder(c echo.Context) error {
	if h.orders == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "order placement is not configured"})
	}

	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	orderID, err := h.orders.CreateOrder(c.Request().Context(), contractx.Order{
		BusinessID: req.BusinessID,
		SessionID:  req.SessionID,
		Items:      req.Items,
		Customer:   req.Customer,
	})
	if err != nil {
		if errors.Is(err, contractx.ErrValidation) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		log.Error().Err(err).Str("business_id", req.BusinessID).Msg("order placement failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to place order"})
	}

	return c.JSON(http.StatusCreated, map[string]string{"order_id": orderID})
}
