// Package api exposes reply generation over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/advisor-sim/internal/orchestrator"
	"github.com/danielpatrickdp/advisor-sim/internal/persona"
	"github.com/danielpatrickdp/advisor-sim/internal/prompt"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// knowledgeSnippets is how many knowledge snippets back a reply.
const knowledgeSnippets = 3

// Generator is the orchestrator surface the handlers need.
type Generator interface {
	GenerateReply(ctx context.Context, req orchestrator.Request) (orchestrator.Reply, error)
	ClassifyIntent(text string) (string, float64)
}

// Personas lists and resolves persona profiles.
type Personas interface {
	IDs() []string
	Get(id string) (persona.Profile, error)
}

// Knowledge turns a query into a knowledge context block.
type Knowledge interface {
	Context(query string, max int) (string, error)
}

// Handler carries the dependencies of every endpoint.
type Handler struct {
	gen       Generator
	personas  Personas
	knowledge Knowledge
	logger    *zap.Logger
}

// NewHandler creates a Handler. knowledge and logger may be nil.
func NewHandler(gen Generator, personas Personas, knowledge Knowledge, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{gen: gen, personas: personas, knowledge: knowledge, logger: logger.Named("api")}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// #region replies

// CreateReply handles POST /v1/replies.
func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	var req orchestrator.Request
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Persona) == "" {
		Error(w, http.StatusBadRequest, "persona is required")
		return
	}
	for _, t := range req.Context {
		if !prompt.ValidRole(t.Role) {
			Error(w, http.StatusBadRequest, "context role must be advisor, student or assistant")
			return
		}
	}

	if req.KnowledgeContext == "" && h.knowledge != nil {
		if current := prompt.CurrentTurn(req.Context); current != "" {
			kc, err := h.knowledge.Context(current, knowledgeSnippets)
			if err != nil {
				h.logger.Warn("[API] knowledge lookup failed", zap.Error(err))
			}
			req.KnowledgeContext = kc
		}
	}

	reply, err := h.gen.GenerateReply(r.Context(), req)
	switch {
	case errors.Is(err, orchestrator.ErrInvalidPersona):
		Error(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, context.DeadlineExceeded):
		Error(w, http.StatusGatewayTimeout, "reply generation timed out")
		return
	case err != nil:
		h.logger.Info("[API] reply aborted", zap.Error(err))
		Error(w, http.StatusServiceUnavailable, "reply generation aborted")
		return
	}
	JSON(w, http.StatusOK, reply)
}

// #endregion

// #region intents

type intentRequest struct {
	Text string `json:"text"`
}

type intentResponse struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// ClassifyIntent handles POST /v1/intents.
func (h *Handler) ClassifyIntent(w http.ResponseWriter, r *http.Request) {
	var req intentRequest
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	label, conf := h.gen.ClassifyIntent(req.Text)
	JSON(w, http.StatusOK, intentResponse{Intent: label, Confidence: conf})
}

// #endregion

// #region personas

type personaView struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Traits      []string `json:"traits"`
	HelpSeeking string   `json:"help_seeking"`
}

// ListPersonas handles GET /v1/personas.
func (h *Handler) ListPersonas(w http.ResponseWriter, _ *http.Request) {
	ids := h.personas.IDs()
	out := make([]personaView, 0, len(ids))
	for _, id := range ids {
		p, err := h.personas.Get(id)
		if err != nil {
			continue
		}
		out = append(out, personaView{ID: p.ID, Description: p.Description, Traits: p.Traits, HelpSeeking: p.HelpSeeking})
	}
	JSON(w, http.StatusOK, map[string]any{"personas": out})
}

// #endregion

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
