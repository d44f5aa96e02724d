package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kohanfikr/netai/internal/llm"
	"github.com/kohanfikr/netai/internal/metrics"
	"github.com/kohanfikr/netai/internal/route"
)

// chatRequest is the POST /api/chat body.
type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	Model          string `json:"model,omitempty"`
	Source         string `json:"source,omitempty"`
	Destination    string `json:"destination,omitempty"`
}

// chatResponse is the POST /api/chat reply.
type chatResponse struct {
	Response       string    `json:"response"`
	ConversationID string    `json:"conversation_id"`
	Model          string    `json:"model"`
	Template       string    `json:"template"`
	Usage          llm.Usage `json:"usage"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	// Reject unrecognized models before anything reaches the transport.
	var model llm.Model
	if req.Model != "" {
		m, err := llm.ParseModel(req.Model)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		model = m
	}

	start := time.Now()
	comp, err := s.composer.Compose(r.Context(), req.ConversationID, req.Message, req.Source, req.Destination)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compose turn")
		return
	}

	resp, err := s.llmClient.Complete(r.Context(), llm.Request{
		Messages: comp.Messages,
		Model:    model,
	})
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(comp.Template, "error").Inc()
		s.log.Error("chat completion failed",
			zap.String("conversation_id", comp.ConversationID),
			zap.Error(err),
		)
		// Transport failures are surfaced, never degraded to an empty reply.
		if errors.Is(err, llm.ErrUnknownModel) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, "language model request failed")
		return
	}

	s.composer.CommitAssistant(comp.ConversationID, resp.Content)

	metrics.ChatRequestsTotal.WithLabelValues(comp.Template, "success").Inc()
	metrics.ChatRequestDuration.WithLabelValues(comp.Template).Observe(time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, chatResponse{
		Response:       resp.Content,
		ConversationID: comp.ConversationID,
		Model:          resp.Model,
		Template:       comp.Template,
		Usage:          resp.Usage,
	})
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	conv := s.store.Create()
	writeJSON(w, http.StatusCreated, conv)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"conversations": s.store.List(),
	})
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	conv, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.store.Delete(id) {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTelemetrySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.processor.NetworkSummary(r.Context())
	if err != nil {
		// Direct diagnostics requests surface fetch failures; their entire
		// value is the data.
		writeError(w, http.StatusBadGateway, "telemetry source unavailable")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handlePathDiagnostics(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	destination := r.URL.Query().Get("destination")
	if source == "" || destination == "" {
		writeError(w, http.StatusBadRequest, "source and destination are required")
		return
	}

	diag, err := s.processor.PathDiagnostics(r.Context(), source, destination)
	if err != nil {
		s.log.Error("path diagnostics failed",
			zap.String("source", source),
			zap.String("destination", destination),
			zap.Error(err),
		)
		writeError(w, http.StatusBadGateway, "telemetry source unavailable")
		return
	}
	writeJSON(w, http.StatusOK, diag)
}

// traceRequest is the POST /api/telemetry/trace body.
type traceRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	var req traceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Source == "" || req.Destination == "" {
		writeError(w, http.StatusBadRequest, "source and destination are required")
		return
	}

	result, err := s.tracer.Trace(r.Context(), req.Source, req.Destination)
	if err != nil {
		writeError(w, http.StatusBadGateway, "trace execution failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"trace":            result,
		"problematic_hops": result.ProblematicHops(),
		"text":             result.FormatText(),
	})
}

func (s *Server) handleTraceCompare(w http.ResponseWriter, r *http.Request) {
	var req traceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Source == "" || req.Destination == "" {
		writeError(w, http.StatusBadRequest, "source and destination are required")
		return
	}

	first, err := s.tracer.Trace(r.Context(), req.Source, req.Destination)
	if err != nil {
		writeError(w, http.StatusBadGateway, "trace execution failed")
		return
	}
	second, err := s.tracer.Trace(r.Context(), req.Source, req.Destination)
	if err != nil {
		writeError(w, http.StatusBadGateway, "trace execution failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"first":  first,
		"second": second,
		"delta":  route.Compare(first, second),
	})
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"models": llm.Models(),
	})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"templates": s.engine.List(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
