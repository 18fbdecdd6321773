package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/pathways-2/Agent-Chatbot/internal/agent"
	"github.com/pathways-2/Agent-Chatbot/internal/guardrails"
	"github.com/pathways-2/Agent-Chatbot/internal/memory"
)

// DefaultSessionID is used when a chat request names no session.
const DefaultSessionID = "default"

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startTime).String(),
	}
	if r.URL.Query().Get("detail") == "true" {
		components := map[string]string{
			"guardrails":   "ok",
			"memory_store": "ok",
		}
		if s.openAIConfigured {
			components["openai"] = "configured"
		} else {
			components["openai"] = "not_configured"
		}
		if s.vectorConfigured {
			components["vector_search"] = "configured"
		} else {
			components["vector_search"] = "local_fallback"
		}
		resp["components"] = components
		resp["active_sessions"] = s.memoryStore.ActiveSessions()
	}
	writeJSON(w, http.StatusOK, resp)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type chatResponse struct {
	Response  string         `json:"response"`
	Type      string         `json:"type"`
	Sources   []agent.Source `json:"sources,omitempty"`
	ToolsUsed []string       `json:"toolsUsed,omitempty"`
	Timestamp string         `json:"timestamp"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}
	if len(req.Message) > guardrails.MaxMessageLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "message must be at most 1000 characters")
		return
	}
	if req.SessionID == "" {
		req.SessionID = DefaultSessionID
	}

	result := s.runner.Run(r.Context(), &agent.RunRequest{
		SessionID: req.SessionID,
		Message:   req.Message,
	})

	// Refused exchanges still become part of the conversation, as plain
	// turns, so follow-up messages keep their context.
	if result.Blocked() {
		s.memoryStore.Append(r.Context(), req.SessionID, memory.RoleUser, req.Message, nil)
		s.memoryStore.Append(r.Context(), req.SessionID, memory.RoleAssistant, result.Response, nil)
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  result.Response,
		Type:      result.Type,
		Sources:   result.Sources,
		ToolsUsed: result.ToolsUsed,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleConversationGet(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages := s.memoryStore.Read(r.Context(), sessionID)
	conversation := map[string]interface{}{
		"messages": messages,
		"context":  s.memoryStore.Context(r.Context(), sessionID),
	}
	if info, ok := s.memoryStore.Info(r.Context(), sessionID); ok {
		conversation["lastActivity"] = info.LastActivity
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"conversation": conversation,
		"sessionId":    sessionID,
	})
}

func (s *Server) handleConversationClear(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	s.memoryStore.Clear(r.Context(), sessionID)

	log.Info().Str("session_id", sessionID).Msg("conversation_cleared")
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Conversation cleared",
		"sessionId": sessionID,
	})
}

func (s *Server) handleChatPage(w http.ResponseWriter, r *http.Request) {
	if s.chatHTML == "" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(s.chatHTML))
}
