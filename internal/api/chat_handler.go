package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/api/shared"
	"github.com/phrazzld/taskhub-api/internal/service"
)

// SessionRelay serves the WebSocket side of a chat session.
type SessionRelay interface {
	ServeSession(w http.ResponseWriter, r *http.Request, sessionID string, user uuid.UUID)
}

// ChatHandler handles the chat session endpoints.
type ChatHandler struct {
	chats service.ChatService
	relay SessionRelay
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chats service.ChatService, relay SessionRelay) *ChatHandler {
	return &ChatHandler{chats: chats, relay: relay}
}

// CreateSession handles POST /api/sessions.
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	session, err := h.chats.CreateSession(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, SessionEnvelope{Session: sessionToResponse(session)})
}

// ListSessions handles GET /api/sessions.
func (h *ChatHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	sessions, err := h.chats.ListSessions(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	resp := SessionListResponse{Sessions: make([]SessionResponse, 0, len(sessions))}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, sessionToResponse(s))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Messages handles GET /api/sessions/{session_id}/messages.
func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	messages, err := h.chats.History(r.Context(), chi.URLParam(r, "session_id"), user.ID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	resp := MessageListResponse{Messages: make([]MessageResponse, 0, len(messages))}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, messageToResponse(m))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Connect handles GET /ws/{session_id} by handing the request to the relay.
func (h *ChatHandler) Connect(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	h.relay.ServeSession(w, r, chi.URLParam(r, "session_id"), user.ID)
}
