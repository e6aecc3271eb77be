package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/game-store/internal/apperror"
	"github.com/sakif/game-store/internal/service"
	"github.com/sakif/game-store/internal/session"
)

// CommunityHandler serves the per-game message boards.
type CommunityHandler struct {
	community *service.CommunityService
	render    *Renderer
	logger    *slog.Logger
}

func NewCommunityHandler(community *service.CommunityService, render *Renderer, logger *slog.Logger) *CommunityHandler {
	return &CommunityHandler{community: community, render: render, logger: logger}
}

// HTTP: GET /community/{game_id}
func (h *CommunityHandler) HandleThread(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r, "game_id", "game")
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	thread, err := h.community.Thread(r.Context(), session.FromContext(r.Context()), gameID)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.render.Render(w, r, http.StatusOK, "community", "Community: "+thread.Game.Name, thread)
}

type postRequest struct {
	Text *string `json:"text"`
}

// postResponse echoes a stored message. Name is the poster's visitor
// number and goes out as a JSON number.
type postResponse struct {
	ID   int64       `json:"id"`
	Name json.Number `json:"name"`
	Text string      `json:"text"`
}

// HandlePost appends a message and echoes it back for the page script to
// insert without reloading.
//
// HTTP: POST /add_message/{game_id}
func (h *CommunityHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r, "game_id", "game")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid message body", slog.String("error", err.Error()))
		writeError(w, r, h.logger, apperror.ValidationFailed("text", "body must be a JSON object with a text field"))
		return
	}
	if req.Text == nil {
		writeError(w, r, h.logger, apperror.ValidationFailed("text", "text is required"))
		return
	}

	msg, err := h.community.Post(r.Context(), session.FromContext(r.Context()), gameID, *req.Text)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, postResponse{ID: msg.ID, Name: json.Number(msg.Name), Text: msg.Text})
}
