package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sakif/game-store/internal/apperror"
	"github.com/sakif/game-store/internal/service"
	"github.com/sakif/game-store/internal/session"
)

// StoreHandler serves the customer-facing catalog pages and star ratings.
type StoreHandler struct {
	catalog *service.CatalogService
	render  *Renderer
	logger  *slog.Logger
}

func NewStoreHandler(catalog *service.CatalogService, render *Renderer, logger *slog.Logger) *StoreHandler {
	return &StoreHandler{catalog: catalog, render: render, logger: logger}
}

// HandleHome renders a random sample of the catalog.
//
// HTTP: GET /
func (h *StoreHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	games, err := h.catalog.Home(r.Context())
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.render.Render(w, r, http.StatusOK, "index", "Game Store", games)
}

// HTTP: GET /news
func (h *StoreHandler) HandleNews(w http.ResponseWriter, r *http.Request) {
	news, err := h.catalog.News(r.Context())
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.render.Render(w, r, http.StatusOK, "news", "News", news)
}

// HTTP: GET /about
func (h *StoreHandler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "about", "About", nil)
}

// catalogPage is the data of games.html, shared by /games and /search.
type catalogPage struct {
	Query string
	Games any
}

// HTTP: GET /games
func (h *StoreHandler) HandleGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.catalog.List(r.Context())
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.render.Render(w, r, http.StatusOK, "games", "Games", catalogPage{Games: games})
}

// HandleGame renders one game with its gallery and the visitor's rating.
//
// HTTP: GET /game/{id}
func (h *StoreHandler) HandleGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "game")
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	detail, err := h.catalog.Detail(r.Context(), session.FromContext(r.Context()), id)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.render.Render(w, r, http.StatusOK, "game", detail.Game.Name, detail)
}

// HandleSearch matches the search_query form field against game names. A
// single hit is rendered as its detail page, anything else as a list.
//
// HTTP: POST /search
func (h *StoreHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.FormValue("search_query")
	result, err := h.catalog.Search(r.Context(), session.FromContext(r.Context()), query)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	if result.Single != nil {
		h.render.Render(w, r, http.StatusOK, "game", result.Single.Game.Name, result.Single)
		return
	}
	h.render.Render(w, r, http.StatusOK, "games", "Search", catalogPage{Query: query, Games: result.Games})
}

// flexInt accepts a JSON number or a string holding one. The rating
// widget sends ids taken from DOM attributes, which arrive as strings.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("not an integer: %s", b)
	}
	*f = flexInt(n)
	return nil
}

type rateRequest struct {
	StarID *flexInt `json:"star_id"`
	GameID *flexInt `json:"game_id"`
}

// HandleRate stores the visitor's stars for a game in the session. The
// value is not range-checked and the game is not looked up.
//
// HTTP: POST /rate
func (h *StoreHandler) HandleRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid rate request body", slog.String("error", err.Error()))
		writeError(w, r, h.logger, apperror.ValidationFailed("body", "star_id and game_id must be integers"))
		return
	}
	if req.StarID == nil || req.GameID == nil {
		writeError(w, r, h.logger, apperror.ValidationFailed("body", "star_id and game_id are required"))
		return
	}

	h.catalog.Rate(session.FromContext(r.Context()), int64(*req.GameID), int(*req.StarID))
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
