package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lettershow/wordclash/go/internal/game"
)

// GameAPI is what the HTTP surface needs from the game app
type GameAPI interface {
	StartGame(teamA, teamB string)
	InitBonus()
	ResetGame()
	Submit(word string) game.SubmitResponse
}

// VisionReader turns a base64 photograph into recognized letters
type VisionReader interface {
	ReadLetters(ctx context.Context, imageBase64 string) (letters, raw string, err error)
}

// Handler serves the moderator and capture-client HTTP endpoints
type Handler struct {
	game   GameAPI
	vision VisionReader
}

// NewHandler creates the HTTP handler set
func NewHandler(game GameAPI, vision VisionReader) *Handler {
	return &Handler{game: game, vision: vision}
}

type startGameRequest struct {
	TeamA string `json:"teamA"`
	TeamB string `json:"teamB"`
}

type submitRequest struct {
	Word string `json:"word"`
}

type ocrRequest struct {
	Image string `json:"image"`
}

type ocrResponse struct {
	Letters string `json:"letters"`
	Raw     string `json:"raw,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HandleStartGame performs a complete reset and optionally renames the teams
func (h *Handler) HandleStartGame(w http.ResponseWriter, r *http.Request) {
	var req startGameRequest
	decodeBody(r, &req)

	h.game.StartGame(req.TeamA, req.TeamB)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleInitBonus enters the bonus flow for the leading team
func (h *Handler) HandleInitBonus(w http.ResponseWriter, r *http.Request) {
	h.game.InitBonus()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleResetGame returns the session to intro with scores zeroed
func (h *Handler) HandleResetGame(w http.ResponseWriter, r *http.Request) {
	h.game.ResetGame()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleSubmit processes a word submission for standard and bonus rounds
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	decodeBody(r, &req)

	resp := h.game.Submit(req.Word)

	status := http.StatusOK
	if resp.Reason == game.ReasonAlreadySubmitted {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, resp)
}

// HandleOCR forwards a camera frame to the vision collaborator. A vision
// failure is reported as a structured error and never touches the session.
func (h *Handler) HandleOCR(w http.ResponseWriter, r *http.Request) {
	var req ocrRequest
	decodeBody(r, &req)

	image := req.Image
	// Strip a data URL prefix if the client sent one
	if idx := strings.Index(image, ","); idx >= 0 {
		image = image[idx+1:]
	}

	if image == "" {
		writeJSON(w, http.StatusBadRequest, ocrResponse{Error: "no image data"})
		return
	}

	letters, raw, err := h.vision.ReadLetters(r.Context(), image)
	if err != nil {
		log.Error().Err(err).Msg("vision collaborator failed")
		writeJSON(w, http.StatusInternalServerError, ocrResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, ocrResponse{Letters: letters, Raw: raw})
}

// decodeBody decodes a JSON request body, tolerating an empty or absent one
func decodeBody(r *http.Request, v any) {
	if r.Body == nil {
		return
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("ignoring undecodable request body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

// recoverMiddleware answers unexpected handler faults with a generic failure,
// leaving the session unmodified.
func recoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Msg("request handler panicked")
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}
		}()
		next(w, r)
	}
}
