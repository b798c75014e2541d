package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Service ties the websocket connection manager and the HTTP handlers into
// one routable surface.
type Service struct {
	Manager *ConnectionManager
	handler *Handler
}

// Game is the full game surface the gateway drives
type Game interface {
	GameControl
	GameAPI
}

// NewService creates the gateway service
func NewService(config ConnectionConfig, game Game, vision VisionReader) *Service {
	cm := NewConnectionManager(config, game)
	return &Service{
		Manager: cm,
		handler: NewHandler(game, vision),
	}
}

// Start runs the broadcast loop until ctx is done
func (s *Service) Start(ctx context.Context) {
	s.Manager.Start(ctx)
}

// RegisterRoutes registers the websocket and HTTP endpoints
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWebsocket)

	mux.HandleFunc("/start_game", recoverMiddleware(s.handler.HandleStartGame))
	mux.HandleFunc("/init_bonus", recoverMiddleware(s.handler.HandleInitBonus))
	mux.HandleFunc("/reset_game", recoverMiddleware(s.handler.HandleResetGame))
	mux.HandleFunc("/submit", recoverMiddleware(s.handler.HandleSubmit))
	mux.HandleFunc("/ocr", recoverMiddleware(s.handler.HandleOCR))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"connections":%d}`, s.Manager.ConnectionCount())
	})
}

func (s *Service) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	if err := s.Manager.UpgradeConnection(w, r); err != nil {
		log.Error().Err(err).Msg("failed to upgrade websocket connection")
		http.Error(w, "failed to upgrade connection", http.StatusInternalServerError)
	}
}
