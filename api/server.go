package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/robots-vs-dinosaurs/game/config"
	"github.com/wricardo/robots-vs-dinosaurs/game/engine"
	"github.com/wricardo/robots-vs-dinosaurs/game/service"
	"github.com/wricardo/robots-vs-dinosaurs/pkg/logger"
	"github.com/wricardo/robots-vs-dinosaurs/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	log     *logrus.Entry

	appName string
	version string
}

// Option configures a Server
type Option func(*Server)

// WithAppInfo sets the name and version reported by GET /api
func WithAppInfo(name, version string) Option {
	return func(s *Server) {
		s.appName = name
		s.version = version
	}
}

// NewServer creates a new API server. hub may be nil when no WebSocket
// subscribers are served.
func NewServer(gameService service.GameService, hub *websocket.Hub, opts ...Option) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		log:     logger.WithComponent("api"),
		appName: "Robots vs Dinosaurs",
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("", s.handleInfo).Methods("GET")

	// Games
	api.HandleFunc("/games", s.handleCreateGame).Methods("POST")
	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	api.HandleFunc("/games", s.handleDeleteAllGames).Methods("DELETE")
	api.HandleFunc("/games/{id}", s.handleGetGame).Methods("GET")
	api.HandleFunc("/games/{id}", s.handleDeleteGame).Methods("DELETE")

	// Game operations
	api.HandleFunc("/games/{id}/commands", s.handleCommand).Methods("POST", "PUT")
	api.HandleFunc("/games/{id}/dinosaurs", s.handleAddDinosaur).Methods("POST")
	api.HandleFunc("/games/{id}/history", s.handleGetHistory).Methods("GET")
	api.HandleFunc("/games/{id}/board", s.handleBoard).Methods("GET")

	// Scenarios
	api.HandleFunc("/scenarios", s.handleListScenarios).Methods("GET")
	api.HandleFunc("/scenarios", s.handleSaveScenario).Methods("POST")
	api.HandleFunc("/scenarios/{name}", s.handleGetScenario).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": message, "code": code})
}

// respondServiceError maps a service or engine error to its HTTP status
func respondServiceError(w http.ResponseWriter, err error) {
	status, code := statusForError(err)
	respondError(w, status, code, err.Error())
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return http.StatusNotFound, "game_not_found"
	case errors.Is(err, service.ErrScenarioNotFound):
		return http.StatusNotFound, "scenario_not_found"
	case errors.Is(err, engine.ErrRobotNotFound):
		return http.StatusNotFound, engine.ErrorCode(err)
	case errors.Is(err, service.ErrGameExists):
		return http.StatusConflict, "game_exists"
	case engine.ErrorCode(err) != "":
		return http.StatusBadRequest, engine.ErrorCode(err)
	case errors.Is(err, config.ErrInvalidScenario):
		return http.StatusBadRequest, "invalid_scenario"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "canceled"
	}
	return http.StatusInternalServerError, "internal"
}

// flexString accepts a JSON string or number. Legacy clients send robot
// indexes and command codes as integers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*f = flexString(n.String())
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"name":    s.appName,
		"version": s.version,
	})
}

// Game Handlers

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req service.CreateGameRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
			return
		}
	}

	game, err := s.service.CreateGame(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcastState(game)
	respondJSON(w, http.StatusCreated, game)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	opts := service.ListOptions{
		SortBy: query.Get("sort"),
		Order:  query.Get("order"),
	}
	if opts.SortBy == "" {
		opts.SortBy = "accessed"
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		opts.Limit = l
	}

	games, err := s.service.ListGames(r.Context(), opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(games),
		"games": games,
		"sort":  opts.SortBy,
		"order": opts.Order,
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := s.service.GetGame(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, game)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	if err := s.service.DeleteGame(r.Context(), gameID); err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(gameID, websocket.EventGameDeleted, nil)
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Game %s deleted", gameID),
	})
}

func (s *Server) handleDeleteAllGames(w http.ResponseWriter, r *http.Request) {
	// Collect ids first so subscribers can be told
	games, err := s.service.ListGames(r.Context(), service.ListOptions{})
	if err != nil {
		s.log.WithError(err).Warn("failed to list games before delete, subscribers will not be notified")
	}

	n, err := s.service.DeleteAllGames(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		for _, g := range games {
			s.hub.BroadcastEvent(g.GameID, websocket.EventGameDeleted, nil)
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Deleted %d games", n),
		"deleted": n,
	})
}

// Game Operation Handlers

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	var req struct {
		RobotID flexString `json:"robot_id"`
		Command flexString `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}
	if req.Command == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "command is required")
		return
	}

	result, err := s.service.ApplyCommand(r.Context(), gameID, string(req.RobotID), string(req.Command))
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"game_id": gameID,
			"robot":   string(req.RobotID),
		}).Infof("[CMD] game=%s robot=%s cmd=%s status=FAIL err=%q", gameID, req.RobotID, req.Command, err.Error())
		respondServiceError(w, err)
		return
	}

	s.broadcastState(result.Game)

	// Compact server log for observability
	o := result.Outcome
	s.log.Infof("[CMD] game=%s robot=%s cmd=%s %s->%s dir=%s defeated=%d remaining=%d status=OK",
		gameID, o.RobotID, o.Command, o.From, o.To, o.ToDirection, len(o.Defeated), result.Game.DinosaurCount)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAddDinosaur(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	var req struct {
		Coordinate *engine.Coordinate `json:"coordinate,omitempty"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
			return
		}
	}

	result, err := s.service.AddDinosaur(r.Context(), gameID, req.Coordinate)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcastState(result.Game)
	respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		opts.Page = p
	}
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		opts.Limit = l
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetHistory(r.Context(), mux.Vars(r)["id"], opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	game, err := s.service.GetGame(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderBoard(w, game); err != nil {
		s.log.WithError(err).Error("failed to render board")
	}
}

// Scenario Handlers

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := s.service.ListScenarios(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, scenarios)
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	scenario, err := s.service.LoadScenario(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, scenario)
}

func (s *Server) handleSaveScenario(w http.ResponseWriter, r *http.Request) {
	var scenario engine.Scenario
	if err := json.NewDecoder(r.Body).Decode(&scenario); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	name := strings.TrimSpace(scenario.Name)
	if name == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "Scenario name is required")
		return
	}
	id := strings.ToLower(strings.ReplaceAll(name, " ", "_"))

	if err := s.service.SaveScenario(r.Context(), id, &scenario); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message":     "Scenario saved successfully",
		"scenario_id": id,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game")
	if gameID == "" {
		http.Error(w, "game parameter required", http.StatusBadRequest)
		return
	}
	if s.hub == nil {
		http.Error(w, "WebSocket not available", http.StatusServiceUnavailable)
		return
	}

	game, err := s.service.GetGame(r.Context(), gameID)
	if err != nil {
		http.Error(w, "Invalid game", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, game.GameID, &websocket.Message{
		GameID: game.GameID,
		Event:  websocket.EventStateUpdate,
		State:  game.State(),
	})
}

func (s *Server) broadcastState(game *service.GameSnapshot) {
	if s.hub == nil || game == nil {
		return
	}
	s.hub.BroadcastState(game.GameID, game.State())
}
