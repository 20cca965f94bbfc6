package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dropfour/server/game/config"
	"github.com/dropfour/server/game/service"
	"github.com/dropfour/server/game/session"
	ws "github.com/dropfour/server/transport/websocket"
)

// Server is the HTTP surface: the WebSocket endpoint that drives games and a
// read-only REST API for observability. All mutation flows through the
// WebSocket protocol.
type Server struct {
	service service.GameService
	wsh     *ws.Handler
	rules   *config.Manager
	archive *session.FileArchive
	router  *mux.Router
}

// NewServer creates the API server. rules and archive may be nil; the
// corresponding endpoints then report not found.
func NewServer(gameService service.GameService, wsh *ws.Handler, rules *config.Manager, archive *session.FileArchive) *Server {
	s := &Server{
		service: gameService,
		wsh:     wsh,
		rules:   rules,
		archive: archive,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{token}", s.handleGetSession).Methods("GET")

	api.HandleFunc("/rules", s.handleListRuleSets).Methods("GET")
	api.HandleFunc("/rules/{name}", s.handleGetRuleSet).Methods("GET")

	api.HandleFunc("/archive", s.handleArchive).Methods("GET")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.HandleFunc("/ws", s.wsh.HandleWebSocket)
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

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Session handlers

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	info, err := s.service.GetSession(r.Context(), token)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "session not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, info)
}

// Rule set handlers

func (s *Server) handleListRuleSets(w http.ResponseWriter, r *http.Request) {
	if s.rules == nil {
		respondJSON(w, http.StatusOK, []*config.RuleSet{})
		return
	}

	ruleSets, err := s.rules.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, ruleSets)
}

func (s *Server) handleGetRuleSet(w http.ResponseWriter, r *http.Request) {
	if s.rules == nil {
		respondError(w, http.StatusNotFound, "rule set not found")
		return
	}

	rs, err := s.rules.Load(mux.Vars(r)["name"])
	if err != nil {
		if errors.Is(err, config.ErrRuleSetNotFound) {
			respondError(w, http.StatusNotFound, "rule set not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, rs)
}

// Archive handler

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"count": 0,
			"games": []session.Record{},
		})
		return
	}

	records, err := s.archive.ReadAll()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []session.Record{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(records),
		"games": records,
	})
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
