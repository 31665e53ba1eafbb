package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	contestservice "agon/contexts/debate-arena/contest-service"
	pointsservice "agon/contexts/community-experience/points-service"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	contests contestservice.Module
	points   pointsservice.Module
}

func New(
	contests contestservice.Module,
	points pointsservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		contests: contests,
		points:   points,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /v1/contests/current", s.handleGetCurrentContest)
	s.mux.HandleFunc("GET /v1/contests/{contest_id}", s.handleGetContest)
	s.mux.HandleFunc("GET /v1/contests/{contest_id}/winner", s.handleGetWinnerRecord)
	s.mux.HandleFunc("GET /v1/contests/{contest_id}/submissions", s.handleListSubmissions)

	s.mux.HandleFunc("GET /v1/authors/{author_id}/points", s.handleGetPointsBalance)
	s.mux.HandleFunc("GET /v1/leaderboard", s.handleLeaderboard)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
