package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	pointserrors "agon/contexts/community-experience/points-service/domain/errors"
	pointshttp "agon/contexts/community-experience/points-service/transport/http"
)

func writePointsError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, pointshttp.ErrorResponse{Code: code, Message: message})
}

func writePointsDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pointserrors.ErrInvalidInput):
		writePointsError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, pointserrors.ErrPointsNotFound):
		writePointsError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writePointsError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleGetPointsBalance(w http.ResponseWriter, r *http.Request) {
	authorID := strings.TrimSpace(r.PathValue("author_id"))
	if authorID == "" {
		writePointsError(w, http.StatusBadRequest, "invalid_request", "author_id is required")
		return
	}
	balance, err := s.points.Service.Balance(r.Context(), authorID)
	if err != nil {
		writePointsDomainError(w, err)
		return
	}
	resp := pointshttp.BalanceResponse{
		AuthorID:    balance.AuthorID,
		TotalPoints: balance.TotalPoints,
	}
	if !balance.UpdatedAt.IsZero() {
		resp.UpdatedAt = balance.UpdatedAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := 0
	offset := 0
	if raw := query.Get("limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			writePointsError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = value
	}
	if raw := query.Get("offset"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			writePointsError(w, http.StatusBadRequest, "invalid_offset", "offset must be an integer")
			return
		}
		offset = value
	}

	entries, err := s.points.Service.Leaderboard(r.Context(), limit, offset)
	if err != nil {
		writePointsDomainError(w, err)
		return
	}
	resp := pointshttp.LeaderboardResponse{Entries: make([]pointshttp.LeaderboardEntryResponse, 0, len(entries))}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, pointshttp.LeaderboardEntryResponse{
			AuthorID:    entry.AuthorID,
			TotalPoints: entry.TotalPoints,
			Rank:        entry.Rank,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
