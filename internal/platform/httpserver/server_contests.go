package httpserver

import (
	"errors"
	"net/http"
	"strings"

	contesterrors "agon/contexts/debate-arena/contest-service/domain/errors"
	contesthttp "agon/contexts/debate-arena/contest-service/transport/http"
)

func writeContestError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, contesthttp.ErrorResponse{Code: code, Message: message})
}

func writeContestDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contesterrors.ErrNoActiveContest):
		writeContestError(w, http.StatusNotFound, "no_active_contest", err.Error())
	case errors.Is(err, contesterrors.ErrContestNotFound):
		writeContestError(w, http.StatusNotFound, "contest_not_found", err.Error())
	case errors.Is(err, contesterrors.ErrWinnerRecordNotFound):
		writeContestError(w, http.StatusNotFound, "winner_not_found", err.Error())
	case errors.Is(err, contesterrors.ErrInvalidContestInput):
		writeContestError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeContestError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleGetCurrentContest(w http.ResponseWriter, r *http.Request) {
	resp, err := s.contests.Handler.GetCurrentContestHandler(r.Context())
	if err != nil {
		writeContestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetContest(w http.ResponseWriter, r *http.Request) {
	contestID := strings.TrimSpace(r.PathValue("contest_id"))
	if contestID == "" {
		writeContestError(w, http.StatusBadRequest, "invalid_request", "contest_id is required")
		return
	}
	resp, err := s.contests.Handler.GetContestHandler(r.Context(), contestID)
	if err != nil {
		writeContestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetWinnerRecord(w http.ResponseWriter, r *http.Request) {
	contestID := strings.TrimSpace(r.PathValue("contest_id"))
	if contestID == "" {
		writeContestError(w, http.StatusBadRequest, "invalid_request", "contest_id is required")
		return
	}
	resp, err := s.contests.Handler.GetWinnerRecordHandler(r.Context(), contestID)
	if err != nil {
		writeContestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	contestID := strings.TrimSpace(r.PathValue("contest_id"))
	if contestID == "" {
		writeContestError(w, http.StatusBadRequest, "invalid_request", "contest_id is required")
		return
	}
	resp, err := s.contests.Handler.ListSubmissionsHandler(r.Context(), contestID)
	if err != nil {
		writeContestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
