package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperr "github.com/mkessler/repolens/pkg/errors"
	"github.com/mkessler/repolens/pkg/github"
	"github.com/mkessler/repolens/pkg/stats"
)

// errorBody is the JSON error envelope. Code is one of the machine-readable
// error codes; RetryAfter is set only for rate-limit rejections.
type errorBody struct {
	Error struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		RetryAfter int    `json:"retry_after,omitempty"`
	} `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var body errorBody
	body.Error.Code = string(apperr.GetCode(err))
	body.Error.Message = apperr.UserMessage(err)
	if body.Error.Code == "" {
		body.Error.Code = string(apperr.ErrCodeInternal)
	}

	status := http.StatusInternalServerError
	switch apperr.GetCode(err) {
	case apperr.ErrCodeInvalidInput, apperr.ErrCodeInvalidRepoRef, apperr.ErrCodeInvalidPath, apperr.ErrCodeInvalidCredential:
		status = http.StatusBadRequest
	case apperr.ErrCodeNotFound, apperr.ErrCodeRepoNotFound, apperr.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case apperr.ErrCodeRateLimited:
		status = http.StatusTooManyRequests
		var detail *apperr.RateLimitedError
		if errors.As(err, &detail) {
			body.Error.RetryAfter = detail.RetryAfter
			if detail.RetryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(detail.RetryAfter))
			}
		}
	case apperr.ErrCodeStillComputing:
		status = http.StatusAccepted
	case apperr.ErrCodeFetchFailed:
		status = http.StatusBadGateway
	}

	s.writeJSON(w, status, body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRateLimit(w http.ResponseWriter, r *http.Request) {
	snap, err := s.client.RateLimit(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"limit":             snap.Limit,
		"remaining":         snap.Remaining,
		"reset_at":          snap.ResetAt,
		"authenticated":     snap.Authenticated,
		"approaching_limit": snap.ApproachingLimit(),
	})
}

func (s *Server) handleSetToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperr.New(apperr.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	authenticated, err := s.client.Credentials().SetToken(req.Token)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.client.InvalidateRateLimit(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]bool{"authenticated": authenticated})
}

func (s *Server) handleClearToken(w http.ResponseWriter, r *http.Request) {
	s.client.Credentials().ClearToken()
	s.client.InvalidateRateLimit(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]bool{"authenticated": false})
}

func repoRefFromRequest(r *http.Request) github.RepoRef {
	return github.RepoRef{
		Owner: chi.URLParam(r, "owner"),
		Name:  chi.URLParam(r, "repo"),
	}
}

func (s *Server) handleRepoDetails(w http.ResponseWriter, r *http.Request) {
	details, err := s.client.RepoDetails(r.Context(), repoRefFromRequest(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleContributors(w http.ResponseWriter, r *http.Request) {
	contributors, err := s.client.Contributors(r.Context(), repoRefFromRequest(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, contributors)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := s.client.CommitActivity(r.Context(), repoRefFromRequest(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, activity)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	ref := repoRefFromRequest(r)
	activity, err := s.client.CommitActivity(r.Context(), ref)
	if err != nil {
		s.writeError(w, err)
		return
	}
	contributors, err := s.client.Contributors(r.Context(), ref)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats.Calculate(activity, contributors))
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	depth := 2
	if raw := r.URL.Query().Get("depth"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, apperr.New(apperr.ErrCodeInvalidInput, "depth must be an integer"))
			return
		}
		depth = d
	}
	tree, err := s.client.BuildTree(r.Context(), repoRefFromRequest(r), r.URL.Query().Get("path"), depth)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	content, err := s.client.FileContent(r.Context(), repoRefFromRequest(r), path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, content)
}
