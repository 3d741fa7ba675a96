package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
)

const roomTokenTTL = time.Hour

// ErrorResponse is a generic error response. Status is always "error" so
// clients switching on the status discriminator can parse failures the same
// way as outcomes.
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// StatusResponse is a generic status response
type StatusResponse struct {
	Status string `json:"status"`
}

// TokenResponse carries a minted realtime credential and the server to use
// it against.
type TokenResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// AskRequest is the question submission body.
type AskRequest struct {
	Question string `json:"question"`
}

// JobResponse mirrors a job record for polling clients.
type JobResponse struct {
	Status  string              `json:"status"`
	Answer  string              `json:"answer,omitempty"`
	Sources []domain.SourceInfo `json:"sources,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns readiness of the API and its upstream collaborators
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  StatusResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]Pinger{
		"mailbox": s.mailbox,
		"llm":     s.llm,
		"redis":   s.redis,
	}
	for name, p := range checks {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			s.logger.Warn("readiness check failed", "dependency", name, "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"failed": name,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// handleTokenIssue godoc
// @Summary      Issue a realtime session token
// @Description  Mints a scoped room credential for a generated identity with join/publish/subscribe/publish-data grants
// @Tags         Realtime
// @Produce      json
// @Success      200  {object}  TokenResponse
// @Failure      500  {object}  ErrorResponse  "Token minting failed"
// @Router       /token-issue [post]
func (s *Server) handleTokenIssue(w http.ResponseWriter, r *http.Request) {
	identity := "user-" + uuid.NewString()

	token, err := s.tokenIssuer.Mint(identity, "Inbox User", driven.RoomGrants{
		Room:           s.roomName,
		RoomJoin:       true,
		CanPublish:     true,
		CanSubscribe:   true,
		CanPublishData: true,
	}, roomTokenTTL)
	if err != nil {
		s.logger.Error("token minting failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token, URL: s.realtimeURL})
}

// handleAsk godoc
// @Summary      Ask a question about the inbox
// @Description  Answers synchronously when possible; attachment-heavy questions are deferred to a polled background job
// @Tags         Assistant
// @Accept       json
// @Produce      json
// @Param        request  body      AskRequest  true  "Question"
// @Success      200      {object}  driving.Outcome
// @Failure      400      {object}  ErrorResponse  "Missing question"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /ask [post]
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := s.assistantService.Ask(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "question is required")
			return
		}
		s.logger.Error("ask failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to answer question")
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// handleGetJob godoc
// @Summary      Poll a deferred answer job
// @Description  Returns the job status; unknown and evicted ids both yield 404
// @Tags         Assistant
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  JobResponse
// @Failure      404  {object}  ErrorResponse  "Job not found"
// @Router       /jobs/{id} [get]
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	job, err := s.assistantService.JobStatus(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.logger.Error("job lookup failed", "job_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to look up job")
		return
	}

	writeJSON(w, http.StatusOK, JobResponse{
		Status:  string(job.Status),
		Answer:  job.Answer,
		Sources: job.Sources,
		Error:   job.Error,
	})
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Status: "error", Error: message})
}
