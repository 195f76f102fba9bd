package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/problemspark/internal/auth"
	"github.com/sakif/problemspark/internal/model"
	"github.com/sakif/problemspark/internal/service"
)

type VoteHandler struct {
	votes  *service.VoteService
	logger *slog.Logger
}

func NewVoteHandler(votes *service.VoteService, logger *slog.Logger) *VoteHandler {
	return &VoteHandler{votes: votes, logger: logger}
}

type voteRequest struct {
	Type model.VoteType `json:"type"`
}

// HandleVote casts the signed-in user's vote and returns the updated problem.
// A repeat vote is 409 Conflict.
//
// HTTP: POST /api/problems/{id}/vote  {"type":"upvote"}
// Auth: required
func (h *VoteHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req voteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.votes.Vote(r.Context(), userID, chi.URLParam(r, "id"), req.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
