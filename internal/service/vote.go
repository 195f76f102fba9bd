package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/problemspark/internal/apperror"
	"github.com/sakif/problemspark/internal/model"
	"github.com/sakif/problemspark/internal/repository"
)

// VoteService records up- and downvotes.
//
// Each user gets one vote per problem. A second vote, in either direction,
// is rejected with apperror.ErrConflict and the counts stay as they were.
type VoteService struct {
	votes  repository.VoteRepository
	logger *slog.Logger
}

func NewVoteService(votes repository.VoteRepository, logger *slog.Logger) *VoteService {
	return &VoteService{votes: votes, logger: logger}
}

// Vote casts userID's vote on problemID and returns the updated problem.
func (s *VoteService) Vote(ctx context.Context, userID, problemID string, voteType model.VoteType) (*model.Problem, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to vote")
	}
	if !voteType.Valid() {
		return nil, apperror.ValidationFailed("type", fmt.Sprintf("vote type must be %q or %q", model.Upvote, model.Downvote))
	}

	p, err := s.votes.CastVote(ctx, &model.Vote{
		UserID:    userID,
		ProblemID: problemID,
		Type:      voteType,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("vote recorded",
		slog.String("problem", problemID),
		slog.String("user", userID),
		slog.String("type", string(voteType)),
	)
	return p, nil
}
