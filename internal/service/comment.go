package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/problemspark/internal/apperror"
	"github.com/sakif/problemspark/internal/commenttree"
	"github.com/sakif/problemspark/internal/model"
	"github.com/sakif/problemspark/internal/repository"
)

const MaxCommentLength = 2000

// CommentService adds comments and serves the threaded view of a problem.
type CommentService struct {
	problems repository.ProblemRepository
	comments repository.CommentRepository
	logger   *slog.Logger
}

func NewCommentService(problems repository.ProblemRepository, comments repository.CommentRepository, logger *slog.Logger) *CommentService {
	return &CommentService{
		problems: problems,
		comments: comments,
		logger:   logger,
	}
}

// Add posts a comment on a problem. With a parentID the comment is a reply;
// the parent must exist and belong to the same problem, which keeps every
// thread inside a single problem.
func (s *CommentService) Add(ctx context.Context, authorID, problemID, content string, parentID *string) (*model.Comment, error) {
	if authorID == "" {
		return nil, apperror.Unauthorized("sign in to comment")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "comment is required")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}

	if _, err := s.problems.GetProblem(ctx, problemID); err != nil {
		return nil, err
	}

	if parentID != nil && strings.TrimSpace(*parentID) == "" {
		parentID = nil
	}
	if parentID != nil {
		parent, err := s.comments.GetComment(ctx, *parentID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, apperror.ValidationFailed("parentId", "the comment you are replying to does not exist")
			}
			return nil, fmt.Errorf("loading parent comment %s: %w", *parentID, err)
		}
		if parent.ProblemID != problemID {
			return nil, apperror.ValidationFailed("parentId", "the comment you are replying to belongs to another problem")
		}
	}

	c := &model.Comment{
		ProblemID: problemID,
		AuthorID:  authorID,
		ParentID:  parentID,
		Content:   content,
	}
	if err := s.comments.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("creating comment on %s: %w", problemID, err)
	}

	s.logger.Info("comment added",
		slog.String("id", c.ID),
		slog.String("problem", problemID),
		slog.Bool("reply", c.IsReply()),
	)
	return c, nil
}

// Tree returns the comment thread of a problem.
func (s *CommentService) Tree(ctx context.Context, problemID string) ([]commenttree.Node, error) {
	if _, err := s.problems.GetProblem(ctx, problemID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListComments(ctx, problemID)
	if err != nil {
		return nil, fmt.Errorf("listing comments of %s: %w", problemID, err)
	}
	return commenttree.Build(comments), nil
}
