// Package service contains the business logic of ProblemSpark.
//
// Handlers parse HTTP and call a service; services validate input, enforce
// rules such as "only the author may edit a problem", and call the
// repository interfaces. Nothing in this package imports net/http or a
// concrete storage backend, so the same services run behind the HTTP API,
// the CLI seed command and the tests.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/problemspark/internal/apperror"
	"github.com/sakif/problemspark/internal/commenttree"
	"github.com/sakif/problemspark/internal/feed"
	"github.com/sakif/problemspark/internal/model"
	"github.com/sakif/problemspark/internal/repository"
)

// Validation and pagination limits.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxSolutionLinkLen   = 2048
	DefaultFeedLimit     = 20
	MaxFeedLimit         = 100
)

// DefaultSort is used when a feed request names no ordering.
const DefaultSort = feed.SortPopular

// ProblemInput is the user-supplied part of a new problem.
type ProblemInput struct {
	Title        string
	Description  string
	Industry     string
	SolutionLink string // optional
}

// ProblemPatch is a partial update. Nil fields are left alone; a
// SolutionLink pointing at "" removes the link.
type ProblemPatch struct {
	Title        *string
	Description  *string
	Industry     *string
	SolutionLink *string
}

// FeedQuery is one page request against the feed.
type FeedQuery struct {
	Industry string
	Query    string
	Sort     string
	Limit    int
	Offset   int
}

// FeedPage is a page of the assembled feed. Total counts every match, not
// just the ones on this page.
type FeedPage struct {
	Problems []model.Problem `json:"problems"`
	Total    int             `json:"total"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
	Sort     feed.SortOption `json:"sort"`
}

// ProblemDetail is a problem together with its threaded comments.
type ProblemDetail struct {
	Problem  *model.Problem     `json:"problem"`
	Comments []commenttree.Node `json:"comments"`
}

type ProblemService struct {
	problems repository.ProblemRepository
	comments repository.CommentRepository
	logger   *slog.Logger
}

func NewProblemService(problems repository.ProblemRepository, comments repository.CommentRepository, logger *slog.Logger) *ProblemService {
	return &ProblemService{
		problems: problems,
		comments: comments,
		logger:   logger,
	}
}

// Create validates and stores a new problem. Vote counts start at zero.
func (s *ProblemService) Create(ctx context.Context, authorID string, in ProblemInput) (*model.Problem, error) {
	if authorID == "" {
		return nil, apperror.Unauthorized("sign in to submit a problem")
	}

	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	description, err := validateDescription(in.Description)
	if err != nil {
		return nil, err
	}
	industry, err := validateIndustry(in.Industry)
	if err != nil {
		return nil, err
	}
	link, err := normalizeSolutionLink(in.SolutionLink)
	if err != nil {
		return nil, err
	}

	p := &model.Problem{
		Title:        title,
		Description:  description,
		Industry:     industry,
		SolutionLink: link,
		AuthorID:     authorID,
	}
	if err := s.problems.CreateProblem(ctx, p); err != nil {
		s.logger.Error("failed to create problem",
			slog.String("author", authorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating problem: %w", err)
	}

	s.logger.Info("problem created",
		slog.String("id", p.ID),
		slog.String("industry", string(p.Industry)),
		slog.String("author", authorID),
	)
	return p, nil
}

// Feed returns one page of the filtered, sorted feed.
//
// The industry filter is pushed down to the repository; search, sorting and
// pagination happen in feed.Assemble and feed.Paginate. An unknown industry
// matches nothing and an unknown sort keeps the repository's newest-first
// order. Neither is an error.
func (s *ProblemService) Feed(ctx context.Context, q FeedQuery) (*FeedPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}
	offset := max(q.Offset, 0)

	sortOpt := feed.ParseSort(q.Sort)
	if sortOpt == "" {
		sortOpt = DefaultSort
	}
	industry := strings.TrimSpace(q.Industry)

	all, err := s.problems.ListProblems(ctx, repository.ProblemFilter{Industry: industry})
	if err != nil {
		return nil, fmt.Errorf("listing problems: %w", err)
	}

	assembled := feed.Assemble(all, feed.Options{
		Industry: industry,
		Query:    strings.TrimSpace(q.Query),
		Sort:     sortOpt,
	})

	return &FeedPage{
		Problems: feed.Paginate(assembled, limit, offset),
		Total:    len(assembled),
		Limit:    limit,
		Offset:   offset,
		Sort:     sortOpt,
	}, nil
}

// Get loads a problem and its comment thread. The two reads are
// independent, so they run concurrently.
func (s *ProblemService) Get(ctx context.Context, id string) (*ProblemDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "problem ID is required")
	}

	var (
		problem  *model.Problem
		comments []model.Comment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.problems.GetProblem(gctx, id)
		if err != nil {
			return err
		}
		problem = p
		return nil
	})
	g.Go(func() error {
		cs, err := s.comments.ListComments(gctx, id)
		if err != nil {
			return fmt.Errorf("listing comments of %s: %w", id, err)
		}
		comments = cs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &ProblemDetail{
		Problem:  problem,
		Comments: commenttree.Build(comments),
	}, nil
}

// Update applies a partial update. Only the author may edit a problem;
// vote counts and comments are never touched.
func (s *ProblemService) Update(ctx context.Context, userID, id string, patch ProblemPatch) (*model.Problem, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to edit a problem")
	}

	existing, err := s.problems.GetProblem(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != userID {
		return nil, apperror.Forbidden("only the author can edit this problem")
	}

	var upd repository.ProblemUpdate
	if patch.Title != nil {
		title, err := validateTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		upd.Title = &title
	}
	if patch.Description != nil {
		description, err := validateDescription(*patch.Description)
		if err != nil {
			return nil, err
		}
		upd.Description = &description
	}
	if patch.Industry != nil {
		industry, err := validateIndustry(*patch.Industry)
		if err != nil {
			return nil, err
		}
		upd.Industry = &industry
	}
	if patch.SolutionLink != nil {
		link, err := normalizeSolutionLink(*patch.SolutionLink)
		if err != nil {
			return nil, err
		}
		if link == nil {
			upd.ClearSolutionLink = true
		} else {
			upd.SolutionLink = link
		}
	}

	updated, err := s.problems.UpdateProblem(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("updating problem %s: %w", id, err)
	}

	s.logger.Info("problem updated", slog.String("id", id), slog.String("author", userID))
	return updated, nil
}

// ListByAuthor returns a user's problems, newest first.
func (s *ProblemService) ListByAuthor(ctx context.Context, authorID string) ([]model.Problem, error) {
	authorID = strings.TrimSpace(authorID)
	if authorID == "" {
		return nil, apperror.ValidationFailed("authorId", "author ID is required")
	}
	problems, err := s.problems.ListProblemsByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("listing problems of %s: %w", authorID, err)
	}
	return problems, nil
}

func validateTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", apperror.ValidationFailed("title", "title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	return title, nil
}

func validateDescription(raw string) (string, error) {
	description := strings.TrimSpace(raw)
	if description == "" {
		return "", apperror.ValidationFailed("description", "description is required")
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return "", apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	return description, nil
}

// validateIndustry is exact and case-sensitive, like the feed filter.
func validateIndustry(raw string) (model.Industry, error) {
	if !model.ValidIndustry(raw) {
		return "", apperror.ValidationFailed("industry", fmt.Sprintf("unknown industry %q", raw))
	}
	return model.Industry(raw), nil
}

// normalizeSolutionLink returns nil for an empty link and rejects anything
// that is not an absolute http(s) URL.
func normalizeSolutionLink(raw string) (*string, error) {
	link := strings.TrimSpace(raw)
	if link == "" {
		return nil, nil
	}
	if len(link) > MaxSolutionLinkLen {
		return nil, apperror.ValidationFailed("solutionLink", "solution link is too long")
	}
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperror.ValidationFailed("solutionLink", "solution link must be an http or https URL")
	}
	return &link, nil
}
