// Package memory is an in-process implementation of repository.Store.
//
// It backs the server when no database path is configured and gives the
// service tests a real store without touching disk. Everything lives in
// maps guarded by one RWMutex; reads hand out copies so callers can never
// mutate stored records through a returned pointer.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/problemspark/internal/apperror"
	"github.com/sakif/problemspark/internal/model"
	"github.com/sakif/problemspark/internal/repository"
)

var _ repository.Store = (*Store)(nil)

type voteKey struct {
	userID    string
	problemID string
}

type Store struct {
	mu sync.RWMutex

	users    map[string]model.User
	problems map[string]model.Problem
	// comments keeps insertion order per problem, which is oldest first.
	comments map[string][]model.Comment
	votes    map[voteKey]model.Vote
}

func New() *Store {
	return &Store{
		users:    make(map[string]model.User),
		problems: make(map[string]model.Problem),
		comments: make(map[string][]model.Comment),
		votes:    make(map[voteKey]model.Vote),
	}
}

// Close is a no-op; it exists to satisfy repository.Store.
func (s *Store) Close() error { return nil }

// =========================================================================
// PROBLEMS
// =========================================================================

func (s *Store) CreateProblem(_ context.Context, p *model.Problem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	author, ok := s.users[p.AuthorID]
	if !ok {
		return fmt.Errorf("memory: creating problem: author %s does not exist", p.AuthorID)
	}

	now := time.Now().UTC()
	p.ID = xid.New().String()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	p.AuthorName = author.DisplayName()
	p.CommentCount = 0

	s.problems[p.ID] = cloneProblem(*p)
	return nil
}

func (s *Store) GetProblem(_ context.Context, id string) (*model.Problem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.problems[id]
	if !ok {
		return nil, apperror.NotFound("problem", id)
	}
	out := s.view(p)
	return &out, nil
}

// ListProblems returns problems newest first, optionally narrowed to one industry.
func (s *Store) ListProblems(_ context.Context, filter repository.ProblemFilter) ([]model.Problem, error) {
	return s.listWhere(func(p model.Problem) bool {
		return filter.Industry == "" || filter.Industry == "all" || string(p.Industry) == filter.Industry
	}), nil
}

func (s *Store) ListProblemsByAuthor(_ context.Context, authorID string) ([]model.Problem, error) {
	return s.listWhere(func(p model.Problem) bool { return p.AuthorID == authorID }), nil
}

func (s *Store) listWhere(keep func(model.Problem) bool) []model.Problem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Problem{}
	for _, p := range s.problems {
		if keep(p) {
			out = append(out, s.view(p))
		}
	}
	// Map iteration order is random; match the sqlite ordering exactly.
	slices.SortFunc(out, func(a, b model.Problem) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return out
}

func (s *Store) UpdateProblem(_ context.Context, id string, upd repository.ProblemUpdate) (*model.Problem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.problems[id]
	if !ok {
		return nil, apperror.NotFound("problem", id)
	}

	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Industry != nil {
		p.Industry = *upd.Industry
	}
	switch {
	case upd.ClearSolutionLink:
		p.SolutionLink = nil
	case upd.SolutionLink != nil:
		link := *upd.SolutionLink
		p.SolutionLink = &link
	}
	p.UpdatedAt = time.Now().UTC()

	s.problems[id] = p
	out := s.view(p)
	return &out, nil
}

// view returns a detached copy of p with the derived fields filled in.
// Callers must hold s.mu.
func (s *Store) view(p model.Problem) model.Problem {
	out := cloneProblem(p)
	if author, ok := s.users[p.AuthorID]; ok {
		out.AuthorName = author.DisplayName()
	}
	out.CommentCount = len(s.comments[p.ID])
	return out
}

func cloneProblem(p model.Problem) model.Problem {
	if p.SolutionLink != nil {
		link := *p.SolutionLink
		p.SolutionLink = &link
	}
	return p
}

// =========================================================================
// COMMENTS
// =========================================================================

func (s *Store) CreateComment(_ context.Context, c *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.problems[c.ProblemID]; !ok {
		return apperror.NotFound("problem", c.ProblemID)
	}
	author, ok := s.users[c.AuthorID]
	if !ok {
		return fmt.Errorf("memory: creating comment: author %s does not exist", c.AuthorID)
	}

	c.ID = xid.New().String()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.AuthorName = author.DisplayName()

	s.comments[c.ProblemID] = append(s.comments[c.ProblemID], cloneComment(*c))
	return nil
}

func (s *Store) GetComment(_ context.Context, id string) (*model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, list := range s.comments {
		for _, c := range list {
			if c.ID == id {
				out := s.commentView(c)
				return &out, nil
			}
		}
	}
	return nil, apperror.NotFound("comment", id)
}

// ListComments returns the comments of a problem oldest first. Seeded
// comments may be inserted out of time order, so the list is sorted
// stably by CreatedAt.
func (s *Store) ListComments(_ context.Context, problemID string) ([]model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.comments[problemID]
	out := make([]model.Comment, 0, len(list))
	for _, c := range list {
		out = append(out, s.commentView(c))
	}
	slices.SortStableFunc(out, func(a, b model.Comment) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (s *Store) commentView(c model.Comment) model.Comment {
	out := cloneComment(c)
	if author, ok := s.users[c.AuthorID]; ok {
		out.AuthorName = author.DisplayName()
	}
	return out
}

func cloneComment(c model.Comment) model.Comment {
	if c.ParentID != nil {
		parent := *c.ParentID
		c.ParentID = &parent
	}
	return c
}

// =========================================================================
// VOTES
// =========================================================================

// CastVote records the vote and bumps the counter under one write lock,
// which gives the same all-or-nothing behaviour as the sqlite transaction.
func (s *Store) CastVote(_ context.Context, v *model.Vote) (*model.Problem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.problems[v.ProblemID]
	if !ok {
		return nil, apperror.NotFound("problem", v.ProblemID)
	}
	key := voteKey{userID: v.UserID, problemID: v.ProblemID}
	if _, voted := s.votes[key]; voted {
		return nil, apperror.Conflict("you have already voted on this problem")
	}

	v.ID = xid.New().String()
	v.CreatedAt = time.Now().UTC()
	s.votes[key] = *v

	if v.Type == model.Downvote {
		p.Downvotes++
	} else {
		p.Upvotes++
	}
	s.problems[p.ID] = p

	out := s.view(p)
	return &out, nil
}

// =========================================================================
// USERS
// =========================================================================

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createUserLocked(u)
}

func (s *Store) createUserLocked(u *model.User) error {
	if _, taken := s.findUserLocked(func(x model.User) bool { return x.Email == u.Email }); taken {
		return apperror.Conflict("an account with this email already exists")
	}

	now := time.Now().UTC()
	u.ID = xid.New().String()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(email)
	u, ok := s.findUserLocked(func(x model.User) bool { return x.Email == email })
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	return &u, nil
}

// UpsertGitHubUser mirrors the sqlite lookup order: GitHub ID, then email,
// otherwise a new account.
func (s *Store) UpsertGitHubUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.findUserLocked(func(x model.User) bool { return x.GitHubID != 0 && x.GitHubID == u.GitHubID })
	if !ok && u.Email != "" {
		email := strings.ToLower(u.Email)
		existing, ok = s.findUserLocked(func(x model.User) bool { return x.Email == email })
	}
	if !ok {
		return s.createUserLocked(u)
	}

	if existing.Name == "" {
		existing.Name = u.Name
	}
	existing.GitHubID = u.GitHubID
	existing.AvatarURL = u.AvatarURL
	existing.UpdatedAt = time.Now().UTC()
	s.users[existing.ID] = existing

	*u = existing
	return nil
}

func (s *Store) findUserLocked(match func(model.User) bool) (model.User, bool) {
	for _, u := range s.users {
		if match(u) {
			return u, true
		}
	}
	return model.User{}, false
}
