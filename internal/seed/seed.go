// Package seed loads sample problems into a store.
//
// The data set is a YAML document (problems.yaml is embedded as the
// default). Every seeded problem and comment is attributed to a single
// seed author, which also marks a store as already seeded.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sakif/problemspark/internal/apperror"
	"github.com/sakif/problemspark/internal/model"
	"github.com/sakif/problemspark/internal/repository"
)

//go:embed problems.yaml
var defaultData []byte

// ErrAlreadySeeded is returned by Apply when the seed author already exists.
var ErrAlreadySeeded = errors.New("seed: store already contains seed data")

type Data struct {
	Author   Author    `yaml:"author"`
	Problems []Problem `yaml:"problems"`
}

type Author struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type Problem struct {
	Title        string    `yaml:"title"`
	Description  string    `yaml:"description"`
	Industry     string    `yaml:"industry"`
	Upvotes      int       `yaml:"upvotes"`
	Downvotes    int       `yaml:"downvotes"`
	CreatedAt    time.Time `yaml:"createdAt"`
	SolutionLink *string   `yaml:"solutionLink"`
	Comments     []Comment `yaml:"comments"`
}

// Comment is a seeded comment. Replies nest to any depth.
type Comment struct {
	Content   string    `yaml:"content"`
	CreatedAt time.Time `yaml:"createdAt"`
	Replies   []Comment `yaml:"replies"`
}

// Summary reports what Apply inserted.
type Summary struct {
	Problems int
	Comments int
}

// Store is the subset of repository.Store that seeding writes to.
type Store interface {
	repository.UserRepository
	repository.ProblemRepository
	repository.CommentRepository
}

// Default returns the embedded sample data.
func Default() (*Data, error) {
	return Load(bytes.NewReader(defaultData))
}

// Load parses and validates a seed document.
func Load(r io.Reader) (*Data, error) {
	var data Data
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("seed: decoding yaml: %w", err)
	}

	if data.Author.Email == "" {
		return nil, fmt.Errorf("seed: author.email is required")
	}
	for i, p := range data.Problems {
		if p.Title == "" {
			return nil, fmt.Errorf("seed: problems[%d]: title is required", i)
		}
		if !model.ValidIndustry(p.Industry) {
			return nil, fmt.Errorf("seed: problem %q: unknown industry %q", p.Title, p.Industry)
		}
		if p.Upvotes < 0 || p.Downvotes < 0 {
			return nil, fmt.Errorf("seed: problem %q: vote counts must not be negative", p.Title)
		}
	}
	return &data, nil
}

// Apply writes data into store. A store that already holds the seed author
// is left untouched and ErrAlreadySeeded is returned.
func Apply(ctx context.Context, store Store, data *Data) (Summary, error) {
	var sum Summary

	_, err := store.GetUserByEmail(ctx, data.Author.Email)
	switch {
	case err == nil:
		return sum, ErrAlreadySeeded
	case !errors.Is(err, apperror.ErrNotFound):
		return sum, fmt.Errorf("seed: looking up seed author: %w", err)
	}

	author := &model.User{Email: data.Author.Email, Name: data.Author.Name}
	if err := store.CreateUser(ctx, author); err != nil {
		return sum, fmt.Errorf("seed: creating seed author: %w", err)
	}

	for _, sp := range data.Problems {
		p := &model.Problem{
			Title:        sp.Title,
			Description:  sp.Description,
			Industry:     model.Industry(sp.Industry),
			Upvotes:      sp.Upvotes,
			Downvotes:    sp.Downvotes,
			SolutionLink: sp.SolutionLink,
			AuthorID:     author.ID,
			CreatedAt:    sp.CreatedAt,
		}
		if err := store.CreateProblem(ctx, p); err != nil {
			return sum, fmt.Errorf("seed: creating problem %q: %w", sp.Title, err)
		}
		sum.Problems++

		n, err := createComments(ctx, store, p.ID, author.ID, nil, sp.Comments)
		sum.Comments += n
		if err != nil {
			return sum, err
		}
	}
	return sum, nil
}

func createComments(ctx context.Context, store Store, problemID, authorID string, parentID *string, comments []Comment) (int, error) {
	created := 0
	for _, sc := range comments {
		c := &model.Comment{
			ProblemID: problemID,
			AuthorID:  authorID,
			ParentID:  parentID,
			Content:   sc.Content,
			CreatedAt: sc.CreatedAt,
		}
		if err := store.CreateComment(ctx, c); err != nil {
			return created, fmt.Errorf("seed: creating comment on %s: %w", problemID, err)
		}
		created++

		id := c.ID
		n, err := createComments(ctx, store, problemID, authorID, &id, sc.Replies)
		created += n
		if err != nil {
			return created, err
		}
	}
	return created, nil
}
