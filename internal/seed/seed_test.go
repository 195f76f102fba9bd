package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/problemspark/internal/commenttree"
	"github.com/sakif/problemspark/internal/model"
	"github.com/sakif/problemspark/internal/repository"
	"github.com/sakif/problemspark/internal/repository/memory"
)

func TestDefault(t *testing.T) {
	data, err := Default()
	require.NoError(t, err)

	assert.Len(t, data.Problems, 10)
	assert.Equal(t, "seed@problemspark.local", data.Author.Email)

	first := data.Problems[0]
	assert.Equal(t, "Healthcare", first.Industry)
	assert.Equal(t, 42, first.Upvotes)
	assert.Equal(t, 3, first.Downvotes)
	assert.Equal(t, "2025-03-15T14:30:00Z", first.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"))
	require.NotNil(t, first.SolutionLink)
	assert.Equal(t, "https://www.stridehealth.com", *first.SolutionLink)

	assert.Nil(t, data.Problems[1].SolutionLink)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "missing author email",
			doc:  "author:\n  name: x\nproblems: []\n",
			want: "author.email",
		},
		{
			name: "unknown industry",
			doc:  "author:\n  email: a@b.c\nproblems:\n  - title: t\n    industry: Space\n",
			want: "unknown industry",
		},
		{
			name: "missing title",
			doc:  "author:\n  email: a@b.c\nproblems:\n  - industry: Tech\n",
			want: "title is required",
		},
		{
			name: "negative votes",
			doc:  "author:\n  email: a@b.c\nproblems:\n  - title: t\n    industry: Tech\n    upvotes: -1\n",
			want: "negative",
		},
		{
			name: "unknown field",
			doc:  "author:\n  email: a@b.c\nproblemz: []\n",
			want: "decoding yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	data, err := Default()
	require.NoError(t, err)

	sum, err := Apply(ctx, store, data)
	require.NoError(t, err)
	assert.Equal(t, 10, sum.Problems)
	assert.Equal(t, 11, sum.Comments)

	problems, err := store.ListProblems(ctx, repository.ProblemFilter{})
	require.NoError(t, err)
	require.Len(t, problems, 10)

	// Newest seeded problem comes first.
	assert.Equal(t, "Difficulty finding reliable home service providers", problems[0].Title)

	var healthcare model.Problem
	for _, p := range problems {
		if p.Upvotes == 42 {
			healthcare = p
		}
	}
	require.NotEmpty(t, healthcare.ID)
	assert.Equal(t, 3, healthcare.CommentCount)
	assert.Equal(t, "ProblemSpark", healthcare.AuthorName)

	comments, err := store.ListComments(ctx, healthcare.ID)
	require.NoError(t, err)
	tree := commenttree.Build(comments)
	require.Len(t, tree, 2)
	// Newest root first; the Stride Health comment carries the reply.
	assert.Contains(t, tree[0].Content, "$800/month")
	require.Len(t, tree[1].Replies, 1)
	assert.Contains(t, tree[1].Replies[0].Content, "part-time")
}

func TestApply_AlreadySeeded(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	data, err := Default()
	require.NoError(t, err)

	_, err = Apply(ctx, store, data)
	require.NoError(t, err)

	sum, err := Apply(ctx, store, data)
	assert.ErrorIs(t, err, ErrAlreadySeeded)
	assert.Zero(t, sum.Problems)

	problems, err := store.ListProblems(ctx, repository.ProblemFilter{})
	require.NoError(t, err)
	assert.Len(t, problems, 10)
}
