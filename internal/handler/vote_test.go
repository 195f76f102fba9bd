package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/problemspark/internal/model"
)

func TestHandleVote(t *testing.T) {
	api := newTestAPI(t)
	author, _ := api.user(t, "author@example.com")
	_, voter := api.user(t, "voter@example.com")
	p := api.problem(t, author, "t", 5, time.Time{})
	path := "/api/problems/" + p.ID + "/vote"

	rr := api.do(t, http.MethodPost, path, "", `{"type":"upvote"}`)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = api.do(t, http.MethodPost, path, voter, `{"type":"sideways"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "type", decode[errorBody](t, rr).Field)

	rr = api.do(t, http.MethodPost, path, voter, `{"type":"upvote"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[model.Problem](t, rr)
	assert.Equal(t, 6, got.Upvotes)
	assert.Zero(t, got.Downvotes)

	// A second vote in either direction is rejected and changes nothing.
	rr = api.do(t, http.MethodPost, path, voter, `{"type":"downvote"}`)
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "conflict", decode[errorBody](t, rr).Error)

	rr = api.do(t, http.MethodGet, "/api/problems/"+p.ID, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"upvotes":6`)
	assert.Contains(t, rr.Body.String(), `"downvotes":0`)
}

func TestHandleVoteUnknownProblem(t *testing.T) {
	api := newTestAPI(t)
	_, voter := api.user(t, "voter@example.com")

	rr := api.do(t, http.MethodPost, "/api/problems/missing/vote", voter, `{"type":"downvote"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
