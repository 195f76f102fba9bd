package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sakif/problemspark/internal/auth"
	"github.com/sakif/problemspark/internal/handler"
	"github.com/sakif/problemspark/internal/model"
	"github.com/sakif/problemspark/internal/repository/memory"
	"github.com/sakif/problemspark/internal/service"
)

// testAPI mounts the JSON handlers on a chi router the same way the server
// does, on top of an in-memory store.
type testAPI struct {
	router chi.Router
	store  *memory.Store
	tokens *auth.TokenService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	tokens, err := auth.NewTokenService("handler-test-secret-0123456789", time.Hour)
	require.NoError(t, err)

	problems := service.NewProblemService(store, store, logger)
	comments := service.NewCommentService(store, store, logger)
	votes := service.NewVoteService(store, logger)
	authService := service.NewAuthService(store, tokens, auth.NewPasswordServiceForTest(4), logger)

	ph := handler.NewProblemHandler(problems, logger)
	ch := handler.NewCommentHandler(comments, logger)
	vh := handler.NewVoteHandler(votes, logger)
	ah := handler.NewAuthHandler(authService, nil, tokens.TTL(), false, logger)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/industries", ph.HandleIndustries)
		r.Get("/problems", ph.HandleFeed)
		r.Get("/problems/{id}", ph.HandleGet)
		r.Get("/problems/{id}/comments", ch.HandleList)
		r.Get("/users/{id}/problems", ph.HandleListByAuthor)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Post("/problems", ph.HandleCreate)
			r.Patch("/problems/{id}", ph.HandleUpdate)
			r.Post("/problems/{id}/comments", ch.HandleCreate)
			r.Post("/problems/{id}/vote", vh.HandleVote)
			r.Get("/me", ah.HandleMe)
		})
	})
	r.Post("/auth/signup", ah.HandleSignup)
	r.Post("/auth/login", ah.HandleLogin)
	r.Post("/auth/logout", ah.HandleLogout)

	return &testAPI{router: r, store: store, tokens: tokens}
}

// user creates an account directly in the store and returns it with a
// valid session token.
func (a *testAPI) user(t *testing.T, email string) (*model.User, string) {
	t.Helper()
	u := &model.User{Email: email, Name: email}
	require.NoError(t, a.store.CreateUser(context.Background(), u))
	token, err := a.tokens.Generate(u.ID)
	require.NoError(t, err)
	return u, token
}

func (a *testAPI) problem(t *testing.T, author *model.User, title string, upvotes int, created time.Time) *model.Problem {
	t.Helper()
	p := &model.Problem{
		Title: title, Description: "d", Industry: model.IndustryTech,
		Upvotes: upvotes, AuthorID: author.ID, CreatedAt: created,
	}
	require.NoError(t, a.store.CreateProblem(context.Background(), p))
	return p
}

func (a *testAPI) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "body: %s", rr.Body.String())
	return v
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field"`
}
