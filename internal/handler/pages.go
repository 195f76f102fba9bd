// Package handler contains the HTTP handlers: the JSON API under /api and
// /auth, and the two server-rendered pages.
//
// Handlers only translate between HTTP and the service layer. They parse
// the request, call one service method, and write the result or map the
// error with writeError.
package handler

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/problemspark/internal/apperror"
	"github.com/sakif/problemspark/internal/auth"
	"github.com/sakif/problemspark/internal/feed"
	"github.com/sakif/problemspark/internal/model"
	"github.com/sakif/problemspark/internal/service"
)

// PageHandler renders the feed and problem pages.
//
// Each page is its own template set (base.html plus the page file) because
// both pages define the "content" block base.html pulls in. The sets are
// parsed once at startup.
type PageHandler struct {
	feedPage    *template.Template
	problemPage *template.Template
	problems    *service.ProblemService
	users       *service.AuthService
	logger      *slog.Logger
}

var pageFuncs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("Jan 2, 2006") },
	"feedURL": func(industry string, sort feed.SortOption, q string) string {
		v := url.Values{}
		if industry != "" {
			v.Set("industry", industry)
		}
		if sort != "" {
			v.Set("sort", string(sort))
		}
		if q != "" {
			v.Set("q", q)
		}
		if len(v) == 0 {
			return "/"
		}
		return "/?" + v.Encode()
	},
}

func NewPageHandler(templateDir string, problems *service.ProblemService, users *service.AuthService, logger *slog.Logger) (*PageHandler, error) {
	parse := func(page string) (*template.Template, error) {
		tmpl, err := template.New("base.html").Funcs(pageFuncs).ParseFiles(
			filepath.Join(templateDir, "base.html"),
			filepath.Join(templateDir, page),
		)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", page, err)
		}
		return tmpl, nil
	}

	feedPage, err := parse("feed.html")
	if err != nil {
		return nil, err
	}
	problemPage, err := parse("problem.html")
	if err != nil {
		return nil, err
	}

	return &PageHandler{
		feedPage:    feedPage,
		problemPage: problemPage,
		problems:    problems,
		users:       users,
		logger:      logger,
	}, nil
}

type feedPageData struct {
	Title      string
	User       *model.User
	Industries []model.Industry
	Sorts      []feed.SortOption
	Industry   string
	Query      string
	Sort       feed.SortOption
	Page       *service.FeedPage
}

type problemPageData struct {
	Title  string
	User   *model.User
	Detail *service.ProblemDetail
}

// HandleFeed renders the feed page.
//
// HTTP: GET /?industry=...&q=...&sort=...
func (h *PageHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	industry := q.Get("industry")
	if industry == "" {
		industry = feed.AllIndustries
	}

	page, err := h.problems.Feed(r.Context(), service.FeedQuery{
		Industry: industry,
		Query:    q.Get("q"),
		Sort:     q.Get("sort"),
		Limit:    service.MaxFeedLimit,
	})
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.render(w, h.feedPage, feedPageData{
		Title:      "ProblemSpark",
		User:       h.currentUser(r),
		Industries: model.Industries,
		Sorts:      feed.SortOptions,
		Industry:   industry,
		Query:      q.Get("q"),
		Sort:       page.Sort,
		Page:       page,
	})
}

// HandleProblem renders one problem with its comment thread.
//
// HTTP: GET /problems/{id}
func (h *PageHandler) HandleProblem(w http.ResponseWriter, r *http.Request) {
	detail, err := h.problems.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.render(w, h.problemPage, problemPageData{
		Title:  detail.Problem.Title + " · ProblemSpark",
		User:   h.currentUser(r),
		Detail: detail,
	})
}

// currentUser is best effort: a stale session just renders the page
// anonymously.
func (h *PageHandler) currentUser(r *http.Request) *model.User {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return nil
	}
	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		h.logger.Debug("page: session user not found", slog.String("userID", userID))
		return nil
	}
	return user
}

func (h *PageHandler) render(w http.ResponseWriter, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *PageHandler) renderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		http.Error(w, "Problem not found", http.StatusNotFound)
	case errors.Is(err, apperror.ErrValidation):
		http.Error(w, "Bad request", http.StatusBadRequest)
	default:
		h.logger.Error("page failed", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
