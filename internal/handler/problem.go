package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/problemspark/internal/auth"
	"github.com/sakif/problemspark/internal/model"
	"github.com/sakif/problemspark/internal/service"
)

// ProblemHandler serves the problem JSON API.
type ProblemHandler struct {
	problems *service.ProblemService
	logger   *slog.Logger
}

func NewProblemHandler(problems *service.ProblemService, logger *slog.Logger) *ProblemHandler {
	return &ProblemHandler{problems: problems, logger: logger}
}

type createProblemRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Industry     string `json:"industry"`
	SolutionLink string `json:"solutionLink"`
}

// updateProblemRequest uses pointers so an absent field means "unchanged".
type updateProblemRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Industry     *string `json:"industry"`
	SolutionLink *string `json:"solutionLink"`
}

// HandleIndustries lists the fixed industry labels.
//
// HTTP: GET /api/industries
func (h *ProblemHandler) HandleIndustries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.Industries)
}

// HandleFeed returns one page of the feed.
//
// HTTP: GET /api/problems?industry=Tech&q=rent&sort=trending&limit=20&offset=0
func (h *ProblemHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	page, err := h.problems.Feed(r.Context(), service.FeedQuery{
		Industry: q.Get("industry"),
		Query:    q.Get("q"),
		Sort:     q.Get("sort"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleCreate submits a new problem for the signed-in user.
//
// HTTP: POST /api/problems
// Auth: required
func (h *ProblemHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req createProblemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.problems.Create(r.Context(), userID, service.ProblemInput{
		Title:        req.Title,
		Description:  req.Description,
		Industry:     req.Industry,
		SolutionLink: req.SolutionLink,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleGet returns a problem with its comment tree.
//
// HTTP: GET /api/problems/{id}
func (h *ProblemHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	detail, err := h.problems.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// HandleUpdate applies a partial update. Only the author may call it.
//
// HTTP: PATCH /api/problems/{id}
// Auth: required
func (h *ProblemHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req updateProblemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.problems.Update(r.Context(), userID, chi.URLParam(r, "id"), service.ProblemPatch{
		Title:        req.Title,
		Description:  req.Description,
		Industry:     req.Industry,
		SolutionLink: req.SolutionLink,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleListByAuthor lists a user's problems, newest first.
//
// HTTP: GET /api/users/{id}/problems
func (h *ProblemHandler) HandleListByAuthor(w http.ResponseWriter, r *http.Request) {
	problems, err := h.problems.ListByAuthor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, problems)
}
