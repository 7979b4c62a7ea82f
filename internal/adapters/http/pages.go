package http

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sp3dr4/relink/internal/application"
	"github.com/sp3dr4/relink/internal/domain"
	"github.com/sp3dr4/relink/internal/pkg/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	flashSuccess = "success"
	flashError   = "error"
)

type pageData struct {
	Entries       []domain.EntryView
	Flashes       []domain.Flash
	Query         string
	Searching     bool
	SearchMessage string
}

func parseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// HandleIndex renders the history page with any pending flashes.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flashes, err := h.history.PopFlashes(ctx, sessionID(r))
	if err != nil {
		h.renderServerError(w, r, "Failed to load flashes", err)
		return
	}

	entries, err := h.history.ListAll(ctx, sessionID(r))
	if err != nil {
		h.renderServerError(w, r, "Failed to list history", err)
		return
	}

	h.renderPage(w, r, pageData{Entries: entries, Flashes: flashes})
}

// HandleIndexPost either searches (search_query present) or processes a
// submission and redirects back to the index.
func (h *Handlers) HandleIndexPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if _, ok := r.PostForm["search_query"]; ok {
		h.handleSearchForm(w, r)
		return
	}

	h.handleSubmitForm(w, r)
}

func (h *Handlers) handleSearchForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := strings.TrimSpace(r.PostForm.Get("search_query"))

	entries, err := h.history.Search(ctx, sessionID(r), query)
	if err != nil {
		h.renderServerError(w, r, "Failed to search history", err)
		return
	}

	flashes, err := h.history.PopFlashes(ctx, sessionID(r))
	if err != nil {
		h.renderServerError(w, r, "Failed to load flashes", err)
		return
	}

	h.renderPage(w, r, pageData{
		Entries:       entries,
		Flashes:       flashes,
		Query:         query,
		Searching:     true,
		SearchMessage: searchMessage(query, len(entries)),
	})
}

func (h *Handlers) handleSubmitForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.submission.Submit(ctx, sessionID(r), application.SubmitRequest{
		Name: r.PostForm.Get("name"),
		URLs: r.PostForm["urls"],
	})

	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		err = h.history.AddFlash(ctx, sessionID(r), flashError, flashMessage(validationErrors))
	case err != nil:
		h.renderServerError(w, r, "Failed to process submission", err)
		return
	default:
		err = h.history.AddFlash(ctx, sessionID(r), result.Category(), result.Message())
	}
	if err != nil {
		h.renderServerError(w, r, "Failed to store flash", err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleDeleteForm deletes an entry from the HTML page.
func (h *Handlers) HandleDeleteForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deleted := false
	if id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64); err == nil {
		deleted, err = h.history.Delete(ctx, sessionID(r), id)
		if err != nil {
			h.renderServerError(w, r, "Failed to delete entry", err)
			return
		}
	}

	category, message := flashSuccess, msgEntryDeleted
	if !deleted {
		category, message = flashError, msgEntryNotFound
	}
	if err := h.history.AddFlash(ctx, sessionID(r), category, message); err != nil {
		h.renderServerError(w, r, "Failed to store flash", err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages.ExecuteTemplate(w, "index.html", data); err != nil {
		logging.FromContext(r.Context()).Error("Failed to render page", "error", err)
	}
}

func (h *Handlers) renderServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logging.FromContext(r.Context()).Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
