package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/sp3dr4/relink/internal/application"
	"github.com/sp3dr4/relink/internal/domain"
	"github.com/sp3dr4/relink/internal/pkg/logging"
)

const (
	msgEntryDeleted  = "Entry deleted"
	msgEntryNotFound = "Entry not found"
	msgStatsFailed   = "Unable to compute statistics"
)

type Handlers struct {
	history    *application.HistoryService
	submission *application.SubmissionService
	store      domain.SessionStore
	cache      domain.ShortenCache
	cookie     SessionCookie
	pages      *template.Template
}

func NewHandlers(
	history *application.HistoryService,
	submission *application.SubmissionService,
	store domain.SessionStore,
	cache domain.ShortenCache,
	cookie SessionCookie,
) (*Handlers, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &Handlers{
		history:    history,
		submission: submission,
		store:      store,
		cache:      cache,
		cookie:     cookie,
		pages:      pages,
	}, nil
}

// HandleHealth handles the health check endpoint.
//
//	@Summary		Health check endpoint
//	@Description	Check if the service is running
//	@Tags			health
//	@Produce		plain
//	@Success		200	{string}	string	"OK"
//	@Router			/health [get]
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// HandleReady handles the readiness check endpoint.
//
//	@Summary		Readiness check endpoint
//	@Description	Check if the service is ready to serve requests (session store and provider cache)
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	object{status=string,timestamp=string}	"Service is ready"
//	@Failure		503	{object}	ErrorResponse							"Service is not ready"
//	@Router			/ready [get]
func (h *Handlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	logger := logging.FromContext(r.Context())

	if err := h.store.HealthCheck(ctx); err != nil {
		logger.Error("Readiness check failed", "component", "session_store", "error", err)
		respondWithError(w, r, http.StatusServiceUnavailable, "Service not ready: session store unavailable")
		return
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			logger.Error("Readiness check failed", "component", "shorten_cache", "error", err)
			respondWithError(w, r, http.StatusServiceUnavailable, "Service not ready: cache unavailable")
			return
		}
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{
		"status":    "ready",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// ShortenRequest is the JSON body of POST /api/shorten. URLs and Text are
// merged; Text may hold one URL per line.
type ShortenRequest struct {
	Name string   `json:"name" example:"work links"`
	URLs []string `json:"urls" example:"https://example.com"`
	Text string   `json:"text,omitempty"`
}

type ShortenResponse struct {
	Succeeded int                     `json:"succeeded"`
	Failed    int                     `json:"failed"`
	Message   string                  `json:"message" example:"Successfully shortened 1 URL(s)"`
	Results   []application.URLResult `json:"results"`
}

type HistoryResponse struct {
	Count   int                `json:"count"`
	Entries []domain.EntryView `json:"entries"`
}

type SearchResponse struct {
	Query   string             `json:"query"`
	Message string             `json:"message"`
	Entries []domain.EntryView `json:"entries"`
}

type DeleteResponse struct {
	Deleted bool   `json:"deleted"`
	Message string `json:"message,omitempty"`
}

// HandleAPIShorten handles the batch shortening endpoint.
//
//	@Summary		Shorten URLs
//	@Description	Shorten one or more URLs and record the successes in the session history
//	@Tags			urls
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ShortenRequest			true	"URLs to shorten"
//	@Success		200		{object}	ShortenResponse			"Batch processed"
//	@Failure		400		{object}	ValidationErrorResponse	"Invalid request or validation error"
//	@Failure		500		{object}	ErrorResponse			"Session store failure"
//	@Router			/api/shorten [post]
func (h *Handlers) HandleAPIShorten(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var req ShortenRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			respondWithError(w, r, http.StatusBadRequest, "Request body is empty")
			return
		}
		logger.Warn("Failed to decode request", "error", err)
		respondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.submission.Submit(r.Context(), sessionID(r), application.SubmitRequest{
		Name: req.Name,
		URLs: append(req.URLs, req.Text),
	})
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			handleValidationError(w, r, validationErrors)
			return
		}

		logger.Error("Failed to process submission", "error", err)
		respondWithError(w, r, http.StatusInternalServerError, "Failed to shorten URLs")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, ShortenResponse{
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Message:   result.Message(),
		Results:   result.Results,
	})
}

// HandleAPIHistory lists the session history.
//
//	@Summary		List history
//	@Description	List the unexpired history entries of the caller's session, newest first
//	@Tags			history
//	@Produce		json
//	@Success		200	{object}	HistoryResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/history [get]
func (h *Handlers) HandleAPIHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.history.ListAll(r.Context(), sessionID(r))
	if err != nil {
		logging.FromContext(r.Context()).Error("Failed to list history", "error", err)
		respondWithError(w, r, http.StatusInternalServerError, "Failed to load history")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, HistoryResponse{Count: len(entries), Entries: entries})
}

// HandleAPISearch searches the session history by name.
//
//	@Summary		Search history
//	@Description	Case-insensitive substring search on entry names
//	@Tags			history
//	@Produce		json
//	@Param			q	query		string	false	"Search query"
//	@Success		200	{object}	SearchResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/search [get]
func (h *Handlers) HandleAPISearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	entries, err := h.history.Search(r.Context(), sessionID(r), query)
	if err != nil {
		logging.FromContext(r.Context()).Error("Failed to search history", "error", err)
		respondWithError(w, r, http.StatusInternalServerError, "Failed to search history")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, SearchResponse{
		Query:   query,
		Message: searchMessage(query, len(entries)),
		Entries: entries,
	})
}

// HandleAPIDelete deletes one history entry.
//
//	@Summary		Delete history entry
//	@Tags			history
//	@Produce		json
//	@Param			id	path		int	true	"Entry id"
//	@Success		200	{object}	DeleteResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	DeleteResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/history/{id} [delete]
func (h *Handlers) HandleAPIDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Entry id must be an integer")
		return
	}

	deleted, err := h.history.Delete(r.Context(), sessionID(r), id)
	if err != nil {
		logging.FromContext(r.Context()).Error("Failed to delete entry", "entry_id", id, "error", err)
		respondWithError(w, r, http.StatusInternalServerError, "Failed to delete entry")
		return
	}

	if !deleted {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, DeleteResponse{Deleted: false, Message: msgEntryNotFound})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, DeleteResponse{Deleted: true})
}

// HandleAPIStats returns aggregate statistics for the session.
//
//	@Summary		History statistics
//	@Tags			history
//	@Produce		json
//	@Success		200	{object}	domain.Stats
//	@Failure		500	{object}	StatsErrorResponse
//	@Router			/api/stats [get]
func (h *Handlers) HandleAPIStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.history.Stats(r.Context(), sessionID(r))
	if err != nil {
		logging.FromContext(r.Context()).Error("Failed to compute stats", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, StatsErrorResponse{Error: msgStatsFailed})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, stats)
}

// HandleAPIResetSession discards the caller's session.
//
//	@Summary		Reset session
//	@Description	Discard the whole history and issue a fresh session on the next request
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	object{reset=bool}
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/session/reset [post]
func (h *Handlers) HandleAPIResetSession(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Reset(r.Context(), sessionID(r)); err != nil {
		logging.FromContext(r.Context()).Error("Failed to reset session", "error", err)
		respondWithError(w, r, http.StatusInternalServerError, "Failed to reset session")
		return
	}

	h.cookie.clear(w)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]bool{"reset": true})
}

func searchMessage(query string, n int) string {
	if n == 0 {
		return fmt.Sprintf(`No results found for "%s"`, query)
	}
	return fmt.Sprintf(`Found %d result(s) for "%s"`, n, query)
}

func sessionID(r *http.Request) string {
	return logging.SessionIDFromContext(r.Context())
}
