package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sp3dr4/relink/internal/domain"
	"github.com/sp3dr4/relink/internal/pkg/logging"
)

const MaxNameLength = 100

type Shortener interface {
	Shorten(ctx context.Context, raw string) domain.ShortenResult
}

type HistoryRecorder interface {
	Insert(ctx context.Context, sessionID, name, original, shortened string) (domain.HistoryEntry, error)
}

// SubmitRequest is one form or API submission. Each element of URLs may
// itself hold several newline separated URLs.
type SubmitRequest struct {
	Name string   `json:"name" validate:"max=100"`
	URLs []string `json:"urls" validate:"required,min=1"`
}

type URLResult struct {
	Input     string `json:"input"`
	Original  string `json:"original"`
	Shortened string `json:"shortened,omitempty"`
	Source    string `json:"source,omitempty"`
	ID        int64  `json:"id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type SubmitResult struct {
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Results   []URLResult `json:"results"`
}

// Message is the aggregate line shown to the user after a submission.
func (r *SubmitResult) Message() string {
	switch {
	case r.Failed == 0:
		return fmt.Sprintf("Successfully shortened %d URL(s)", r.Succeeded)
	case r.Succeeded == 0:
		return fmt.Sprintf("Failed to shorten %d URL(s)", r.Failed)
	default:
		return fmt.Sprintf("Shortened %d URL(s), %d failed", r.Succeeded, r.Failed)
	}
}

// Category maps the outcome onto a flash category.
func (r *SubmitResult) Category() string {
	switch {
	case r.Failed == 0:
		return "success"
	case r.Succeeded == 0:
		return "error"
	default:
		return "warning"
	}
}

type SubmissionService struct {
	shortener Shortener
	history   HistoryRecorder
	validate  *validator.Validate
}

func NewSubmissionService(shortener Shortener, history HistoryRecorder) *SubmissionService {
	return &SubmissionService{
		shortener: shortener,
		history:   history,
		validate:  validator.New(),
	}
}

// SplitURLs breaks every block on newlines and drops blank lines.
func SplitURLs(blocks ...string) []string {
	out := []string{}
	for _, block := range blocks {
		for _, line := range strings.Split(block, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

func (s *SubmissionService) Submit(ctx context.Context, sessionID string, req SubmitRequest) (*SubmitResult, error) {
	const op = "application.SubmissionService.Submit"

	req.Name = strings.TrimSpace(req.Name)
	req.URLs = SplitURLs(req.URLs...)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)
	result := &SubmitResult{Results: make([]URLResult, 0, len(req.URLs))}

	for _, raw := range req.URLs {
		outcome := s.shortener.Shorten(ctx, raw)
		item := URLResult{Input: raw, Original: outcome.Original}

		if !outcome.OK() {
			item.Error = outcome.Reason.Error()
			result.Failed++
			result.Results = append(result.Results, item)
			continue
		}

		entry, err := s.history.Insert(ctx, sessionID, req.Name, outcome.Original, outcome.ShortURL)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		item.Shortened = entry.Shortened
		item.Source = outcome.Source
		item.ID = entry.ID
		result.Succeeded++
		result.Results = append(result.Results, item)
	}

	logger.Info("Submission processed",
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)

	return result, nil
}
