package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/sp3dr4/relink/internal/domain"
	"github.com/sp3dr4/relink/internal/infrastructure/memory"
	"github.com/sp3dr4/relink/internal/pkg/metrics"
)

type SubmissionServiceSuite struct {
	suite.Suite
	shortener *mockShortener
	history   *HistoryService
	service   *SubmissionService
	ctx       context.Context
}

func (s *SubmissionServiceSuite) SetupTest() {
	clock := newFakeClock()
	s.shortener = &mockShortener{}
	s.history = NewHistoryService(memory.NewSessionStore().WithClock(clock.Now), metrics.NewNoOpRegistry(), domain.DefaultHistoryTTL, 24*time.Hour).
		WithClock(clock.Now)
	s.service = NewSubmissionService(s.shortener, s.history)
	s.ctx = context.Background()
}

func TestSubmissionServiceSuite(t *testing.T) {
	suite.Run(t, new(SubmissionServiceSuite))
}

func (s *SubmissionServiceSuite) TestMixedBatch() {
	s.shortener.On("Shorten", mock.Anything, "example.com").
		Return(domain.ShortenSuccess("https://example.com", "https://tinyurl.com/a", "tinyurl"))
	s.shortener.On("Shorten", mock.Anything, "localhost").
		Return(domain.ShortenFailure("https://localhost", fmt.Errorf("%w: missing domain", domain.ErrInvalidURL)))
	s.shortener.On("Shorten", mock.Anything, "example.org").
		Return(domain.ShortenSuccess("https://example.org", "https://relink.local/1a2b3c4d", domain.SourceFallback))

	result, err := s.service.Submit(s.ctx, testSession, SubmitRequest{
		Name: "batch",
		URLs: []string{"example.com\n\n  localhost  \r\nexample.org"},
	})
	s.Require().NoError(err)

	s.Equal(2, result.Succeeded)
	s.Equal(1, result.Failed)
	s.Require().Len(result.Results, 3)
	s.Equal("tinyurl", result.Results[0].Source)
	s.NotZero(result.Results[0].ID)
	s.Contains(result.Results[1].Error, "missing domain")
	s.Equal(domain.SourceFallback, result.Results[2].Source)
	s.Equal("Shortened 2 URL(s), 1 failed", result.Message())
	s.Equal("warning", result.Category())

	entries, err := s.history.ListAll(s.ctx, testSession)
	s.Require().NoError(err)
	s.Len(entries, 2)
	s.Equal("batch", entries[0].Name)
}

func (s *SubmissionServiceSuite) TestLargeBatchIsFullyProcessed() {
	const count = 120

	lines := make([]string, 0, count)
	for i := 0; i < count; i++ {
		lines = append(lines, fmt.Sprintf("site%d.example.com", i))
	}
	s.shortener.On("Shorten", mock.Anything, mock.Anything).
		Return(domain.ShortenSuccess("https://example.com", "https://tinyurl.com/a", "tinyurl"))

	result, err := s.service.Submit(s.ctx, testSession, SubmitRequest{URLs: []string{strings.Join(lines, "\n")}})
	s.Require().NoError(err)

	s.Equal(count, result.Succeeded)
	s.Zero(result.Failed)
	s.shortener.AssertNumberOfCalls(s.T(), "Shorten", count)

	entries, err := s.history.ListAll(s.ctx, testSession)
	s.Require().NoError(err)
	s.Len(entries, count)
}

func (s *SubmissionServiceSuite) TestBlankSubmissionIsRejected() {
	_, err := s.service.Submit(s.ctx, testSession, SubmitRequest{URLs: []string{"  \n \n"}})

	var verrs validator.ValidationErrors
	s.Require().True(errors.As(err, &verrs))
	s.Equal("URLs", verrs[0].Field())
	s.shortener.AssertNotCalled(s.T(), "Shorten", mock.Anything, mock.Anything)
}

func (s *SubmissionServiceSuite) TestNameTooLong() {
	_, err := s.service.Submit(s.ctx, testSession, SubmitRequest{
		Name: strings.Repeat("n", MaxNameLength+1),
		URLs: []string{"example.com"},
	})

	var verrs validator.ValidationErrors
	s.Require().True(errors.As(err, &verrs))
	s.Equal("Name", verrs[0].Field())
}

func TestSplitURLs(t *testing.T) {
	got := SplitURLs("a.com\r\n\n b.com ", "", "c.com")
	assert.Equal(t, []string{"a.com", "b.com", "c.com"}, got)
	assert.Empty(t, SplitURLs())
}

type brokenRecorder struct{}

func (brokenRecorder) Insert(context.Context, string, string, string, string) (domain.HistoryEntry, error) {
	return domain.HistoryEntry{}, errors.New("disk full")
}

func TestSubmissionService_StoreFailureAborts(t *testing.T) {
	shortener := &mockShortener{}
	shortener.On("Shorten", mock.Anything, mock.Anything).
		Return(domain.ShortenSuccess("https://example.com", "https://tinyurl.com/a", "tinyurl"))

	_, err := NewSubmissionService(shortener, brokenRecorder{}).
		Submit(context.Background(), testSession, SubmitRequest{URLs: []string{"example.com"}})

	require.Error(t, err)
	assert.ErrorContains(t, err, "disk full")
}

func TestSubmitResult_Message(t *testing.T) {
	assert.Equal(t, "Successfully shortened 3 URL(s)", (&SubmitResult{Succeeded: 3}).Message())
	assert.Equal(t, "Failed to shorten 1 URL(s)", (&SubmitResult{Failed: 1}).Message())
	assert.Equal(t, "error", (&SubmitResult{Failed: 1}).Category())
}
