package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"newspulse/internal/domain"
	"newspulse/internal/service/mocks"
)

type SearchServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	source    *mocks.MockSource
	headlines *mocks.MockHeadlineSource
	scorer    *mocks.MockScorer

	service *SearchService
}

func (s *SearchServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.source = mocks.NewMockSource(s.ctrl)
	s.headlines = mocks.NewMockHeadlineSource(s.ctrl)
	s.scorer = mocks.NewMockScorer(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.service = NewSearchService(s.source, s.headlines, s.scorer, logger)
}

func (s *SearchServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestSearchServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SearchServiceTestSuite))
}

func (s *SearchServiceTestSuite) TestSearch_ScoresAndBuckets() {
	ctx := context.Background()

	raw := []domain.RawArticle{
		{Description: "great news", PubDate: "2025-08-30 10:00:00"},
		{Description: "neutral news", PubDate: "2025-08-30 11:00:00"},
		{Description: "terrible news", PubDate: "2025-08-30 12:00:00"},
		{Description: "boundary news", PubDate: "2025-08-30 13:00:00"},
	}
	headlines := []domain.Headline{{Title: "t", Link: "https://example.com"}}

	s.headlines.EXPECT().TopHeadlines(ctx, "economy").Return(headlines)
	s.source.EXPECT().FetchQuery(ctx, "economy").Return(raw, nil)
	s.scorer.EXPECT().Score("great news").Return(0.8)
	s.scorer.EXPECT().Score("neutral news").Return(0.0)
	s.scorer.EXPECT().Score("terrible news").Return(-0.6)
	s.scorer.EXPECT().Score("boundary news").Return(0.2)

	result := s.service.Search(ctx, "economy")

	s.Equal([]string{
		"2025-08-30 10:00:00",
		"2025-08-30 11:00:00",
		"2025-08-30 12:00:00",
		"2025-08-30 13:00:00",
	}, result.Dates)
	s.Equal([]float64{0.8, 0.0, -0.6, 0.2}, result.Sentiments)
	s.Equal(1, result.Pie.Positive)
	s.Equal(2, result.Pie.Neutral, "exact threshold counts as neutral")
	s.Equal(1, result.Pie.Negative)
	s.Equal(headlines, result.Headlines)
}

func (s *SearchServiceTestSuite) TestSearch_FetchFailureDegradesToEmpty() {
	ctx := context.Background()

	s.headlines.EXPECT().TopHeadlines(ctx, "economy").Return(headlinesFallback())
	s.source.EXPECT().FetchQuery(ctx, "economy").Return(nil, errors.New("after 5 attempts: 429"))

	result := s.service.Search(ctx, "economy")

	s.Empty(result.Dates)
	s.Empty(result.Sentiments)
	s.Equal(SearchPie{}, result.Pie)
	s.NotEmpty(result.Headlines)
}

func (s *SearchServiceTestSuite) TestSearch_EmptyUpstreamPayload() {
	ctx := context.Background()

	s.headlines.EXPECT().TopHeadlines(ctx, "nothing").Return(headlinesFallback())
	s.source.EXPECT().FetchQuery(ctx, "nothing").Return([]domain.RawArticle{}, nil)

	result := s.service.Search(ctx, "nothing")

	s.NotNil(result.Dates)
	s.Empty(result.Dates)
	s.Equal(SearchPie{}, result.Pie)
}

func headlinesFallback() []domain.Headline {
	return []domain.Headline{
		{Title: "Fallback Headline", Link: "https://example.com/fallback"},
	}
}
