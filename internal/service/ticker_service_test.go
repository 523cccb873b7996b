package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"stock-ticker-be/internal/dto"
	"stock-ticker-be/pkg/events"
	"stock-ticker-be/pkg/ticker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	got    ticker.QueryContext
	result *ticker.Result
	err    error
}

func (f *fakeResolver) Run(ctx context.Context, qc ticker.QueryContext) (*ticker.Result, error) {
	f.got = qc
	return f.result, f.err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.TickerResolved
	err    error
}

func (f *fakePublisher) PublishTickerResolved(ctx context.Context, event events.TickerResolved) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func tslaResult() *ticker.Result {
	p := 250.1
	return &ticker.Result{
		Query:      "Tesla stock price",
		FinalQuery: "Tesla stock price",
		Market:     ticker.MarketUS,
		Language:   "en",
		Answer: []ticker.CatalogRecord{{
			ID: "1", Symbol: "TSLA", Name: "Tesla, Inc.", Price: &p,
			Exchange: "NASDAQ Global Select", ExchangeShortName: "NASDAQ", Type: "stock", Country: ticker.MarketUS,
		}},
		Candidates: []ticker.Candidate{{Ticker: "TSLA", Name: "Tesla", Confidence: ticker.ConfidenceHigh}},
		Cycles:     1,
		Verdict:    ticker.VerdictPass,
		Degraded: []ticker.CandidateFailure{{
			Candidate: ticker.Candidate{Name: "Tesla"}, Lookup: ticker.LookupFullText, Error: "timeout",
		}},
	}
}

func TestTickerService_Resolve(t *testing.T) {
	resolver := &fakeResolver{result: tslaResult()}
	pub := &fakePublisher{}
	svc := NewTickerService(resolver, pub, nil)

	res, err := svc.Resolve(context.Background(), &dto.TickerRequest{Query: "  Tesla stock price ", Market: "us", Language: "en"})
	require.NoError(t, err)

	assert.Equal(t, ticker.QueryContext{Query: "Tesla stock price", Market: ticker.MarketUS, Language: "en"}, resolver.got)
	require.Len(t, res.Answer, 1)
	assert.Equal(t, "TSLA", res.Answer[0].Symbol)
	assert.Equal(t, "US", res.Answer[0].Country)
	assert.Equal(t, "pass", res.Verdict)
	assert.Equal(t, []dto.CandidateResponse{{Ticker: "TSLA", Name: "Tesla", Confidence: "High"}}, res.Candidates)
	assert.Equal(t, []dto.DegradedLookupResponse{{Name: "Tesla", Lookup: "fulltext", Error: "timeout"}}, res.Degraded)

	require.Len(t, pub.events, 1)
	assert.Equal(t, res.RequestId.String(), pub.events[0].RequestID)
	assert.Equal(t, []string{"TSLA"}, pub.events[0].Symbols)
}

func TestTickerService_EmptyAnswerIsNotNil(t *testing.T) {
	result := tslaResult()
	result.Answer = nil
	result.Candidates = nil
	svc := NewTickerService(&fakeResolver{result: result}, nil, nil)

	res, err := svc.Resolve(context.Background(), &dto.TickerRequest{Query: "q", Market: "US", Language: "en"})
	require.NoError(t, err)
	assert.NotNil(t, res.Answer)
	assert.Empty(t, res.Answer)
}

func TestTickerService_PublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &fakePublisher{err: errors.New("bus down")}
	svc := NewTickerService(&fakeResolver{result: tslaResult()}, pub, nil)

	res, err := svc.Resolve(context.Background(), &dto.TickerRequest{Query: "q", Market: "US", Language: "en"})
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestTickerService_BadMarket(t *testing.T) {
	resolver := &fakeResolver{}
	svc := NewTickerService(resolver, nil, nil)

	_, err := svc.Resolve(context.Background(), &dto.TickerRequest{Query: "q", Market: "EU", Language: "en"})
	var pe *ticker.PipelineError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ticker.CodeInvalidInput, pe.Code)
	assert.Empty(t, resolver.got.Query)
}

func TestTickerService_PipelineErrorPassesThrough(t *testing.T) {
	want := &ticker.PipelineError{Stage: ticker.StageResolving, Code: ticker.CodeStoreUnavailable, Err: ticker.ErrStoreUnavailable}
	pub := &fakePublisher{}
	svc := NewTickerService(&fakeResolver{err: want}, pub, nil)

	_, err := svc.Resolve(context.Background(), &dto.TickerRequest{Query: "q", Market: "HK", Language: "en"})
	assert.Same(t, want, err)
	assert.Empty(t, pub.events)
}
