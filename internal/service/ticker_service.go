// FILE: internal/service/ticker_service.go
package service

import (
	"context"
	"strings"
	"time"

	"stock-ticker-be/internal/dto"
	"stock-ticker-be/internal/pkg/logger"
	"stock-ticker-be/pkg/events"
	"stock-ticker-be/pkg/ticker"

	"github.com/google/uuid"
)

// Resolver runs one resolution; *ticker.Pipeline implements it.
type Resolver interface {
	Run(ctx context.Context, qc ticker.QueryContext) (*ticker.Result, error)
}

type ITickerService interface {
	Resolve(ctx context.Context, req *dto.TickerRequest) (*dto.TickerResponse, error)
}

type tickerService struct {
	pipeline  Resolver
	publisher IPublisherService
	logger    logger.ILogger
}

func NewTickerService(pipeline Resolver, publisher IPublisherService, log logger.ILogger) ITickerService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &tickerService{
		pipeline:  pipeline,
		publisher: publisher,
		logger:    log,
	}
}

func (s *tickerService) Resolve(ctx context.Context, req *dto.TickerRequest) (*dto.TickerResponse, error) {
	market, err := ticker.ParseMarket(req.Market)
	if err != nil {
		return nil, &ticker.PipelineError{Stage: ticker.StageExtracting, Code: ticker.CodeInvalidInput, Err: err}
	}

	requestId := uuid.New()
	qc := ticker.QueryContext{
		Query:    strings.TrimSpace(req.Query),
		Market:   market,
		Language: strings.TrimSpace(req.Language),
	}

	res, err := s.pipeline.Run(ctx, qc)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ticker.service", "Query resolved", map[string]interface{}{
		"requestId":     requestId.String(),
		"query":         qc.Query,
		"market":        market.String(),
		"answers":       len(res.Answer),
		"cycles":        res.Cycles,
		"lowConfidence": res.LowConfidence,
		"timedOut":      res.TimedOut,
	})

	s.publish(ctx, requestId, res)
	return toTickerResponse(requestId, res), nil
}

// publish never fails the request.
func (s *tickerService) publish(ctx context.Context, requestId uuid.UUID, res *ticker.Result) {
	if s.publisher == nil {
		return
	}
	symbols := make([]string, 0, len(res.Answer))
	for _, r := range res.Answer {
		symbols = append(symbols, r.Symbol)
	}
	event := events.TickerResolved{
		RequestID:     requestId.String(),
		Query:         res.Query,
		FinalQuery:    res.FinalQuery,
		Market:        res.Market.String(),
		Language:      res.Language,
		Symbols:       symbols,
		Cycles:        res.Cycles,
		LowConfidence: res.LowConfidence,
		TimedOut:      res.TimedOut,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.publisher.PublishTickerResolved(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("ticker.service", "Failed to publish resolution event", map[string]interface{}{
			"requestId": requestId.String(),
			"error":     err.Error(),
		})
	}
}

func toTickerResponse(requestId uuid.UUID, res *ticker.Result) *dto.TickerResponse {
	out := &dto.TickerResponse{
		RequestId:     requestId,
		Query:         res.Query,
		FinalQuery:    res.FinalQuery,
		Market:        res.Market.String(),
		Language:      res.Language,
		Answer:        make([]dto.StockResponse, 0, len(res.Answer)),
		Candidates:    make([]dto.CandidateResponse, 0, len(res.Candidates)),
		Cycles:        res.Cycles,
		Verdict:       string(res.Verdict),
		LowConfidence: res.LowConfidence,
		TimedOut:      res.TimedOut,
	}
	for _, r := range res.Answer {
		out.Answer = append(out.Answer, dto.StockResponse{
			Id:                r.ID,
			Symbol:            r.Symbol,
			Name:              r.Name,
			Price:             r.Price,
			Exchange:          r.Exchange,
			ExchangeShortName: r.ExchangeShortName,
			Type:              r.Type,
			Country:           r.Country.String(),
		})
	}
	for _, c := range res.Candidates {
		out.Candidates = append(out.Candidates, dto.CandidateResponse{
			Ticker:     c.Ticker,
			Name:       c.Name,
			Confidence: string(c.Confidence),
		})
	}
	for _, d := range res.Degraded {
		out.Degraded = append(out.Degraded, dto.DegradedLookupResponse{
			Ticker: d.Candidate.Ticker,
			Name:   d.Candidate.Name,
			Lookup: d.Lookup,
			Error:  d.Error,
		})
	}
	return out
}
