// FILE: internal/dto/ticker_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

// TickerRequest is bound from the query string of GET /api/ticker.
type TickerRequest struct {
	Query    string `query:"query" json:"query" validate:"required,max=500"`
	Market   string `query:"market" json:"market" validate:"required,market"`
	Language string `query:"language" json:"language" validate:"required,max=35"`
}

type StockResponse struct {
	Id                string   `json:"id"`
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Price             *float64 `json:"price"`
	Exchange          string   `json:"exchange"`
	ExchangeShortName string   `json:"exchangeShortName"`
	Type              string   `json:"type"`
	Country           string   `json:"country"`
}

type CandidateResponse struct {
	Ticker     string `json:"ticker,omitempty"`
	Name       string `json:"name,omitempty"`
	Confidence string `json:"confidence,omitempty"`
}

type DegradedLookupResponse struct {
	Ticker string `json:"ticker,omitempty"`
	Name   string `json:"name,omitempty"`
	Lookup string `json:"lookup"` // exact, fuzzy, fulltext
	Error  string `json:"error"`
}

type TickerResponse struct {
	RequestId     uuid.UUID                `json:"requestId"`
	Query         string                   `json:"query"`
	FinalQuery    string                   `json:"finalQuery"`
	Market        string                   `json:"market"`
	Language      string                   `json:"language"`
	Answer        []StockResponse          `json:"answer"`
	Candidates    []CandidateResponse      `json:"candidates"`
	Cycles        int                      `json:"cycles"`
	Verdict       string                   `json:"verdict,omitempty"`
	LowConfidence bool                     `json:"lowConfidence"`
	TimedOut      bool                     `json:"timedOut"`
	Degraded      []DegradedLookupResponse `json:"degraded,omitempty"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// ExchangeListRequest is bound from the query string of GET /api/exchanges.
type ExchangeListRequest struct {
	Country string `query:"country" json:"country" validate:"omitempty,market"`
	Limit   int    `query:"limit" json:"limit" validate:"omitempty,min=1,max=500"`
	Offset  int    `query:"offset" json:"offset" validate:"omitempty,min=0"`
}

// ExchangeStocksRequest is bound from the query string of
// GET /api/exchanges/:shortName/stocks.
type ExchangeStocksRequest struct {
	Limit int `query:"limit" json:"limit" validate:"omitempty,min=1,max=500"`
}

type ExchangeResponse struct {
	ShortName       string                 `json:"shortName"`
	Country         string                 `json:"country"`
	Source          string                 `json:"source"`
	Evidence        map[string]interface{} `json:"evidence,omitempty"`
	InstrumentCount int                    `json:"instrumentCount"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}
