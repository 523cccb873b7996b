// Package ticker resolves free-text stock questions into catalog records.
//
// One request runs a bounded loop: Extract candidates from the query,
// Resolve them against the catalog, Grade the answer, and on a failing
// grade Rewrite the query and go around again.
package ticker

import (
	"fmt"
	"strings"
)

// Market is the user's preferred listing region. Catalog records carry the
// same values as their country.
type Market string

const (
	MarketUS     Market = "US"
	MarketHK     Market = "HK"
	MarketCN     Market = "CN"
	MarketGlobal Market = "GLOBAL"
)

var markets = []Market{MarketUS, MarketHK, MarketCN, MarketGlobal}

// ParseMarket accepts any casing ("us", "Global").
func ParseMarket(s string) (Market, error) {
	m := Market(strings.ToUpper(strings.TrimSpace(s)))
	if m.Valid() {
		return m, nil
	}
	return "", fmt.Errorf("unknown market %q (want one of US, HK, CN, GLOBAL)", s)
}

func (m Market) Valid() bool {
	for _, known := range markets {
		if m == known {
			return true
		}
	}
	return false
}

func (m Market) String() string { return string(m) }

// Confidence is the extractor's own certainty about a candidate.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Candidate is an unresolved company mention. Both fields may be empty,
// which means the text named no identifiable company.
type Candidate struct {
	Ticker     string     `json:"ticker,omitempty"`
	Name       string     `json:"name,omitempty"`
	Confidence Confidence `json:"confidence,omitempty"`
}

func (c Candidate) String() string {
	return fmt.Sprintf("{ticker:%q name:%q}", c.Ticker, c.Name)
}

// CatalogRecord is one tradable instrument as stored in the catalog.
type CatalogRecord struct {
	ID                string   `json:"id"`
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Price             *float64 `json:"price"`
	Exchange          string   `json:"exchange"`
	ExchangeShortName string   `json:"exchangeShortName"`
	Type              string   `json:"type"`
	Country           Market   `json:"country"`
}

// QueryContext is the immutable input of one cycle.
type QueryContext struct {
	Query    string `json:"query"`
	Market   Market `json:"market"`
	Language string `json:"language"`
}

// WithQuery returns a copy with Query replaced; Market and Language carry over.
func (q QueryContext) WithQuery(query string) QueryContext {
	q.Query = query
	return q
}

func (q QueryContext) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("query is required")
	}
	if !q.Market.Valid() {
		return fmt.Errorf("invalid market %q", q.Market)
	}
	if strings.TrimSpace(q.Language) == "" {
		return fmt.Errorf("language is required")
	}
	return nil
}

type Verdict string

const (
	VerdictPass Verdict = "pass"
	VerdictFail Verdict = "fail"
)

// Stage is a state of the resolution state machine.
type Stage int

const (
	StageExtracting Stage = iota
	StageResolving
	StageGrading
	StageRewriting
	StageTerminated
)

func (s Stage) String() string {
	switch s {
	case StageExtracting:
		return "extracting"
	case StageResolving:
		return "resolving"
	case StageGrading:
		return "grading"
	case StageRewriting:
		return "rewriting"
	case StageTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// PipelineState is everything one request threads through its cycles.
// It is created per request and never shared.
type PipelineState struct {
	Stage      Stage
	Cycle      int
	Context    QueryContext
	Candidates []Candidate
	Answer     []CatalogRecord
	Verdict    Verdict
	Degraded   []CandidateFailure
}
