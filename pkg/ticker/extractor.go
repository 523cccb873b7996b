package ticker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stock-ticker-be/pkg/llm"
	"stock-ticker-be/pkg/reasoning"
)

const extractionName = "stock-ticker-extraction"

type extraction struct {
	Stocks []extractedStock `json:"stocks" validate:"required"`
}

type extractedStock struct {
	Ticker     *string `json:"ticker"`
	Name       *string `json:"name"`
	Confidence *string `json:"confidence"`
}

var extractionSchema = llm.Schema{
	Name:        extractionName,
	Description: "The list of stocks extracted from the user query",
	Definition: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"stocks": map[string]interface{}{
				"type":        "array",
				"description": "The list of stocks extracted from the user query",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"ticker": map[string]interface{}{
							"type":        []string{"string", "null"},
							"description": "The ticker symbol of the stock, null when unsure",
						},
						"name": map[string]interface{}{
							"type":        []string{"string", "null"},
							"description": "The name of the company the stock belongs to",
						},
						"confidence": map[string]interface{}{
							"type":        []string{"string", "null"},
							"enum":        []interface{}{"High", "Medium", "Low", nil},
							"description": "The confidence level of the prediction",
						},
					},
				},
			},
		},
		"required": []string{"stocks"},
	},
}

const extractionInstructions = `You are a financial expert assistant that identifies stock symbols in user queries.

1. TRANSLATION
  - If the query is not in English, translate it to English before doing anything else.

2. COMPANY NAME
  - Keep only the words that name the company.
  - Drop generic financial words such as "stock", "share", "price", "value", "company", "corporation".
  - "Tesla stock price" names "Tesla". "Meta Platforms Inc share value" names "Meta Platforms".
  - For an unfamiliar company, keep the part that reads as a proper name.

3. SYMBOL
  - A symbol written in the query (like "AAPL") wins over one you infer.
  - Otherwise infer the symbol from the company name.
  - If you are not sure of the exact symbol, return null for it. Never guess.

4. MARKET PREFERENCE
%s

Query: %s
User's Market Preference: %s
User's Language Preference: %s`

func marketHint(m Market) string {
	switch m {
	case MarketUS:
		return "  - US: prefer NYSE/NASDAQ symbols."
	case MarketHK:
		return "  - HK: prefer Hong Kong exchange symbols."
	case MarketCN:
		return "  - CN: prefer China A-share symbols."
	default:
		return "  - GLOBAL: choose the most liquid or most relevant listing."
	}
}

// Extractor turns a query into candidate company mentions.
type Extractor struct {
	capability reasoning.Capability
	timeout    time.Duration
}

func NewExtractor(capability reasoning.Capability, timeout time.Duration) *Extractor {
	return &Extractor{capability: capability, timeout: timeout}
}

func (e *Extractor) request(qc QueryContext) reasoning.Request {
	return reasoning.Request{
		Name:         extractionName,
		Instructions: fmt.Sprintf(extractionInstructions, marketHint(qc.Market), qc.Query, qc.Market, qc.Language),
		Prompt:       qc.Query,
		Schema:       extractionSchema,
		Examples:     extractionExamples,
	}
}

func (e *Extractor) Extract(ctx context.Context, qc QueryContext) ([]Candidate, error) {
	ctx, cancel := withTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	out, err := reasoning.Call[extraction](ctx, e.capability, e.request(qc))
	reasoningCallSeconds.WithLabelValues("extract").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(out.Stocks))
	for _, s := range out.Stocks {
		c, err := s.candidate()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", reasoning.ErrSchemaViolation, extractionName, err)
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func (s extractedStock) candidate() (Candidate, error) {
	var c Candidate
	if s.Ticker != nil {
		c.Ticker = strings.TrimSpace(*s.Ticker)
	}
	if s.Name != nil {
		c.Name = strings.TrimSpace(*s.Name)
	}
	if s.Confidence != nil && strings.TrimSpace(*s.Confidence) != "" {
		conf, err := parseConfidence(*s.Confidence)
		if err != nil {
			return Candidate{}, err
		}
		c.Confidence = conf
	}
	return c, nil
}

func parseConfidence(s string) (Confidence, error) {
	for _, c := range []Confidence{ConfidenceHigh, ConfidenceMedium, ConfidenceLow} {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("confidence %q is not one of High, Medium, Low", s)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
