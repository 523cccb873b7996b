package ticker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"stock-ticker-be/pkg/reasoning"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var usQuery = QueryContext{Query: "Tesla stock price", Market: MarketUS, Language: "en"}

func TestExtractor_Extract(t *testing.T) {
	capability := newScripted(map[string][]string{
		extractionName: {`{"stocks":[
			{"ticker":" TSLA ","name":"Tesla","confidence":"high"},
			{"ticker":null,"name":"Canadian Utilities","confidence":"Low"},
			{"ticker":null,"name":null,"confidence":null}
		]}`},
	})
	e := NewExtractor(capability, time.Second)

	got, err := e.Extract(context.Background(), usQuery)
	require.NoError(t, err)
	assert.Equal(t, []Candidate{
		{Ticker: "TSLA", Name: "Tesla", Confidence: ConfidenceHigh},
		{Name: "Canadian Utilities", Confidence: ConfidenceLow},
		{},
	}, got)
}

func TestExtractor_EmptyList(t *testing.T) {
	capability := newScripted(map[string][]string{extractionName: {`{"stocks":[]}`}})
	e := NewExtractor(capability, time.Second)

	got, err := e.Extract(context.Background(), usQuery)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExtractor_SchemaViolations(t *testing.T) {
	tests := map[string]string{
		"missing stocks":     `{"companies":[]}`,
		"unknown confidence": `{"stocks":[{"ticker":"TSLA","confidence":"Certain"}]}`,
		"wrong type":         `{"stocks":"TSLA"}`,
	}
	for name, reply := range tests {
		t.Run(name, func(t *testing.T) {
			e := NewExtractor(newScripted(map[string][]string{extractionName: {reply}}), time.Second)
			_, err := e.Extract(context.Background(), usQuery)
			require.ErrorIs(t, err, reasoning.ErrSchemaViolation)
		})
	}
}

func TestExtractor_RequestShape(t *testing.T) {
	capability := newScripted(map[string][]string{extractionName: {`{"stocks":[]}`}})
	e := NewExtractor(capability, time.Second)

	qc := QueryContext{Query: "茅台股票", Market: MarketCN, Language: "zh-CN"}
	_, err := e.Extract(context.Background(), qc)
	require.NoError(t, err)

	reqs := capability.Requests(extractionName)
	require.Len(t, reqs, 1)
	req := reqs[0]
	assert.Equal(t, "茅台股票", req.Prompt)
	assert.Contains(t, req.Instructions, "CN: prefer China A-share symbols.")
	assert.Contains(t, req.Instructions, "User's Language Preference: zh-CN")
	assert.Len(t, req.Examples, len(extractionExamples))
	assert.Equal(t, extractionName, req.Schema.Name)
}

func TestExtractionExamplesRoundTrip(t *testing.T) {
	for _, ex := range extractionExamples {
		raw, err := json.Marshal(ex.Output)
		require.NoError(t, err)

		var back extraction
		require.NoError(t, json.Unmarshal(raw, &back), ex.Input)
		for _, s := range back.Stocks {
			_, err := s.candidate()
			assert.NoError(t, err, ex.Input)
		}
	}
}

func TestGrader_Grade(t *testing.T) {
	capability := newScripted(map[string][]string{gradingName: {`{"score":"fail"}`}})
	g := NewGrader(capability, time.Second)

	answer := []CatalogRecord{{ID: "1", Symbol: "TSLA", Country: MarketUS}}
	v, err := g.Grade(context.Background(), usQuery, answer)
	require.NoError(t, err)
	assert.Equal(t, VerdictFail, v)

	req := capability.Requests(gradingName)[0]
	assert.Contains(t, req.Prompt, `"symbol":"TSLA"`)
	assert.Contains(t, req.Prompt, "the market preference: US")
}

func TestGrader_RejectsNonBinaryScore(t *testing.T) {
	g := NewGrader(newScripted(map[string][]string{gradingName: {`{"score":"maybe"}`}}), time.Second)
	_, err := g.Grade(context.Background(), usQuery, nil)
	require.ErrorIs(t, err, reasoning.ErrSchemaViolation)
}

func TestRewriter_Rewrite(t *testing.T) {
	capability := newScripted(map[string][]string{rewriteName: {`{"query":"  Kweichow Moutai 600519 on the Shanghai exchange  "}`}})
	r := NewRewriter(capability, time.Second)

	q, err := r.Rewrite(context.Background(), QueryContext{Query: "茅台股票", Market: MarketCN, Language: "zh"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Kweichow Moutai 600519 on the Shanghai exchange", q)
	assert.Contains(t, capability.Requests(rewriteName)[0].Prompt, "Resolved stocks: []")
}

func TestRewriter_BlankQuery(t *testing.T) {
	for _, reply := range []string{`{"query":""}`, `{"query":"   "}`, `{}`} {
		r := NewRewriter(newScripted(map[string][]string{rewriteName: {reply}}), time.Second)
		_, err := r.Rewrite(context.Background(), usQuery, nil)
		require.ErrorIs(t, err, reasoning.ErrSchemaViolation, reply)
	}
}
