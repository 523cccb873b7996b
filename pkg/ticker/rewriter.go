package ticker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stock-ticker-be/pkg/llm"
	"stock-ticker-be/pkg/reasoning"
)

const rewriteName = "stock-ticker-rewrite-query"

type rewrite struct {
	Query string `json:"query" validate:"required"`
}

var rewriteSchema = llm.Schema{
	Name:        rewriteName,
	Description: "The rewritten user query",
	Definition: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "The user query",
			},
		},
		"required": []string{"query"},
	},
}

const rewriteInstructions = `Your task is to rewrite a user's stock query to explicitly emphasize their preferred exchange location.

CONTEXT:
The original query was processed but failed grading because the stocks found were not listed on the user's preferred exchange(s).
Reformulate the query to be more specific about the exchange requirements.

OUTPUT:
- Use English for the rewritten query.
- State clearly the company name and the stock symbol you are looking for.
- If the user's query is already in English, no translation is needed.`

const rewritePrompt = `- Original query: %s
- User's preferred market location: %s
- Resolved stocks: %s`

// Rewriter restates a failing query with the market spelled out.
type Rewriter struct {
	capability reasoning.Capability
	timeout    time.Duration
}

func NewRewriter(capability reasoning.Capability, timeout time.Duration) *Rewriter {
	return &Rewriter{capability: capability, timeout: timeout}
}

func (r *Rewriter) Rewrite(ctx context.Context, qc QueryContext, answer []CatalogRecord) (string, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	req := reasoning.Request{
		Name:         rewriteName,
		Instructions: rewriteInstructions,
		Prompt:       fmt.Sprintf(rewritePrompt, qc.Query, qc.Market, answerJSON(answer)),
		Schema:       rewriteSchema,
	}

	start := time.Now()
	out, err := reasoning.Call[rewrite](ctx, r.capability, req)
	reasoningCallSeconds.WithLabelValues("rewrite").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}

	query := strings.TrimSpace(out.Query)
	if query == "" {
		return "", fmt.Errorf("%w: %s: blank query", reasoning.ErrSchemaViolation, rewriteName)
	}
	return query, nil
}
