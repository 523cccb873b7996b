package ticker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stock-ticker-be/pkg/llm"
	"stock-ticker-be/pkg/reasoning"
)

const gradingName = "stock-ticker-grader"

type grading struct {
	Score Verdict `json:"score" validate:"required,oneof=pass fail"`
}

var gradingSchema = llm.Schema{
	Name:        gradingName,
	Description: "Grade the relevance of the resolved stocks to the question, either 'pass' or 'fail'.",
	Definition: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"score": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"pass", "fail"},
				"description": "Relevance score 'pass' or 'fail'",
			},
		},
		"required": []string{"score"},
	},
}

const gradingInstructions = `You are a grader assessing the relevance of resolved stocks to a user question.

If the list of stocks holds a stock related to the user query, and its exchange is in the user's preferred market location, grade it as pass.
Give a binary score 'pass' or 'fail' to indicate whether the stocks answer the question.`

const gradingPrompt = `Here are the resolved stocks: %s

Here is the user query: %s, the market preference: %s`

// Grader decides whether an answer is good enough to return.
type Grader struct {
	capability reasoning.Capability
	timeout    time.Duration
}

func NewGrader(capability reasoning.Capability, timeout time.Duration) *Grader {
	return &Grader{capability: capability, timeout: timeout}
}

func (g *Grader) Grade(ctx context.Context, qc QueryContext, answer []CatalogRecord) (Verdict, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	req := reasoning.Request{
		Name:         gradingName,
		Instructions: gradingInstructions,
		Prompt:       fmt.Sprintf(gradingPrompt, answerJSON(answer), qc.Query, qc.Market),
		Schema:       gradingSchema,
	}

	start := time.Now()
	out, err := reasoning.Call[grading](ctx, g.capability, req)
	reasoningCallSeconds.WithLabelValues("grade").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}
	return out.Score, nil
}

func answerJSON(answer []CatalogRecord) string {
	if len(answer) == 0 {
		return "[]"
	}
	b, err := json.Marshal(answer)
	if err != nil {
		return "[]"
	}
	return string(b)
}
