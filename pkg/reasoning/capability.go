// Package reasoning wraps a language model behind a schema-checked call:
// a request names the JSON shape it expects and the answer is decoded and
// validated before any caller sees it.
package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"stock-ticker-be/pkg/llm"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrSchemaViolation means the model answered, but not in the requested shape.
	ErrSchemaViolation = errors.New("reasoning: response violates schema")
	// ErrCallFailed means no usable answer came back (transport error, timeout, empty reply).
	ErrCallFailed = errors.New("reasoning: call failed")
)

// Example is one worked input/output pair shown to the model before the real input.
type Example struct {
	Input  string
	Output interface{}
}

// Request is one structured call.
type Request struct {
	Name         string // tool/schema name, e.g. "stock-ticker-extraction"
	Instructions string // system prompt
	Prompt       string // the user turn
	Schema       llm.Schema
	Examples     []Example
}

// Capability answers a Request with raw JSON matching Request.Schema.
type Capability interface {
	Invoke(ctx context.Context, req Request) (json.RawMessage, error)
}

var validate = validator.New()

// Call invokes c and decodes the answer into T. T's `validate` tags are
// enforced; any decode or validation failure is an ErrSchemaViolation.
func Call[T any](ctx context.Context, c Capability, req Request) (*T, error) {
	raw, err := c.Invoke(ctx, req)
	if err != nil {
		if errors.Is(err, ErrSchemaViolation) || errors.Is(err, ErrCallFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrCallFailed, req.Name, err)
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: decode: %v", ErrSchemaViolation, req.Name, err)
	}
	if err := validate.Struct(&out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaViolation, req.Name, err)
	}
	return &out, nil
}
