package reasoning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"stock-ticker-be/pkg/llm"
)

// LLMCapability drives an llm.LLMProvider. Providers that understand
// llm.WithSchema constrain generation natively; for the rest the schema is
// also spelled out in the system prompt and the JSON object is cut out of
// whatever text comes back.
type LLMCapability struct {
	provider llm.LLMProvider
}

var _ Capability = (*LLMCapability)(nil)

func NewLLMCapability(provider llm.LLMProvider) *LLMCapability {
	return &LLMCapability{provider: provider}
}

func (c *LLMCapability) Invoke(ctx context.Context, req Request) (json.RawMessage, error) {
	messages, err := BuildMessages(req)
	if err != nil {
		return nil, err
	}

	schema := req.Schema
	if schema.Name == "" {
		schema.Name = req.Name
	}

	reply, err := c.provider.Chat(ctx, messages, llm.WithTemperature(0), llm.WithSchema(&schema))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCallFailed, req.Name, err)
	}

	body := extractJSON(reply)
	if body == "" {
		return nil, fmt.Errorf("%w: %s: no JSON object in reply", ErrSchemaViolation, req.Name)
	}
	return json.RawMessage(body), nil
}

// BuildMessages lays out system instructions, the worked examples as
// user/assistant turns, then the real prompt.
func BuildMessages(req Request) ([]llm.Message, error) {
	schemaDoc, err := json.Marshal(req.Schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", req.Name, err)
	}

	var system strings.Builder
	system.WriteString(strings.TrimSpace(req.Instructions))
	system.WriteString("\n\n<output_format>\n")
	system.WriteString("Respond with ONLY a JSON object matching this schema:\n")
	system.Write(schemaDoc)
	system.WriteString("\n</output_format>")

	messages := make([]llm.Message, 0, 2+2*len(req.Examples))
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system.String()})

	for _, ex := range req.Examples {
		out, err := json.Marshal(ex.Output)
		if err != nil {
			return nil, fmt.Errorf("marshal example for %s: %w", req.Name, err)
		}
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: ex.Input},
			llm.Message{Role: llm.RoleAssistant, Content: string(out)},
		)
	}

	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: req.Prompt})
	return messages, nil
}

func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}
