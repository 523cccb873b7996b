package openai

import (
	"context"
	"fmt"
	"math"

	"stock-ticker-be/pkg/llm"

	"github.com/google/uuid"
	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to the Chat Completions API. When a schema is supplied the
// model is forced to call a single function whose parameters are that schema, and
// the call arguments are returned as the reply.
type OpenAIProvider struct {
	client *goopenai.Client
	model  string
}

var _ llm.LLMProvider = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIProvider{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{Model: p.model, Temperature: 0.7}, options...)

	req := goopenai.ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    toMessages(history, opts.Schema),
		Temperature: float32(opts.Temperature),
	}
	// go-openai drops a zero temperature from the payload.
	if opts.Temperature == 0 {
		req.Temperature = math.SmallestNonzeroFloat32
	}
	if opts.MaxTokens > 0 {
		req.MaxCompletionTokens = opts.MaxTokens
	}
	if opts.Schema != nil {
		req.Tools = []goopenai.Tool{{
			Type: goopenai.ToolTypeFunction,
			Function: &goopenai.FunctionDefinition{
				Name:        opts.Schema.Name,
				Description: opts.Schema.Description,
				Parameters:  opts.Schema.Definition,
			},
		}}
		req.ToolChoice = goopenai.ToolChoice{
			Type:     goopenai.ToolTypeFunction,
			Function: goopenai.ToolFunction{Name: opts.Schema.Name},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	msg := resp.Choices[0].Message
	if opts.Schema != nil {
		for _, call := range msg.ToolCalls {
			if call.Function.Name == opts.Schema.Name {
				return call.Function.Arguments, nil
			}
		}
	}
	return msg.Content, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

// toMessages maps history to the wire format. With a schema, assistant turns are
// worked examples: each becomes a tool call carrying the JSON plus the tool result
// acknowledging it, so the model sees the exact call shape it must reproduce.
func toMessages(history []llm.Message, schema *llm.Schema) []goopenai.ChatCompletionMessage {
	out := make([]goopenai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		if schema == nil || m.Role != llm.RoleAssistant {
			out = append(out, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
			continue
		}

		callID := "call_" + uuid.NewString()
		out = append(out,
			goopenai.ChatCompletionMessage{
				Role: goopenai.ChatMessageRoleAssistant,
				ToolCalls: []goopenai.ToolCall{{
					ID:   callID,
					Type: goopenai.ToolTypeFunction,
					Function: goopenai.FunctionCall{
						Name:      schema.Name,
						Arguments: m.Content,
					},
				}},
			},
			goopenai.ChatCompletionMessage{
				Role:       goopenai.ChatMessageRoleTool,
				Content:    "You have correctly called this tool.",
				ToolCallID: callID,
			},
		)
	}
	return out
}
