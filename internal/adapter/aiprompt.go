package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sashabaranov/go-openai"

	"scrollfeed/internal/resilience/circuitbreaker"
	"scrollfeed/internal/resilience/retry"
)

const promptSystemInstruction = "You write a single short, concrete, non-generic journaling prompt (one sentence, no preamble) given a reader's recent feed headlines for context."

// OpenAIPromptGenerator implements PromptGenerator over the OpenAI chat
// completions API: a one-shot call with no retained state, guarded by a
// circuit breaker and a bounded retry so a flaky API never stalls a
// batch for long.
type OpenAIPromptGenerator struct {
	client  *openai.Client
	model   string
	breaker *circuitbreaker.CircuitBreaker
}

// NewOpenAIPromptGenerator constructs an OpenAIPromptGenerator. model
// defaults to "gpt-4o-mini" when empty.
func NewOpenAIPromptGenerator(apiKey, model string) *OpenAIPromptGenerator {
	if model == "" {
		model = "gpt-4o-mini"
	}
	client := openai.NewClient(apiKey)
	return &OpenAIPromptGenerator{
		client:  client,
		model:   model,
		breaker: circuitbreaker.New(circuitbreaker.PromptAPIConfig("openai-prompt")),
	}
}

func (g *OpenAIPromptGenerator) GeneratePrompt(ctx context.Context, recentTitles []string) (string, error) {
	var prompt string
	err := retry.WithBackoff(ctx, retry.PromptAPIConfig(), func() error {
		raw, err := g.breaker.Execute(func() (interface{}, error) {
			resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
				Model: g.model,
				Messages: []openai.ChatCompletionMessage{
					{Role: openai.ChatMessageRoleSystem, Content: promptSystemInstruction},
					{Role: openai.ChatMessageRoleUser, Content: recentTitlesContext(recentTitles)},
				},
				MaxTokens: 80,
			})
			if err != nil {
				return nil, err
			}
			if len(resp.Choices) == 0 {
				return nil, fmt.Errorf("compassadapter: openai returned no choices")
			}
			return resp.Choices[0].Message.Content, nil
		})
		if err != nil {
			return err
		}
		prompt = raw.(string)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("compassadapter: openai prompt: %w", err)
	}
	return strings.TrimSpace(prompt), nil
}

// AnthropicPromptGenerator implements PromptGenerator over the Claude
// Messages API, as an alternative backend to OpenAIPromptGenerator;
// CompassAdapter is agnostic to which is configured.
type AnthropicPromptGenerator struct {
	client  anthropic.Client
	model   string
	breaker *circuitbreaker.CircuitBreaker
}

// NewAnthropicPromptGenerator constructs an AnthropicPromptGenerator.
// model defaults to anthropic.ModelClaudeSonnet4_5_20250929 when empty.
func NewAnthropicPromptGenerator(apiKey, model string) *AnthropicPromptGenerator {
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_5_20250929)
	}
	return &AnthropicPromptGenerator{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		breaker: circuitbreaker.New(circuitbreaker.PromptAPIConfig("claude-prompt")),
	}
}

func (g *AnthropicPromptGenerator) GeneratePrompt(ctx context.Context, recentTitles []string) (string, error) {
	prompt := promptSystemInstruction + "\n\n" + recentTitlesContext(recentTitles)

	var text string
	err := retry.WithBackoff(ctx, retry.PromptAPIConfig(), func() error {
		raw, err := g.breaker.Execute(func() (interface{}, error) {
			message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
				Model:     anthropic.Model(g.model),
				MaxTokens: 80,
				Messages: []anthropic.MessageParam{
					anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
				},
			})
			if err != nil {
				return nil, err
			}
			if len(message.Content) == 0 {
				return nil, fmt.Errorf("compassadapter: anthropic returned empty response")
			}
			textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
			if !ok {
				return nil, fmt.Errorf("compassadapter: anthropic returned unexpected response type")
			}
			return textBlock.Text, nil
		})
		if err != nil {
			return err
		}
		text = raw.(string)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("compassadapter: anthropic prompt: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func recentTitlesContext(recentTitles []string) string {
	if len(recentTitles) == 0 {
		return "No recent feed context available. Write a general-purpose reflective prompt."
	}
	return "Recent feed headlines:\n" + strings.Join(recentTitles, "\n")
}
