package instructions

import (
	"context"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"

	"github.com/duragraph/mdf/internal/mdf"
)

// Prompt is the token an LLM completion node consumes. Nodes built here are
// arity-1 so they compose anywhere in a chain via Instr1; callers needing
// multi-turn history should pre-render it into UserTurn themselves.
type Prompt struct {
	Model     string
	System    string
	UserTurn  string
	MaxTokens int
}

// Completion is an LLM node's output token.
type Completion struct {
	Text  string
	Model string
}

// AnthropicComplete builds a node that completes Prompt via the Anthropic
// Messages API. Instruction.Execute carries no context.Context (instruction
// bodies are modeled as CPU-bound leaves), so each call
// derives its own bounded one from requestTimeout rather than inheriting
// the caller's.
func AnthropicComplete(client *anthropic.Client, requestTimeout time.Duration) mdf.Instruction {
	fn := func(p Prompt) Completion {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		params := anthropic.MessageNewParams{
			Model: anthropic.F(anthropic.Model(p.Model)),
			Messages: anthropic.F([]anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(p.UserTurn)),
			}),
			MaxTokens: anthropic.F(int64(p.MaxTokens)),
		}
		if p.System != "" {
			params.System = anthropic.F([]anthropic.TextBlockParam{anthropic.NewTextBlock(p.System)})
		}

		msg, err := client.Messages.New(ctx, params)
		if err != nil {
			return Completion{Text: "error: " + err.Error(), Model: p.Model}
		}

		var text string
		for _, block := range msg.Content {
			if block.Type == anthropic.ContentBlockTypeText {
				text += block.Text
			}
		}
		return Completion{Text: text, Model: string(msg.Model)}
	}
	return mdf.Instr1(fn, mdf.Param[Prompt]("prompt"))
}

// OpenAIComplete builds the OpenAI-backed equivalent of AnthropicComplete.
func OpenAIComplete(client *openai.Client, requestTimeout time.Duration) mdf.Instruction {
	fn := func(p Prompt) Completion {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var messages []openai.ChatCompletionMessage
		if p.System != "" {
			messages = append(messages, openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleSystem, Content: p.System,
			})
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser, Content: p.UserTurn,
		})

		resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:     p.Model,
			Messages:  messages,
			MaxTokens: p.MaxTokens,
		})
		if err != nil {
			return Completion{Text: "error: " + err.Error(), Model: p.Model}
		}
		if len(resp.Choices) == 0 {
			return Completion{Model: resp.Model}
		}
		return Completion{Text: resp.Choices[0].Message.Content, Model: resp.Model}
	}
	return mdf.Instr1(fn, mdf.Param[Prompt]("prompt"))
}
