package agent

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// maxToolRounds bounds the tool-call loop so a confused model cannot spin.
const maxToolRounds = 4

// Agent runs a chat turn against the hosted model, executing registered
// tools until the model produces a final text answer.
type Agent struct {
	llm    llms.Model
	system string
	tools  []Tool
}

func New(llm llms.Model, systemPrompt string, tools []Tool) *Agent {
	return &Agent{llm: llm, system: systemPrompt, tools: tools}
}

// StreamFunc receives plain-text chunks of the final answer as they arrive.
type StreamFunc func(ctx context.Context, chunk []byte) error

// Run executes one turn. History is the prior conversation (user/assistant
// alternating); input is the new user message. The final answer is both
// streamed through onChunk and returned whole for persistence.
func (a *Agent) Run(ctx context.Context, history []llms.MessageContent, input string, onChunk StreamFunc) (string, error) {
	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, a.system))
	messages = append(messages, history...)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, input))

	defs := make([]llms.Tool, 0, len(a.tools))
	byName := make(map[string]Tool, len(a.tools))
	for _, t := range a.tools {
		defs = append(defs, t.Definition())
		byName[t.Name()] = t
	}

	var final string
	for round := 0; round <= maxToolRounds; round++ {
		opts := []llms.CallOption{}
		if len(defs) > 0 {
			opts = append(opts, llms.WithTools(defs))
		}
		if onChunk != nil {
			opts = append(opts, llms.WithStreamingFunc(onChunk))
		}

		resp, err := a.llm.GenerateContent(ctx, messages, opts...)
		if err != nil {
			return "", fmt.Errorf("model call failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("model returned no choices")
		}
		choice := resp.Choices[0]

		if len(choice.ToolCalls) == 0 {
			final = choice.Content
			break
		}

		// Echo the assistant's tool-call message back, then answer each call.
		assistantParts := make([]llms.ContentPart, 0, len(choice.ToolCalls))
		for _, tc := range choice.ToolCalls {
			assistantParts = append(assistantParts, tc)
		}
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeAI,
			Parts: assistantParts,
		})

		for _, tc := range choice.ToolCalls {
			tool, ok := byName[tc.FunctionCall.Name]
			var content string
			if !ok {
				content = fmt.Sprintf("unknown tool %q", tc.FunctionCall.Name)
			} else {
				out, err := tool.Call(ctx, tc.FunctionCall.Arguments)
				if err != nil {
					// Tool failures go back to the model as text so it can
					// recover or apologize instead of killing the stream.
					content = fmt.Sprintf("tool error: %v", err)
				} else {
					content = out
				}
			}

			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: tc.ID,
					Name:       tc.FunctionCall.Name,
					Content:    content,
				}},
			})
		}
	}

	if final == "" {
		return "", fmt.Errorf("model did not produce an answer within %d tool rounds", maxToolRounds)
	}
	return final, nil
}
