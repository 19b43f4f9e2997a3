package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

// fakeModel replays scripted responses, recording the messages it saw.
type fakeModel struct {
	responses []*llms.ContentResponse
	calls     int
	seen      [][]llms.MessageContent
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, opts ...llms.CallOption) (*llms.ContentResponse, error) {
	f.seen = append(f.seen, messages)
	resp := f.responses[f.calls]
	f.calls++
	return resp, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	return "", nil
}

type echoTool struct {
	lastInput string
}

func (t *echoTool) Name() string { return "echo" }

func (t *echoTool) Definition() llms.Tool {
	return llms.Tool{Type: "function", Function: &llms.FunctionDefinition{Name: "echo"}}
}

func (t *echoTool) Call(ctx context.Context, input string) (string, error) {
	t.lastInput = input
	return "echoed:" + input, nil
}

func textResponse(s string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: s}}}
}

func toolCallResponse(name, args string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{
		ToolCalls: []llms.ToolCall{{
			ID:           "call-1",
			Type:         "function",
			FunctionCall: &llms.FunctionCall{Name: name, Arguments: args},
		}},
	}}}
}

func TestRunPlainAnswer(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{textResponse("hello")}}
	a := New(model, "system prompt", nil)

	answer, err := a.Run(context.Background(), nil, "hi", nil)
	if err != nil {
		t.Fatal(err)
	}
	if answer != "hello" {
		t.Fatalf("answer = %q", answer)
	}

	first := model.seen[0]
	if first[0].Role != llms.ChatMessageTypeSystem {
		t.Error("system prompt should lead the conversation")
	}
	if first[len(first)-1].Role != llms.ChatMessageTypeHuman {
		t.Error("user input should be the last message")
	}
}

func TestRunExecutesToolThenAnswers(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResponse("echo", `{"q":"grants"}`),
		textResponse("done"),
	}}
	tool := &echoTool{}
	a := New(model, "sys", []Tool{tool})

	answer, err := a.Run(context.Background(), nil, "find grants", nil)
	if err != nil {
		t.Fatal(err)
	}
	if answer != "done" {
		t.Fatalf("answer = %q", answer)
	}
	if tool.lastInput != `{"q":"grants"}` {
		t.Fatalf("tool input = %q", tool.lastInput)
	}

	// Second round must carry the tool exchange back to the model.
	second := model.seen[1]
	var sawToolResponse bool
	for _, m := range second {
		if m.Role == llms.ChatMessageTypeTool {
			for _, part := range m.Parts {
				if tr, ok := part.(llms.ToolCallResponse); ok && strings.Contains(tr.Content, "echoed:") {
					sawToolResponse = true
				}
			}
		}
	}
	if !sawToolResponse {
		t.Error("tool result was not fed back to the model")
	}
}

func TestRunUnknownToolReportedToModel(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResponse("missing", `{}`),
		textResponse("recovered"),
	}}
	a := New(model, "sys", []Tool{&echoTool{}})

	answer, err := a.Run(context.Background(), nil, "hi", nil)
	if err != nil {
		t.Fatal(err)
	}
	if answer != "recovered" {
		t.Fatalf("answer = %q", answer)
	}

	second := model.seen[1]
	var sawError bool
	for _, m := range second {
		for _, part := range m.Parts {
			if tr, ok := part.(llms.ToolCallResponse); ok && strings.Contains(tr.Content, "unknown tool") {
				sawError = true
			}
		}
	}
	if !sawError {
		t.Error("unknown tool should be reported back to the model")
	}
}

func TestRunStopsAfterMaxRounds(t *testing.T) {
	responses := make([]*llms.ContentResponse, 0, maxToolRounds+1)
	for i := 0; i <= maxToolRounds; i++ {
		responses = append(responses, toolCallResponse("echo", `{}`))
	}
	model := &fakeModel{responses: responses}
	a := New(model, "sys", []Tool{&echoTool{}})

	if _, err := a.Run(context.Background(), nil, "hi", nil); err == nil {
		t.Fatal("expected an error after exhausting tool rounds")
	}
}
