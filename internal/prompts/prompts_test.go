package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func promptText(t *testing.T, result *mcp.GetPromptResult) string {
	t.Helper()
	if len(result.Messages) == 0 {
		t.Fatal("prompt returned no messages")
	}
	tc, ok := result.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", result.Messages[0].Content)
	}
	return tc.Text
}

func TestStartPrompt_Handle(t *testing.T) {
	p := NewStartPrompt()
	if p.Definition().Name != "nexus-start" {
		t.Errorf("name = %q", p.Definition().Name)
	}

	result, err := p.Handle(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(promptText(t, result), "nexus_startup") {
		t.Error("start prompt should call nexus_startup")
	}

	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"resume": "TRUE"}
	result, err = p.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(promptText(t, result), "nexus_resume") {
		t.Error("resume prompt should call nexus_resume")
	}
}

func TestStatusPrompt_Handle(t *testing.T) {
	result, err := NewStatusPrompt().Handle(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := promptText(t, result)
	for _, want := range []string{"nexus_list_projects", "nexus_check_updates", "nexus://workspace/stats"} {
		if !strings.Contains(text, want) {
			t.Errorf("status prompt should mention %s", want)
		}
	}
}
