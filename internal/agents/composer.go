package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/quiz-agent/internal/models"
	"github.com/example/quiz-agent/internal/observability"
	"github.com/example/quiz-agent/internal/providers/llm"
	"github.com/example/quiz-agent/internal/tools"
)

// ToolOutput is the rendered result of the tool chosen for a question.
type ToolOutput struct {
	Tool string
	Text string
}

// BuildPrompt composes the completion prompt. The tool section is present
// only when out is non-nil and carries text.
func BuildPrompt(q models.Question, out *ToolOutput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\nTask ID: %s\n", q.Question, q.TaskID)
	if out != nil && out.Text != "" {
		fmt.Fprintf(&b, "Tool used: %s\nTool result: %s\n", out.Tool, out.Text)
		b.WriteString("Please answer concisely and accurately, using the tool result above if helpful.")
		return b.String()
	}
	b.WriteString("Please answer concisely and accurately.")
	return b.String()
}

// Composer turns a question and optional tool result into an answer with one
// completion call. Completion errors are returned unchanged.
type Composer struct {
	Client  llm.Client
	Options llm.GenerateOptions
	// MaxToolBytes caps the rendered tool result; zero means unlimited.
	MaxToolBytes int
	Logger       *observability.Logger
	Metrics      *observability.Metrics
}

// ToolOutputFor renders res for the prompt, or returns nil when the result is
// an error or renders to nothing.
func (c *Composer) ToolOutputFor(tool string, res tools.Result) *ToolOutput {
	if res.Failed() {
		return nil
	}
	text := strings.TrimSpace(res.Render(c.MaxToolBytes))
	if text == "" {
		return nil
	}
	return &ToolOutput{Tool: tool, Text: text}
}

func (c *Composer) Compose(ctx context.Context, q models.Question, out *ToolOutput) (string, error) {
	if c.Client == nil {
		return "", errors.New("no completion client configured")
	}
	prompt := BuildPrompt(q, out)
	start := time.Now()
	text, err := c.Client.GenerateText(ctx, prompt, c.Options)
	c.Metrics.ObserveCompletion(c.Client.Provider(), err != nil, time.Since(start))
	if err != nil {
		observability.OrDiscard(c.Logger).Error("completion failed", "task_id", q.TaskID, "provider", c.Client.Provider(), "error", err)
		return "", err
	}
	return strings.TrimSpace(text), nil
}
