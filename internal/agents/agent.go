package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/quiz-agent/internal/models"
	"github.com/example/quiz-agent/internal/observability"
)

var errNoComposer = errors.New("no composer configured")

// Outcome describes how one question was answered.
type Outcome struct {
	Answer     models.Answer
	Selection  *Selection
	ToolFailed bool
	Prompt     string
}

// QuizAgent answers a question with at most one tool call and exactly one
// completion call.
type QuizAgent struct {
	Policy   Policy
	Executor Executor
	Composer *Composer
	Logger   *observability.Logger
}

func (a *QuizAgent) Answer(ctx context.Context, q models.Question) (Outcome, error) {
	if a.Composer == nil {
		return Outcome{}, fmt.Errorf("answer %s: %w", q.TaskID, errNoComposer)
	}
	logger := observability.OrDiscard(a.Logger).With("task_id", q.TaskID)
	var (
		outcome Outcome
		out     *ToolOutput
	)
	if a.Policy != nil {
		if sel, ok := a.Policy.Select(q); ok {
			outcome.Selection = &sel
			logger.Debug("tool selected", "tool", sel.Tool)
			if a.Executor != nil {
				res := a.Executor.Execute(ctx, sel)
				outcome.ToolFailed = res.Failed()
				out = a.Composer.ToolOutputFor(sel.Tool, res)
			}
		}
	}
	outcome.Prompt = BuildPrompt(q, out)
	text, err := a.Composer.Compose(ctx, q, out)
	if err != nil {
		return outcome, fmt.Errorf("answer %s: %w", q.TaskID, err)
	}
	outcome.Answer = models.Answer{TaskID: q.TaskID, SubmittedAnswer: text}
	return outcome, nil
}

// AnswerQuestion is Answer without the trace.
func (a *QuizAgent) AnswerQuestion(ctx context.Context, q models.Question) (models.Answer, error) {
	o, err := a.Answer(ctx, q)
	return o.Answer, err
}
