package agents

import (
	"context"
	"errors"
	"time"

	"github.com/example/quiz-agent/internal/observability"
	"github.com/example/quiz-agent/internal/tools"
)

var errNoRegistry = errors.New("no tool registry configured")

type Executor interface {
	Execute(ctx context.Context, sel Selection) tools.Result
}

// ToolExecutor runs a selection against the registry and records the outcome.
type ToolExecutor struct {
	Registry *tools.Registry
	Logger   *observability.Logger
	Metrics  *observability.Metrics
}

func (e *ToolExecutor) Execute(ctx context.Context, sel Selection) tools.Result {
	if e.Registry == nil {
		return tools.Failure(sel.Tool, errNoRegistry)
	}
	logger := observability.OrDiscard(e.Logger)
	start := time.Now()
	res := e.Registry.Invoke(ctx, sel.Tool, sel.Input)
	elapsed := time.Since(start)
	e.Metrics.ObserveTool(sel.Tool, res.Failed(), elapsed)
	if res.Failed() {
		logger.Warn("tool failed", "tool", sel.Tool, "error", res.Err.Message, "duration", elapsed)
	} else {
		logger.Debug("tool finished", "tool", sel.Tool, "kind", res.Kind.String(), "duration", elapsed)
	}
	return res
}
