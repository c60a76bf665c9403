package orchestrator

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/example/quiz-agent/internal/agents"
	"github.com/example/quiz-agent/internal/models"
	"github.com/example/quiz-agent/internal/observability"
)

var (
	ErrMissingIdentity = errors.New("username and code link are required")
	ErrNoQuestions     = errors.New("no questions to answer")
)

// Answerer answers a single question.
type Answerer interface {
	Answer(ctx context.Context, q models.Question) (agents.Outcome, error)
}

// Runner answers a whole question set and assembles the submission payload.
type Runner struct {
	Agent Answerer
	// Concurrency bounds in-flight questions; values below 2 run sequentially.
	Concurrency int
	Hub         *Hub
	Logger      *observability.Logger
	Metrics     *observability.Metrics
}

// Run answers every question in order under a freshly generated batch id.
func (r *Runner) Run(ctx context.Context, username, codeLink string, set models.QuestionSet) (*models.SubmissionPayload, error) {
	return r.RunBatch(ctx, "", username, codeLink, set)
}

// RunBatch answers every question in order and tags its progress events with
// batchID, so callers can subscribe to the batch before it starts. An empty
// batchID gets a generated one. It fails before any work when the identity is
// incomplete or there is nothing to answer, and aborts on the first completion
// failure.
func (r *Runner) RunBatch(ctx context.Context, batchID, username, codeLink string, set models.QuestionSet) (*models.SubmissionPayload, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(codeLink) == "" {
		return nil, ErrMissingIdentity
	}
	if set.Failed() || len(set.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	if r.Agent == nil {
		return nil, errors.New("no agent configured")
	}

	if batchID == "" {
		batchID = uuid.NewString()
	}
	logger := observability.OrDiscard(r.Logger).With("batch_id", batchID)
	questions := set.Questions
	r.Hub.Publish(Event{Event: EventBatchStarted, BatchID: batchID, Payload: map[string]any{"questions": len(questions)}})
	logger.Info("batch started", "questions", len(questions), "concurrency", r.limit())

	answers := make([]models.Answer, len(questions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit())
	for i, q := range questions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := r.Agent.Answer(gctx, q)
			if out.Selection != nil {
				r.Hub.Publish(Event{Event: EventToolSelected, BatchID: batchID, Payload: map[string]any{
					"task_id": q.TaskID, "tool": out.Selection.Tool, "failed": out.ToolFailed,
				}})
			}
			if err != nil {
				return err
			}
			answers[i] = out.Answer
			r.Hub.Publish(Event{Event: EventQuestionAnswered, BatchID: batchID, Payload: map[string]any{
				"task_id": q.TaskID, "index": i, "answer": out.Answer.SubmittedAnswer,
			}})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("batch failed", "error", err)
		r.Metrics.ObserveBatch(true, 0)
		r.Hub.Publish(Event{Event: EventBatchFailed, BatchID: batchID, Payload: map[string]any{"error": err.Error()}})
		return nil, err
	}

	logger.Info("batch completed", "answers", len(answers))
	r.Metrics.ObserveBatch(false, len(answers))
	r.Hub.Publish(Event{Event: EventBatchCompleted, BatchID: batchID, Payload: map[string]any{"answers": len(answers)}})
	return &models.SubmissionPayload{Username: username, CodeLink: codeLink, Answers: answers}, nil
}

func (r *Runner) limit() int {
	if r.Concurrency < 1 {
		return 1
	}
	return r.Concurrency
}
