package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/quiz-agent/internal/models"
	"github.com/example/quiz-agent/internal/observability"
	"github.com/example/quiz-agent/internal/tools"
)

// Service is the fetch/submit edge used by the HTTP shell and the CLI. Every
// failure comes back as an error payload; nothing is returned as a Go error.
type Service struct {
	Questions *tools.QuestionsTool
	Submitter *tools.SubmitTool
	Runner    *Runner
	Logger    *observability.Logger
}

// FetchQuestions returns every question, or a set carrying the failure.
func (s *Service) FetchQuestions(ctx context.Context) models.QuestionSet {
	res := s.questions().Invoke(ctx, "")
	if res.Failed() {
		s.logger().Warn("fetch questions failed", "error", res.Err.Message)
		return models.QuestionSet{Error: res.Err.Message}
	}
	qs, ok := res.Object.([]models.Question)
	if !ok {
		return models.QuestionSet{Error: fmt.Sprintf("unexpected questions payload %T", res.Object)}
	}
	return models.QuestionSet{Questions: qs}
}

// FetchQuestion returns a single question by task id.
func (s *Service) FetchQuestion(ctx context.Context, taskID string) (models.Question, *models.ErrorPayload) {
	if taskID == "" {
		return models.Question{}, &models.ErrorPayload{Error: "task id is required"}
	}
	res := s.questions().Invoke(ctx, taskID)
	if res.Failed() {
		return models.Question{}, &models.ErrorPayload{Error: res.Err.Message}
	}
	q, ok := res.Object.(models.Question)
	if !ok {
		return models.Question{}, &models.ErrorPayload{Error: fmt.Sprintf("unexpected question payload %T", res.Object)}
	}
	return q, nil
}

// SubmitAnswers answers set and posts the payload under a generated batch id.
func (s *Service) SubmitAnswers(ctx context.Context, username, codeLink string, set models.QuestionSet) models.SubmissionOutcome {
	return s.SubmitBatch(ctx, "", username, codeLink, set)
}

// SubmitBatch answers set under batchID and posts the payload. Validation and
// completion failures return before the submission endpoint is called. The
// outcome carries the batch id whether or not the batch succeeded.
func (s *Service) SubmitBatch(ctx context.Context, batchID, username, codeLink string, set models.QuestionSet) models.SubmissionOutcome {
	if batchID == "" {
		batchID = uuid.NewString()
	}
	fail := func(err error) models.SubmissionOutcome {
		return models.SubmissionOutcome{Error: UserMessage(err), BatchID: batchID, Cause: err}
	}
	if s.Runner == nil {
		return fail(errors.New("no batch runner configured"))
	}
	payload, err := s.Runner.RunBatch(ctx, batchID, username, codeLink, set)
	if err != nil {
		return fail(err)
	}
	if s.Submitter == nil {
		return fail(errors.New("no submission target configured"))
	}
	res := s.Submitter.Submit(ctx, *payload)
	if res.Failed() {
		s.logger().Error("submission failed", "username", username, "batch_id", batchID, "error", res.Err.Message)
		return models.SubmissionOutcome{Error: res.Err.Message, BatchID: batchID, Cause: res.Err}
	}
	s.logger().Info("answers submitted", "username", username, "batch_id", batchID, "answers", len(payload.Answers))
	return models.SubmissionOutcome{Response: res.Object, BatchID: batchID}
}

// UserMessage renders err the way the submit edge reports it to people.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingIdentity):
		return "Please provide both username and code link."
	case errors.Is(err, ErrNoQuestions):
		return "No questions to answer."
	default:
		return err.Error()
	}
}

// Answer answers one question without submitting it.
func (s *Service) Answer(ctx context.Context, q models.Question) (models.Answer, *models.ErrorPayload) {
	if s.Runner == nil || s.Runner.Agent == nil {
		return models.Answer{}, &models.ErrorPayload{Error: "no agent configured"}
	}
	if q.Question == "" {
		return models.Answer{}, &models.ErrorPayload{Error: "question is required"}
	}
	out, err := s.Runner.Agent.Answer(ctx, q)
	if err != nil {
		return models.Answer{}, models.NewErrorPayload(err)
	}
	return out.Answer, nil
}

func (s *Service) questions() *tools.QuestionsTool {
	if s.Questions == nil {
		return &tools.QuestionsTool{}
	}
	return s.Questions
}

func (s *Service) logger() *observability.Logger { return observability.OrDiscard(s.Logger) }
