package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/quiz-agent/internal/models"
)

// FileSource downloads the attachment for a task.
type FileSource interface {
	File(ctx context.Context, taskID string) ([]byte, error)
}

// QuestionSource reads questions from the quiz API.
type QuestionSource interface {
	Questions(ctx context.Context) ([]models.Question, error)
	Question(ctx context.Context, taskID string) (models.Question, error)
}

// Submitter posts a submission and returns the decoded response.
type Submitter interface {
	Submit(ctx context.Context, payload models.SubmissionPayload) (any, error)
}

// FileDownloadTool fetches the file attached to a task. Its argument is the
// task id, not the question text.
type FileDownloadTool struct {
	Files FileSource
}

func (t *FileDownloadTool) Name() string { return FileDownloadName }

func (t *FileDownloadTool) Invoke(ctx context.Context, taskID string) Result {
	if t.Files == nil {
		return Failure(t.Name(), errors.New("error downloading file: no file source configured"))
	}
	b, err := t.Files.File(ctx, strings.TrimSpace(taskID))
	if err != nil {
		return Failure(t.Name(), fmt.Errorf("error downloading file: %w", err))
	}
	return BytesResult(b)
}

// QuestionsTool fetches one question when given a task id, otherwise all of them.
// The object is a models.Question or a []models.Question respectively.
type QuestionsTool struct {
	Source QuestionSource
}

func (t *QuestionsTool) Name() string { return QuestionsName }

func (t *QuestionsTool) Invoke(ctx context.Context, taskID string) Result {
	if t.Source == nil {
		return Failure(t.Name(), errors.New("no question source configured"))
	}
	if id := strings.TrimSpace(taskID); id != "" {
		q, err := t.Source.Question(ctx, id)
		if err != nil {
			return Failure(t.Name(), err)
		}
		return ObjectResult(q)
	}
	qs, err := t.Source.Questions(ctx)
	if err != nil {
		return Failure(t.Name(), err)
	}
	return ObjectResult(qs)
}

// SubmitTool posts answers to the quiz API.
type SubmitTool struct {
	Target Submitter
}

func (t *SubmitTool) Name() string { return SubmitName }

// Submit returns the parsed response body, of any JSON type, as an object
// result.
func (t *SubmitTool) Submit(ctx context.Context, payload models.SubmissionPayload) Result {
	return Guard(t.Name(), func() Result {
		if t.Target == nil {
			return Failure(t.Name(), errors.New("no submission target configured"))
		}
		out, err := t.Target.Submit(ctx, payload)
		if err != nil {
			return Failure(t.Name(), err)
		}
		return ObjectResult(out)
	})
}
