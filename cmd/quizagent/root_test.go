package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/quiz-agent/internal/models"
)

type quizServer struct {
	mu        sync.Mutex
	submitted []models.SubmissionPayload
}

func (q *quizServer) start(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /questions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"task_id":"t1","question":"What year did WWII end?"},{"task_id":"t2","question":"Name a prime"}]`))
	})
	mux.HandleFunc("GET /questions/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"task_id":"` + r.PathValue("id") + `","question":"q"}`))
	})
	mux.HandleFunc("POST /submit", func(w http.ResponseWriter, r *http.Request) {
		var p models.SubmissionPayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		q.mu.Lock()
		q.submitted = append(q.submitted, p)
		q.mu.Unlock()
		_, _ = w.Write([]byte(`{"message":"received"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, k := range []string{"QUIZ_USERNAME", "QUIZ_CODE_LINK", "QUIZAGENT_LLM_PROVIDER", "QUIZAGENT_QUIZ_BASE_URL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	var out, errOut bytes.Buffer
	cmd := newRootCommand(&out, &errOut)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(dir, "missing.env"), "--provider", "mock", "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestFetchJSONAndYAML(t *testing.T) {
	srv := (&quizServer{}).start(t)

	out, _, err := run(t, "--quiz-url", srv.URL, "fetch")
	require.NoError(t, err)
	var qs []models.Question
	require.NoError(t, json.Unmarshal([]byte(out), &qs))
	assert.Len(t, qs, 2)

	out, _, err = run(t, "--quiz-url", srv.URL, "fetch", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "- question: What year did WWII end?")
	assert.Contains(t, out, "task_id: t1")

	out, _, err = run(t, "--quiz-url", srv.URL, "fetch", "--task-id", "t9")
	require.NoError(t, err)
	assert.Contains(t, out, `"task_id": "t9"`)
}

func TestFetchFailurePrintsErrorObject(t *testing.T) {
	srv := (&quizServer{}).start(t)
	srv.Close()
	out, _, err := run(t, "--quiz-url", srv.URL, "fetch")
	assert.ErrorIs(t, err, errReported)
	var payload models.ErrorPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.NotEmpty(t, payload.Error)
}

func TestSubmitRequiresIdentity(t *testing.T) {
	qs := &quizServer{}
	srv := qs.start(t)
	out, _, err := run(t, "--quiz-url", srv.URL, "submit", "--username", "alice")
	assert.ErrorIs(t, err, errReported)
	assert.JSONEq(t, `{"error":"Please provide both username and code link."}`, out)
	assert.Empty(t, qs.submitted)
}

func TestSubmitAnswersAndReportsProgress(t *testing.T) {
	qs := &quizServer{}
	srv := qs.start(t)
	out, progress, err := run(t, "--quiz-url", srv.URL, "submit", "--username", "alice", "--code-link", "https://example.com/code", "--concurrency", "2")
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"received"}`, out)
	assert.Contains(t, progress, "batch completed")

	require.Len(t, qs.submitted, 1)
	got := qs.submitted[0]
	assert.Equal(t, "alice", got.Username)
	require.Len(t, got.Answers, 2)
	assert.Equal(t, "t1", got.Answers[0].TaskID)
	assert.Equal(t, "t2", got.Answers[1].TaskID)
}

func TestSubmitTagsProgressWithBatchID(t *testing.T) {
	qs := &quizServer{}
	srv := qs.start(t)
	_, progress, err := run(t, "--quiz-url", srv.URL, "submit", "--username", "u", "--code-link", "c", "--batch-id", "nightly-1")
	require.NoError(t, err)
	assert.Contains(t, progress, "nightly-1")
	assert.Contains(t, progress, "batch completed")
}

func TestSubmitFromQuestionsFile(t *testing.T) {
	qs := &quizServer{}
	srv := qs.start(t)
	file := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(file, []byte(`[{"task_id":"x1","question":"hello"}]`), 0o600))

	_, _, err := run(t, "--quiz-url", srv.URL, "submit", "--username", "u", "--code-link", "c", "--questions", file)
	require.NoError(t, err)
	require.Len(t, qs.submitted, 1)
	assert.Equal(t, []models.Answer{{TaskID: "x1", SubmittedAnswer: "I don't know."}}, qs.submitted[0].Answers)
}

func TestAsk(t *testing.T) {
	out, stderr, err := run(t, "ask", "--task-id", "t5", "--show-prompt", "What", "year?")
	require.NoError(t, err)
	assert.JSONEq(t, `{"task_id":"t5","submitted_answer":"I don't know."}`, out)
	assert.Contains(t, stderr, "Question: What year?")
}

func TestUnknownOutputFormat(t *testing.T) {
	srv := (&quizServer{}).start(t)
	_, _, err := run(t, "--quiz-url", srv.URL, "fetch", "-o", "xml")
	assert.ErrorContains(t, err, "unsupported output format")
}
