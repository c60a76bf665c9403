package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/quiz-agent/internal/models"
	"github.com/example/quiz-agent/internal/observability"
	"github.com/example/quiz-agent/internal/providers/llm"
	"github.com/example/quiz-agent/internal/tools"
)

type stubTool struct {
	name   string
	result tools.Result
	inputs []string
}

func (s *stubTool) Name() string { return s.name }

func (s *stubTool) Invoke(ctx context.Context, input string) tools.Result {
	s.inputs = append(s.inputs, input)
	return s.result
}

func TestSelectToolPriority(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Look this up on Wikipedia", tools.EncyclopediaName},
		{"WIKIPEDIA search for the web", tools.EncyclopediaName},
		{"Search the web for the capital of France", tools.WebSearchName},
		{"what does the website say", tools.WebSearchName},
		{"Download the file and sum column B", tools.FileDownloadName},
		{"Open the attached FILE", tools.FileDownloadName},
		{"What year did WWII end?", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SelectTool(tc.text), tc.text)
	}
}

func TestKeywordPolicyArguments(t *testing.T) {
	p := NewKeywordPolicy()

	sel, ok := p.Select(models.Question{TaskID: "t1", Question: "Search the web for X"})
	require.True(t, ok)
	assert.Equal(t, Selection{Tool: tools.WebSearchName, Input: "Search the web for X"}, sel)

	sel, ok = p.Select(models.Question{TaskID: "t3", Question: "Please download the spreadsheet"})
	require.True(t, ok)
	assert.Equal(t, Selection{Tool: tools.FileDownloadName, Input: "t3"}, sel)

	_, ok = p.Select(models.Question{TaskID: "t2", Question: "What year did WWII end?"})
	assert.False(t, ok)
}

func TestBuildPrompt(t *testing.T) {
	q := models.Question{TaskID: "t1", Question: "Search the web for the capital of France"}

	with := BuildPrompt(q, &ToolOutput{Tool: tools.WebSearchName, Text: "Paris: capital of France"})
	assert.Equal(t, "Question: Search the web for the capital of France\nTask ID: t1\n"+
		"Tool used: web_search\nTool result: Paris: capital of France\n"+
		"Please answer concisely and accurately, using the tool result above if helpful.", with)

	without := BuildPrompt(q, nil)
	assert.Equal(t, "Question: Search the web for the capital of France\nTask ID: t1\nPlease answer concisely and accurately.", without)
	assert.NotContains(t, without, "Tool result:")
}

func newAgent(client llm.Client, ts ...tools.Tool) *QuizAgent {
	return &QuizAgent{
		Policy:   NewKeywordPolicy(),
		Executor: &ToolExecutor{Registry: tools.NewRegistry(ts...)},
		Composer: &Composer{Client: client, Options: llm.GenerateOptions{Temperature: 0.7, MaxTokens: 512}},
	}
}

func TestAnswerWithToolResult(t *testing.T) {
	search := &stubTool{name: tools.WebSearchName, result: tools.TextResult("Paris: capital of France")}
	client := &llm.MockClient{Answer: "  Paris\n"}
	a := newAgent(client, search)

	q := models.Question{TaskID: "t1", Question: "Search the web for the capital of France"}
	out, err := a.Answer(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, models.Answer{TaskID: "t1", SubmittedAnswer: "Paris"}, out.Answer)
	assert.Equal(t, []string{q.Question}, search.inputs)

	prompts := client.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], q.Question)
	assert.Contains(t, prompts[0], "Task ID: t1")
	assert.Contains(t, prompts[0], "Tool result: Paris: capital of France")
	assert.Equal(t, []llm.GenerateOptions{{Temperature: 0.7, MaxTokens: 512}}, client.Options())
}

func TestAnswerWithoutTool(t *testing.T) {
	search := &stubTool{name: tools.WebSearchName, result: tools.TextResult("unused")}
	client := &llm.MockClient{Answer: "1945"}
	a := newAgent(client, search)

	ans, err := a.AnswerQuestion(context.Background(), models.Question{TaskID: "t2", Question: "What year did WWII end?"})
	require.NoError(t, err)
	assert.Equal(t, models.Answer{TaskID: "t2", SubmittedAnswer: "1945"}, ans)
	assert.Empty(t, search.inputs)
	require.Len(t, client.Prompts(), 1)
	assert.NotContains(t, client.Prompts()[0], "Tool")
}

func TestToolFailureDegradesPrompt(t *testing.T) {
	wiki := &stubTool{name: tools.EncyclopediaName, result: tools.Failure(tools.EncyclopediaName, errors.New("error searching Wikipedia: timeout"))}
	client := &llm.MockClient{Answer: "unknown"}
	a := newAgent(client, wiki)

	out, err := a.Answer(context.Background(), models.Question{TaskID: "t4", Question: "wikipedia: who is Ada?"})
	require.NoError(t, err)
	assert.True(t, out.ToolFailed)
	require.NotNil(t, out.Selection)
	assert.Equal(t, tools.EncyclopediaName, out.Selection.Tool)
	assert.NotContains(t, client.Prompts()[0], "Tool result:")
	assert.Equal(t, "unknown", out.Answer.SubmittedAnswer)
}

func TestEmptyToolResultIsOmitted(t *testing.T) {
	search := &stubTool{name: tools.WebSearchName, result: tools.TextResult("   ")}
	client := &llm.MockClient{}
	a := newAgent(client, search)
	_, err := a.Answer(context.Background(), models.Question{TaskID: "t5", Question: "web lookup"})
	require.NoError(t, err)
	assert.NotContains(t, client.Prompts()[0], "Tool used:")
}

func TestFileResultIsRenderedAndTruncated(t *testing.T) {
	file := &stubTool{name: tools.FileDownloadName, result: tools.BytesResult([]byte(strings.Repeat("x", 100)))}
	client := &llm.MockClient{}
	a := newAgent(client, file)
	a.Composer.MaxToolBytes = 10

	_, err := a.Answer(context.Background(), models.Question{TaskID: "t6", Question: "read the file"})
	require.NoError(t, err)
	assert.Equal(t, []string{"t6"}, file.inputs)
	assert.Contains(t, client.Prompts()[0], "Tool result: xxxxxxxxxx\n[truncated]")
}

func TestCompletionFailurePropagates(t *testing.T) {
	client := &llm.MockClient{Err: llm.ErrMissingAPIKey}
	a := newAgent(client)
	_, err := a.Answer(context.Background(), models.Question{TaskID: "t7", Question: "hi"})
	require.ErrorIs(t, err, llm.ErrMissingAPIKey)
	assert.Contains(t, err.Error(), "t7")
}

func TestAnswerWithoutComposerFails(t *testing.T) {
	var zero QuizAgent
	var err error
	require.NotPanics(t, func() { _, err = zero.Answer(context.Background(), models.Question{TaskID: "t8", Question: "hi"}) })
	assert.ErrorIs(t, err, errNoComposer)

	search := &stubTool{name: tools.WebSearchName, result: tools.TextResult("hits")}
	a := &QuizAgent{
		Policy:   NewKeywordPolicy(),
		Executor: &ToolExecutor{Registry: tools.NewRegistry(search)},
	}
	_, err = a.AnswerQuestion(context.Background(), models.Question{TaskID: "t9", Question: "search the web"})
	require.ErrorIs(t, err, errNoComposer)
	assert.Contains(t, err.Error(), "t9")
	assert.Empty(t, search.inputs)
}

func TestExecutorRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.MustNewMetrics(reg)
	e := &ToolExecutor{
		Registry: tools.NewRegistry(&stubTool{name: tools.WebSearchName, result: tools.TextResult("ok")}),
		Metrics:  m,
	}
	res := e.Execute(context.Background(), Selection{Tool: tools.WebSearchName, Input: "q"})
	assert.False(t, res.Failed())
	res = e.Execute(context.Background(), Selection{Tool: "nope", Input: "q"})
	assert.True(t, res.Failed())

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "quizagent_tools_invocations_total")

	assert.True(t, (&ToolExecutor{}).Execute(context.Background(), Selection{Tool: "x"}).Failed())
}
