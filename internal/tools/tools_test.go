package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/quiz-agent/internal/models"
)

type fakeProvider struct {
	hits  []SearchHit
	err   error
	calls atomic.Int32
}

func (f *fakeProvider) Search(ctx context.Context, query string) ([]SearchHit, error) {
	f.calls.Add(1)
	return f.hits, f.err
}

type panicTool struct{}

func (panicTool) Name() string                                 { return "boom" }
func (panicTool) Invoke(ctx context.Context, in string) Result { panic("kaboom") }

func TestWebSearchFormatsTopThree(t *testing.T) {
	p := &fakeProvider{hits: []SearchHit{
		{Title: "A", Snippet: "alpha"},
		{Title: "B", Snippet: "beta"},
		{Title: "C", Snippet: "gamma"},
		{Title: "D", Snippet: "delta"},
	}}
	tool := NewWebSearchTool(p, SearchOptions{MaxResults: 3, CacheSize: 8})

	res := tool.Invoke(context.Background(), "capital of France")
	require.False(t, res.Failed())
	assert.Equal(t, KindText, res.Kind)
	assert.Equal(t, "A: alpha\nB: beta\nC: gamma", res.Text)

	// cached on repeat, case and spacing insensitive
	res = tool.Invoke(context.Background(), "Capital  of france")
	assert.Equal(t, "A: alpha\nB: beta\nC: gamma", res.Text)
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestWebSearchFailureIsData(t *testing.T) {
	tool := NewWebSearchTool(&fakeProvider{err: errors.New("connection reset")}, SearchOptions{})
	var res Result
	require.NotPanics(t, func() { res = tool.Invoke(context.Background(), "anything") })
	require.True(t, res.Failed())
	assert.Equal(t, WebSearchName, res.Err.Tool)
	assert.Contains(t, res.Err.Message, "connection reset")
	assert.Contains(t, res.Render(0), "error searching web")

	res = tool.Invoke(context.Background(), "   ")
	assert.True(t, res.Failed())
}

func TestRegistryGuardsPanicsAndUnknownTools(t *testing.T) {
	reg := NewRegistry(panicTool{})
	res := reg.Invoke(context.Background(), "boom", "x")
	require.True(t, res.Failed())
	assert.Contains(t, res.Err.Message, "kaboom")

	res = reg.Invoke(context.Background(), "missing", "x")
	require.True(t, res.Failed())
	assert.Contains(t, res.Err.Message, "unknown tool")
	assert.Equal(t, []string{"boom"}, reg.Names())
}

func TestDuckDuckGoParsesResults(t *testing.T) {
	page := `<html><body>
<div class="result results_links web-result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fen.wikipedia.org%2Fwiki%2FParis&rut=x">Paris - Wikipedia</a>
  <a class="result__snippet">Paris is the   capital of France.</a>
</div>
<div class="result result--ad"><a class="result__a" href="https://ads.example">Ad</a></div>
<div class="result"><a class="result__a" href="https://example.com/b">Second</a><div class="result__snippet">More text</div></div>
</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "capital of France", r.PostForm.Get("q"))
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	hits, err := NewDuckDuckGo(srv.URL, srv.Client()).Search(context.Background(), "capital of France")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, SearchHit{Title: "Paris - Wikipedia", URL: "https://en.wikipedia.org/wiki/Paris", Snippet: "Paris is the capital of France."}, hits[0])
	assert.Equal(t, "https://example.com/b", hits[1].URL)
}

func TestDuckDuckGoHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	_, err := NewDuckDuckGo(srv.URL, srv.Client()).Search(context.Background(), "q")
	assert.ErrorContains(t, err, "403")
}

func TestTavilySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"title":"Go","url":"https://go.dev","content":"Go is a language."}]}`))
	}))
	defer srv.Close()

	hits, err := NewTavily("key", srv.URL, 3, srv.Client()).Search(context.Background(), "golang")
	require.NoError(t, err)
	assert.Equal(t, []SearchHit{{Title: "Go", URL: "https://go.dev", Snippet: "Go is a language."}}, hits)

	_, err = NewTavily("", srv.URL, 3, srv.Client()).Search(context.Background(), "golang")
	assert.ErrorContains(t, err, "API key")
}

const kennedyExtract = "John F. Kennedy was the 35th president of the U.S. from 1961 until 1963. " +
	"He was born in Brookline in 1917. He served with Sen. Dirksen in Congress."

func newWikiServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		switch {
		case q.Get("list") == "search" && strings.Contains(q.Get("srsearch"), "nothing"):
			_, _ = w.Write([]byte(`{"query":{"search":[]}}`))
		case q.Get("list") == "search" && strings.Contains(q.Get("srsearch"), "Kennedy"):
			_, _ = w.Write([]byte(`{"query":{"search":[{"title":"John F. Kennedy"}]}}`))
		case q.Get("list") == "search":
			_, _ = w.Write([]byte(`{"query":{"search":[{"title":"Paris"}]}}`))
		case q.Get("prop") == "extracts" && q.Get("titles") == "John F. Kennedy":
			assert.Equal(t, "3", q.Get("exsentences"))
			_, _ = w.Write([]byte(`{"query":{"pages":[{"title":"John F. Kennedy","extract":"` + kennedyExtract + `"}]}}`))
		case q.Get("prop") == "extracts":
			assert.Equal(t, "Paris", q.Get("titles"))
			_, _ = w.Write([]byte(`{"query":{"pages":[{"title":"Paris","extract":"Paris is the capital of France. It has 2.1 million residents. It is on the Seine. It hosts the Louvre."}]}}`))
		default:
			http.Error(w, "bad request", http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEncyclopediaSummary(t *testing.T) {
	srv := newWikiServer(t)
	tool := NewEncyclopediaTool(EncyclopediaOptions{Endpoint: srv.URL, Sentences: 3, Client: srv.Client()})

	res := tool.Invoke(context.Background(), "Tell me about Paris from wikipedia")
	require.False(t, res.Failed(), "%v", res.Err)
	assert.Equal(t, "Paris is the capital of France. It has 2.1 million residents. It is on the Seine.", res.Text)

	res = tool.Invoke(context.Background(), "nothing at all")
	require.True(t, res.Failed())
	assert.Contains(t, res.Err.Message, "error searching Wikipedia")
}

func TestEncyclopediaSummaryKeepsAbbreviations(t *testing.T) {
	srv := newWikiServer(t)
	tool := NewEncyclopediaTool(EncyclopediaOptions{Endpoint: srv.URL, Sentences: 3, Client: srv.Client()})

	res := tool.Invoke(context.Background(), "Who was John Kennedy? Check wikipedia")
	require.False(t, res.Failed(), "%v", res.Err)
	assert.Equal(t, kennedyExtract, res.Text)
}

func TestEncyclopediaTransportFailure(t *testing.T) {
	srv := newWikiServer(t)
	srv.Close()
	tool := NewEncyclopediaTool(EncyclopediaOptions{Endpoint: srv.URL})
	res := tool.Invoke(context.Background(), "Paris")
	assert.True(t, res.Failed())
}

func TestFirstSentences(t *testing.T) {
	assert.Equal(t, "One. Two!", FirstSentences("One. Two! Three?", 2))
	assert.Equal(t, "Version 2.1 is out.", FirstSentences("Version 2.1 is out. Next.", 1))
	assert.Equal(t, "No terminator", FirstSentences("No terminator", 3))

	assert.Equal(t, "John F. Kennedy was the 35th president of the U.S. from 1961 until 1963.",
		FirstSentences(kennedyExtract, 1))
	assert.Equal(t, "Dr. Who is a show. It airs on Sat.", FirstSentences("Dr. Who is a show. It airs on Sat. Fans watch.", 2))
	assert.Equal(t, "It shipped in version 2.1. Then 2.2.", FirstSentences("It shipped in version 2.1. Then 2.2. Done.", 2))
	assert.Equal(t, kennedyExtract, FirstSentences(kennedyExtract, 3))
}

type fakeQuiz struct {
	files     map[string][]byte
	questions []models.Question
	err       error
	submitted []models.SubmissionPayload
}

func (f *fakeQuiz) File(ctx context.Context, id string) ([]byte, error) {
	if b, ok := f.files[id]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("GET /files/%s: status 404", id)
}

func (f *fakeQuiz) Questions(ctx context.Context) ([]models.Question, error) {
	return f.questions, f.err
}

func (f *fakeQuiz) Question(ctx context.Context, id string) (models.Question, error) {
	for _, q := range f.questions {
		if q.TaskID == id {
			return q, nil
		}
	}
	return models.Question{}, fmt.Errorf("no question %s", id)
}

func (f *fakeQuiz) Submit(ctx context.Context, p models.SubmissionPayload) (any, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.submitted = append(f.submitted, p)
	return map[string]any{"ok": true}, nil
}

func TestFileDownloadTool(t *testing.T) {
	tool := &FileDownloadTool{Files: &fakeQuiz{files: map[string][]byte{"t1": []byte("hello file")}}}

	res := tool.Invoke(context.Background(), "t1")
	require.Equal(t, KindBytes, res.Kind)
	assert.Equal(t, "hello file", res.Render(0))

	res = tool.Invoke(context.Background(), "t9")
	require.True(t, res.Failed())
	assert.Contains(t, res.Render(0), "error downloading file")
	assert.Contains(t, res.Render(0), "404")
}

func TestQuestionsAndSubmitTools(t *testing.T) {
	src := &fakeQuiz{questions: []models.Question{{TaskID: "a", Question: "x"}}}
	qt := &QuestionsTool{Source: src}

	res := qt.Invoke(context.Background(), "")
	require.Equal(t, KindObject, res.Kind)
	assert.Equal(t, []models.Question{{TaskID: "a", Question: "x"}}, res.Object)

	res = qt.Invoke(context.Background(), "a")
	assert.Equal(t, models.Question{TaskID: "a", Question: "x"}, res.Object)

	res = qt.Invoke(context.Background(), "zz")
	assert.True(t, res.Failed())

	st := &SubmitTool{Target: src}
	res = st.Submit(context.Background(), models.SubmissionPayload{Username: "u"})
	require.False(t, res.Failed())
	assert.Equal(t, map[string]any{"ok": true}, res.Object)

	st = &SubmitTool{Target: &fakeQuiz{err: errors.New("network down")}}
	res = st.Submit(context.Background(), models.SubmissionPayload{})
	require.True(t, res.Failed())
	assert.Equal(t, "submit_answer: network down", res.Err.Error())
}

func TestRenderAttachment(t *testing.T) {
	assert.Equal(t, "", RenderAttachment(nil))
	assert.Equal(t, "a,b\n1,2", RenderAttachment([]byte("a,b\n1,2\n")))

	html := `<!DOCTYPE html><html><head><title>t</title><style>p{}</style></head><body><h1>Title</h1><p>Hello   <b>world</b></p><script>x()</script></body></html>`
	assert.Equal(t, "Title\nHello world", RenderAttachment([]byte(html)))

	table := `<html><body><table><tr><td>a&amp;b</td><td>c</td></tr></table>` +
		`<ul><li>one</li><li>t<i>wo</i><br>three</li></ul><noscript>enable js</noscript></body></html>`
	assert.Equal(t, "a&b c\none\ntwo\nthree", RenderAttachment([]byte(table)))

	bin := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
	assert.Equal(t, "binary attachment (image/png, 12 bytes)", RenderAttachment(bin))

	assert.Contains(t, RenderAttachment([]byte("%PDF-1.4 not really a pdf")), "PDF attachment")
}

func TestRenderTruncatesAndEncodesObjects(t *testing.T) {
	res := TextResult(strings.Repeat("é", 10))
	out := res.Render(5)
	assert.True(t, strings.HasSuffix(out, "[truncated]"))
	assert.Equal(t, "éé\n[truncated]", out)

	obj := ObjectResult(map[string]any{"k": 1})
	assert.JSONEq(t, `{"k":1}`, obj.Render(0))

	assert.Equal(t, "text", KindText.String())
	assert.Equal(t, "error", KindError.String())
}
