package tools

import (
	"context"
	"fmt"
	"sort"
)

// Tool names, kept from the original agent.
const (
	WebSearchName    = "web_search"
	EncyclopediaName = "wikipedia_search"
	FileDownloadName = "file_download"
	QuestionsName    = "get_question"
	SubmitName       = "submit_answer"
)

// Tool is a capability adapter with a single string argument. Invoke must not
// panic or return a Go error: every failure comes back as a KindError Result.
type Tool interface {
	Name() string
	Invoke(ctx context.Context, input string) Result
}

// Registry is an explicit name -> tool table built by the caller.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{tools: map[string]Tool{}}
	for _, t := range ts {
		r.Register(t)
	}
	return r
}

func (r *Registry) Register(t Tool) {
	r.tools[t.Name()] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names lists registered tools in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.tools))
	for name := range r.tools {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Invoke runs the named tool behind Guard. An unknown name is a failure result.
func (r *Registry) Invoke(ctx context.Context, name, input string) Result {
	t, ok := r.Get(name)
	if !ok {
		return Failure(name, fmt.Errorf("unknown tool: %s", name))
	}
	return Guard(name, func() Result { return t.Invoke(ctx, input) })
}
