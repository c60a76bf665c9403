package agents

import (
	"strings"

	"github.com/example/quiz-agent/internal/models"
	"github.com/example/quiz-agent/internal/tools"
)

// Selection is the single tool call chosen for a question.
type Selection struct {
	Tool  string
	Input string
}

// Policy maps a question to at most one tool call. ok is false when no tool
// applies, which is a normal outcome.
type Policy interface {
	Select(q models.Question) (sel Selection, ok bool)
}

// Rule fires when the lowercased question contains any of Keywords.
// UseTaskID passes the task id to the tool instead of the question text.
type Rule struct {
	Keywords  []string
	Tool      string
	UseTaskID bool
}

// DefaultRules is the keyword table in priority order.
var DefaultRules = []Rule{
	{Keywords: []string{"wikipedia"}, Tool: tools.EncyclopediaName},
	{Keywords: []string{"web", "search"}, Tool: tools.WebSearchName},
	{Keywords: []string{"file", "download"}, Tool: tools.FileDownloadName, UseTaskID: true},
}

// KeywordPolicy evaluates Rules in order; the first match wins.
type KeywordPolicy struct {
	Rules []Rule
}

func NewKeywordPolicy() *KeywordPolicy {
	return &KeywordPolicy{Rules: DefaultRules}
}

func (p *KeywordPolicy) Select(q models.Question) (Selection, bool) {
	rule, ok := match(p.rules(), q.Question)
	if !ok {
		return Selection{}, false
	}
	if rule.UseTaskID {
		return Selection{Tool: rule.Tool, Input: q.TaskID}, true
	}
	return Selection{Tool: rule.Tool, Input: q.Question}, true
}

func (p *KeywordPolicy) rules() []Rule {
	if p == nil || p.Rules == nil {
		return DefaultRules
	}
	return p.Rules
}

// SelectTool returns the tool name DefaultRules picks for text, or "".
func SelectTool(text string) string {
	rule, ok := match(DefaultRules, text)
	if !ok {
		return ""
	}
	return rule.Tool
}

func match(rules []Rule, text string) (Rule, bool) {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r, true
			}
		}
	}
	return Rule{}, false
}
