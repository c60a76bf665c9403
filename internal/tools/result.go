package tools

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Kind discriminates the Result union.
type Kind int

const (
	KindText Kind = iota
	KindObject
	KindBytes
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindObject:
		return "object"
	case KindBytes:
		return "bytes"
	case KindError:
		return "error"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ToolError is the failure variant of a Result. Tools return it as data, never
// as a Go error, so callers can keep going with a degraded prompt.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	if e.Tool == "" {
		return e.Message
	}
	return e.Tool + ": " + e.Message
}

// Result is the outcome of one tool invocation: exactly one of Text, Object,
// Bytes or Err is meaningful, as selected by Kind.
type Result struct {
	Kind   Kind
	Text   string
	Object any
	Bytes  []byte
	Err    *ToolError
}

func TextResult(s string) Result  { return Result{Kind: KindText, Text: s} }
func ObjectResult(v any) Result   { return Result{Kind: KindObject, Object: v} }
func BytesResult(b []byte) Result { return Result{Kind: KindBytes, Bytes: b} }

// Failed reports whether r is the error variant.
func (r Result) Failed() bool { return r.Kind == KindError }

// Failure wraps err as the error variant for tool.
func Failure(tool string, err error) Result {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Result{Kind: KindError, Err: &ToolError{Tool: tool, Message: msg}}
}

// Guard runs fn and turns a panic into a Failure so nothing escapes the tool boundary.
func Guard(tool string, fn func() Result) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = Failure(tool, fmt.Errorf("panic: %v", p))
		}
	}()
	return fn()
}

// Render returns the textual form used in prompts. Bytes are rendered as an
// attachment (PDF, HTML or plain text extraction). When limit is positive the
// output is cut to at most limit bytes and marked as truncated.
func (r Result) Render(limit int) string {
	var s string
	switch r.Kind {
	case KindText:
		s = r.Text
	case KindObject:
		b, err := json.MarshalIndent(r.Object, "", "  ")
		if err != nil {
			s = fmt.Sprintf("%v", r.Object)
		} else {
			s = string(b)
		}
	case KindBytes:
		s = RenderAttachment(r.Bytes)
	case KindError:
		if r.Err != nil {
			s = r.Err.Error()
		}
	}
	return truncate(s, limit)
}

const truncatedMarker = "\n[truncated]"

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncatedMarker
}
