package models

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Question is one quiz item as served by the questions endpoint.
type Question struct {
	TaskID   string `json:"task_id"`
	Question string `json:"question"`
}

// Answer pairs a generated answer with the task it answers.
type Answer struct {
	TaskID          string `json:"task_id"`
	SubmittedAnswer string `json:"submitted_answer"`
}

// SubmissionPayload is the body posted to the submit endpoint.
type SubmissionPayload struct {
	Username string   `json:"username"`
	CodeLink string   `json:"code_link"`
	Answers  []Answer `json:"answers"`
}

// ErrorPayload is the {"error": "..."} object returned at the edge in place of
// a result whenever an infrastructure call fails.
type ErrorPayload struct {
	Error string `json:"error"`
}

// NewErrorPayload builds an ErrorPayload from err.
func NewErrorPayload(err error) *ErrorPayload {
	if err == nil {
		return nil
	}
	return &ErrorPayload{Error: err.Error()}
}

// QuestionSet is the outcome of a fetch: either a list of questions or an
// upstream error marker. It encodes as a bare JSON array or as an error object,
// and decodes from either shape so a previously fetched set can be passed back.
type QuestionSet struct {
	Questions []Question
	Error     string
}

// Failed reports whether the set carries an upstream error marker.
func (s QuestionSet) Failed() bool { return s.Error != "" }

func (s QuestionSet) MarshalJSON() ([]byte, error) {
	if s.Failed() {
		return json.Marshal(ErrorPayload{Error: s.Error})
	}
	qs := s.Questions
	if qs == nil {
		qs = []Question{}
	}
	return json.Marshal(qs)
}

func (s *QuestionSet) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		*s = QuestionSet{}
		return nil
	case trimmed[0] == '[':
		var qs []Question
		if err := json.Unmarshal(trimmed, &qs); err != nil {
			return err
		}
		*s = QuestionSet{Questions: qs}
		return nil
	case trimmed[0] == '{':
		var obj struct {
			Error    *string `json:"error"`
			TaskID   string  `json:"task_id"`
			Question string  `json:"question"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		if obj.Error != nil {
			*s = QuestionSet{Error: *obj.Error}
			return nil
		}
		*s = QuestionSet{Questions: []Question{{TaskID: obj.TaskID, Question: obj.Question}}}
		return nil
	}
	return errors.New("question set must be a JSON array or object")
}

// SubmissionOutcome is what the submit action hands back to the presentation
// layer: the decoded response body, or an error object. Response holds the
// quiz API reply as decoded JSON of any type. BatchID and Cause never reach
// the wire.
type SubmissionOutcome struct {
	Response any
	Error    string
	BatchID  string
	Cause    error
}

func (o SubmissionOutcome) Failed() bool { return o.Error != "" }

func (o SubmissionOutcome) MarshalJSON() ([]byte, error) {
	if o.Failed() {
		return json.Marshal(ErrorPayload{Error: o.Error})
	}
	if o.Response == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(o.Response)
}
