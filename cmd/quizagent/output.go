package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/example/quiz-agent/internal/orchestrator"
)

// render writes v in the requested format. YAML goes through the JSON form so
// custom JSON encodings (question sets, error objects) are preserved.
func render(w io.Writer, format string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	switch format {
	case "", "json":
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml", "yml":
		var generic any
		if err := json.Unmarshal(b, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// printProgress writes one line per batch event until events is closed.
func printProgress(w io.Writer, events <-chan orchestrator.Event) {
	for ev := range events {
		switch ev.Event {
		case orchestrator.EventBatchStarted:
			fmt.Fprintf(w, "%s %v questions %s\n", bold("batch"), ev.Payload["questions"], gray(ev.BatchID))
		case orchestrator.EventToolSelected:
			status := green("ok")
			if failed, _ := ev.Payload["failed"].(bool); failed {
				status = red("failed")
			}
			fmt.Fprintf(w, "  %s %v %s %s\n", cyan("tool"), ev.Payload["tool"], gray(ev.Payload["task_id"]), status)
		case orchestrator.EventQuestionAnswered:
			fmt.Fprintf(w, "  %s %v\n", green("answered"), ev.Payload["task_id"])
		case orchestrator.EventBatchFailed:
			fmt.Fprintf(w, "%s %v\n", red("batch failed:"), ev.Payload["error"])
		case orchestrator.EventBatchCompleted:
			fmt.Fprintf(w, "%s %v answers\n", green("batch completed:"), ev.Payload["answers"])
		}
	}
}
