package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/quiz-agent/internal/models"
)

func newSubmitCommand(cli *CLI) *cobra.Command {
	var (
		username      string
		codeLink      string
		questionsFile string
		batchID       string
		concurrency   int
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Answer every question and submit the answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			extra := map[string]any{}
			if cmd.Flags().Changed("concurrency") {
				extra["batch.concurrency"] = concurrency
			}
			a, err := cli.load(cmd, extra)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("username") {
				username = a.Config.Submission.Username
			}
			if !cmd.Flags().Changed("code-link") {
				codeLink = a.Config.Submission.CodeLink
			}

			var set models.QuestionSet
			if questionsFile != "" {
				b, err := os.ReadFile(questionsFile)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(b, &set); err != nil {
					return fmt.Errorf("parse %s: %w", questionsFile, err)
				}
			} else {
				set = a.Service.FetchQuestions(cmd.Context())
			}

			if batchID == "" {
				batchID = uuid.NewString()
			}
			events, unsubscribe := a.Hub.Subscribe(batchID)
			done := make(chan struct{})
			go func() {
				printProgress(cli.errOut, events)
				close(done)
			}()
			out := a.Service.SubmitBatch(cmd.Context(), batchID, username, codeLink, set)
			unsubscribe()
			<-done

			if err := render(cli.out, cli.output, out); err != nil {
				return err
			}
			if out.Failed() {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "quiz username (default submission.username)")
	cmd.Flags().StringVar(&codeLink, "code-link", "", "link to the agent code (default submission.code_link)")
	cmd.Flags().StringVar(&questionsFile, "questions", "", "JSON file with previously fetched questions")
	cmd.Flags().StringVar(&batchID, "batch-id", "", "id that tags this run's progress events (default random)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "questions answered in parallel")
	return cmd
}
