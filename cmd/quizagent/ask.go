package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/quiz-agent/internal/models"
)

func newAskCommand(cli *CLI) *cobra.Command {
	var (
		taskID     string
		showPrompt bool
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question without submitting",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cli.load(cmd, nil)
			if err != nil {
				return err
			}
			q := models.Question{TaskID: taskID, Question: strings.Join(args, " ")}
			out, err := a.Agent.Answer(cmd.Context(), q)
			if out.Selection != nil {
				status := green("ok")
				if out.ToolFailed {
					status = red("failed")
				}
				fmt.Fprintf(cli.errOut, "%s %s %s\n", cyan("tool"), out.Selection.Tool, status)
			}
			if showPrompt {
				fmt.Fprintf(cli.errOut, "%s\n%s\n", bold("prompt"), gray(out.Prompt))
			}
			if err != nil {
				_ = render(cli.out, cli.output, models.NewErrorPayload(err))
				return errReported
			}
			return render(cli.out, cli.output, out.Answer)
		},
	}
	cmd.Flags().StringVar(&taskID, "task-id", "adhoc", "task identifier, used by the file tool")
	cmd.Flags().BoolVar(&showPrompt, "show-prompt", false, "print the composed prompt to stderr")
	return cmd
}
