package main

import (
	"github.com/spf13/cobra"
)

func newFetchCommand(cli *CLI) *cobra.Command {
	var taskID string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch quiz questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cli.load(cmd, nil)
			if err != nil {
				return err
			}
			if taskID != "" {
				q, perr := a.Service.FetchQuestion(cmd.Context(), taskID)
				if perr != nil {
					_ = render(cli.out, cli.output, perr)
					return errReported
				}
				return render(cli.out, cli.output, q)
			}
			set := a.Service.FetchQuestions(cmd.Context())
			if err := render(cli.out, cli.output, set); err != nil {
				return err
			}
			if set.Failed() {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&taskID, "task-id", "", "fetch a single question")
	return cmd
}
