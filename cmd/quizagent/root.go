package main

import (
	"errors"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/quiz-agent/internal/app"
	"github.com/example/quiz-agent/internal/config"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

// errReported marks a failure whose error payload was already printed.
var errReported = errors.New("failure already reported")

// CLI holds the flags shared by every subcommand.
type CLI struct {
	out    io.Writer
	errOut io.Writer

	configFile string
	envFile    string
	logLevel   string
	provider   string
	model      string
	quizURL    string
	output     string
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	cli := &CLI{out: out, errOut: errOut}
	root := &cobra.Command{
		Use:           "quizagent",
		Short:         "Answer quiz questions with one tool call and one completion each",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&cli.configFile, "config", "", "config file (default ./quizagent.yaml or $HOME/.quizagent/quizagent.yaml)")
	flags.StringVar(&cli.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.StringVar(&cli.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&cli.provider, "provider", "", "completion provider: groq, openai, anthropic, gemini, mock")
	flags.StringVar(&cli.model, "model", "", "completion model identifier")
	flags.StringVar(&cli.quizURL, "quiz-url", "", "quiz API base URL")
	flags.StringVarP(&cli.output, "output", "o", "json", "output format: json or yaml")

	root.AddCommand(
		newFetchCommand(cli),
		newSubmitCommand(cli),
		newAskCommand(cli),
		newServeCommand(cli),
	)
	return root
}

// load reads the configuration, applying flags the user set explicitly.
func (c *CLI) load(cmd *cobra.Command, extra map[string]any) (*app.App, error) {
	overrides := map[string]any{}
	set := func(flag, key, value string) {
		if cmd.Flags().Changed(flag) {
			overrides[key] = value
		}
	}
	set("log-level", "log.level", c.logLevel)
	set("provider", "llm.provider", c.provider)
	set("model", "llm.model", c.model)
	set("quiz-url", "quiz.base_url", c.quizURL)
	for k, v := range extra {
		overrides[k] = v
	}

	cfg, err := config.Load(config.Options{
		ConfigFile: c.configFile,
		EnvFile:    c.envFile,
		Overrides:  overrides,
	})
	if err != nil {
		return nil, err
	}
	return app.New(cfg)
}
