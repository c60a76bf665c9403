package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/quiz-agent/internal/app"
	"github.com/example/quiz-agent/internal/config"
)

func main() {
	cfg, err := config.Load(config.Options{ConfigFile: os.Getenv("QUIZAGENT_CONFIG")})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := a.Serve(ctx, cfg.Server.Addr); err != nil {
		a.Logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
