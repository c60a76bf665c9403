package app

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/example/quiz-agent/internal/agents"
	"github.com/example/quiz-agent/internal/api"
	"github.com/example/quiz-agent/internal/config"
	"github.com/example/quiz-agent/internal/observability"
	"github.com/example/quiz-agent/internal/orchestrator"
	"github.com/example/quiz-agent/internal/providers/llm"
	"github.com/example/quiz-agent/internal/quiz"
	"github.com/example/quiz-agent/internal/tools"
)

// App is the fully wired component graph.
type App struct {
	Config   *config.Config
	Logger   *observability.Logger
	Metrics  *observability.Metrics
	Registry *prometheus.Registry

	Quiz    *quiz.Client
	Tools   *tools.Registry
	LLM     llm.Client
	Agent   *agents.QuizAgent
	Hub     *orchestrator.Hub
	Runner  *orchestrator.Runner
	Service *orchestrator.Service
}

// Option customizes construction, mostly for tests.
type Option func(*App)

// WithLLM replaces the configured completion client.
func WithLLM(c llm.Client) Option { return func(a *App) { a.LLM = c } }

// WithLogger replaces the logger built from config.
func WithLogger(l *observability.Logger) Option { return func(a *App) { a.Logger = l } }

// New builds every component from cfg.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{Config: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = observability.NewLogger(observability.LogConfig{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			Output: os.Stderr,
		})
	}
	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = observability.MustNewMetrics(a.Registry)

	if a.LLM == nil {
		client, err := llm.NewFromConfig(cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("completion client: %w", err)
		}
		a.LLM = client
	}

	a.Quiz = quiz.NewClient(cfg.Quiz.BaseURL, cfg.Quiz.Timeout)
	provider, err := searchProvider(cfg.Search)
	if err != nil {
		return nil, err
	}
	questions := &tools.QuestionsTool{Source: a.Quiz}
	a.Tools = tools.NewRegistry(
		tools.NewWebSearchTool(provider, tools.SearchOptions{
			MaxResults: cfg.Search.MaxResults,
			RateLimit:  cfg.Search.RateLimit,
			CacheSize:  cfg.Search.CacheSize,
		}),
		tools.NewEncyclopediaTool(tools.EncyclopediaOptions{
			Endpoint:  cfg.Encyclopedia.Endpoint,
			Sentences: cfg.Encyclopedia.Sentences,
			RateLimit: cfg.Search.RateLimit,
			CacheSize: cfg.Search.CacheSize,
		}),
		&tools.FileDownloadTool{Files: a.Quiz},
		questions,
	)

	a.Agent = &agents.QuizAgent{
		Policy: agents.NewKeywordPolicy(),
		Executor: &agents.ToolExecutor{
			Registry: a.Tools,
			Logger:   a.Logger.Component("tools"),
			Metrics:  a.Metrics,
		},
		Composer: &agents.Composer{
			Client:       a.LLM,
			Options:      llm.GenerateOptions{Temperature: cfg.LLM.Temperature, MaxTokens: cfg.LLM.MaxTokens},
			MaxToolBytes: cfg.Files.MaxPromptBytes,
			Logger:       a.Logger.Component("composer"),
			Metrics:      a.Metrics,
		},
		Logger: a.Logger.Component("agent"),
	}
	a.Hub = orchestrator.NewHub()
	a.Runner = &orchestrator.Runner{
		Agent:       a.Agent,
		Concurrency: cfg.Batch.Concurrency,
		Hub:         a.Hub,
		Logger:      a.Logger.Component("batch"),
		Metrics:     a.Metrics,
	}
	a.Service = &orchestrator.Service{
		Questions: questions,
		Submitter: &tools.SubmitTool{Target: a.Quiz},
		Runner:    a.Runner,
		Logger:    a.Logger.Component("service"),
	}
	return a, nil
}

// Handler returns the HTTP presentation shell.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	srv := &api.Server{Service: a.Service, Hub: a.Hub, Gatherer: a.Registry, Logger: a.Logger.Component("api")}
	srv.RegisterRoutes(mux)
	return api.CORS(api.RequestLog(a.Logger.Component("http"), mux))
}

func searchProvider(cfg config.SearchConfig) (tools.SearchProvider, error) {
	switch cfg.Provider {
	case "", "duckduckgo":
		return tools.NewDuckDuckGo(cfg.Endpoint, nil), nil
	case "tavily":
		return tools.NewTavily(cfg.APIKey, cfg.Endpoint, cfg.MaxResults, nil), nil
	}
	return nil, fmt.Errorf("unsupported search provider %q", cfg.Provider)
}
