package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration, loaded once at startup and passed
// explicitly to the components that need it.
type Config struct {
	Quiz         QuizConfig         `mapstructure:"quiz"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Search       SearchConfig       `mapstructure:"search"`
	Encyclopedia EncyclopediaConfig `mapstructure:"encyclopedia"`
	Files        FilesConfig        `mapstructure:"files"`
	Batch        BatchConfig        `mapstructure:"batch"`
	Submission   SubmissionConfig   `mapstructure:"submission"`
	Log          LogConfig          `mapstructure:"log"`
	Server       ServerConfig       `mapstructure:"server"`
}

type QuizConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LLMConfig configures the completion service. Temperature influences answer
// determinism; MaxTokens caps response length.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type SearchConfig struct {
	Provider   string  `mapstructure:"provider"`
	Endpoint   string  `mapstructure:"endpoint"`
	APIKey     string  `mapstructure:"api_key"`
	MaxResults int     `mapstructure:"max_results"`
	RateLimit  float64 `mapstructure:"rate_limit"`
	CacheSize  int     `mapstructure:"cache_size"`
}

type EncyclopediaConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Sentences int    `mapstructure:"sentences"`
}

type FilesConfig struct {
	MaxPromptBytes int `mapstructure:"max_prompt_bytes"`
}

type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

type SubmissionConfig struct {
	Username string `mapstructure:"username"`
	CodeLink string `mapstructure:"code_link"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigFile is an explicit config file path. When empty, quizagent.yaml is
	// looked up in the working directory and $HOME/.quizagent.
	ConfigFile string
	// EnvFile is loaded into the process environment before anything else is
	// read. Defaults to ".env"; a missing file is ignored.
	EnvFile string
	// Overrides take precedence over every other source (used for CLI flags).
	Overrides map[string]any
}

var providerModel = map[string]string{
	"groq":      "llama3-70b-8192",
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-3-5-sonnet-latest",
	"gemini":    "gemini-1.5-flash",
}

var providerKeyEnv = map[string]string{
	"groq":      "GROQ_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GOOGLE_API_KEY",
}

// Load reads configuration from, in increasing precedence: defaults, config
// file, environment (.env included) and overrides.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("QUIZAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("search.api_key", "QUIZAGENT_SEARCH_API_KEY", "TAVILY_API_KEY")
	_ = v.BindEnv("submission.username", "QUIZAGENT_SUBMISSION_USERNAME", "QUIZ_USERNAME")
	_ = v.BindEnv("submission.code_link", "QUIZAGENT_SUBMISSION_CODE_LINK", "QUIZ_CODE_LINK")

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("quizagent")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.quizagent")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	for k, val := range opts.Overrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("quiz.base_url", "https://gaia-quiz-api.huggingface.co")
	v.SetDefault("quiz.timeout", 30*time.Second)

	v.SetDefault("llm.provider", "groq")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 512)
	v.SetDefault("llm.timeout", 45*time.Second)

	v.SetDefault("search.provider", "duckduckgo")
	v.SetDefault("search.endpoint", "")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.max_results", 3)
	v.SetDefault("search.rate_limit", 1.0)
	v.SetDefault("search.cache_size", 128)

	v.SetDefault("encyclopedia.endpoint", "https://en.wikipedia.org/w/api.php")
	v.SetDefault("encyclopedia.sentences", 3)

	v.SetDefault("files.max_prompt_bytes", 16*1024)
	v.SetDefault("batch.concurrency", 1)

	v.SetDefault("submission.username", "")
	v.SetDefault("submission.code_link", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	addr := ":8080"
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		addr = ":" + port
	}
	v.SetDefault("server.addr", addr)
}

func (c *Config) normalize() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.Search.Provider = strings.ToLower(strings.TrimSpace(c.Search.Provider))
	c.Quiz.BaseURL = strings.TrimRight(c.Quiz.BaseURL, "/")
	if c.LLM.Model == "" {
		c.LLM.Model = providerModel[c.LLM.Provider]
	}
	if c.LLM.APIKey == "" {
		if env, ok := providerKeyEnv[c.LLM.Provider]; ok {
			c.LLM.APIKey = strings.TrimSpace(os.Getenv(env))
		}
	}
	if c.Batch.Concurrency < 1 {
		c.Batch.Concurrency = 1
	}
}

// Validate rejects settings no component can run with. A missing API key is
// not checked here; it surfaces on the first completion call.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "groq", "openai", "anthropic", "gemini", "mock":
	default:
		return fmt.Errorf("unsupported llm provider %q", c.LLM.Provider)
	}
	switch c.Search.Provider {
	case "duckduckgo", "tavily":
	default:
		return fmt.Errorf("unsupported search provider %q", c.Search.Provider)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be within [0, 2], got %v", c.LLM.Temperature)
	}
	if c.Quiz.BaseURL == "" {
		return errors.New("quiz.base_url is required")
	}
	return nil
}
