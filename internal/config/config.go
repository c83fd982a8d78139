// Package config reads advisor-sim settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend kinds.
const (
	BackendOpenAI = "openai"
	BackendGRPC   = "grpc"
)

// Config holds all application configuration.
type Config struct {
	Backend      string
	BaseURL      string
	APIKey       string
	GRPCAddr     string
	Candidates   []string // empty = built-in order
	Timeout      time.Duration
	MaxTokens    int
	Temperature  float64
	Examples     int
	StrictModels bool   // only meta-tensor failures move to the next candidate
	Seed         uint64 // 0 = clock seeded

	CorpusCSV    string
	CorpusJSON   string
	CorpusWatch  bool
	KnowledgeDir string
	PersonasFile string
	StrategyFile string
	FallbackFile string

	DBPath  string
	Port    string
	Verbose bool
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := Read()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Read reads configuration without validating it. Offline commands that
// never reach a backend use it.
func Read() *Config {
	return &Config{
		Backend:      strings.ToLower(getEnv("ADVISOR_BACKEND", BackendOpenAI)),
		BaseURL:      getEnv("ADVISOR_BASE_URL", ""),
		APIKey:       getEnv("ADVISOR_API_KEY", ""),
		GRPCAddr:     getEnv("ADVISOR_GRPC_ADDR", ""),
		Candidates:   getEnvList("ADVISOR_CANDIDATES"),
		Timeout:      time.Duration(getEnvInt("ADVISOR_TIMEOUT_SEC", 30)) * time.Second,
		MaxTokens:    getEnvInt("ADVISOR_MAX_TOKENS", 250),
		Temperature:  getEnvFloat("ADVISOR_TEMPERATURE", 0.8),
		Examples:     getEnvInt("ADVISOR_EXAMPLES", 2),
		StrictModels: getEnvBool("ADVISOR_STRICT_MODELS", false),
		Seed:         getEnvUint("ADVISOR_SEED", 0),
		CorpusCSV:    getEnv("CORPUS_CSV", ""),
		CorpusJSON:   getEnv("CORPUS_JSON", ""),
		CorpusWatch:  getEnvBool("CORPUS_WATCH", false),
		KnowledgeDir: getEnv("KNOWLEDGE_DIR", ""),
		PersonasFile: getEnv("PERSONAS_FILE", ""),
		StrategyFile: getEnv("STRATEGY_FILE", ""),
		FallbackFile: getEnv("FALLBACK_FILE", ""),
		DBPath:       getEnv("ADVISOR_DB", "advisor.db"),
		Port:         getEnv("PORT", "8080"),
		Verbose:      getEnvBool("LOG_VERBOSE", false),
	}
}

// Validate checks backend selection, endpoints and numeric ranges.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOpenAI:
		if c.BaseURL == "" {
			return fmt.Errorf("ADVISOR_BASE_URL is required for the openai backend")
		}
		if c.APIKey == "" {
			return fmt.Errorf("ADVISOR_API_KEY is required for the openai backend")
		}
	case BackendGRPC:
		if c.GRPCAddr == "" {
			return fmt.Errorf("ADVISOR_GRPC_ADDR is required for the grpc backend")
		}
	default:
		return fmt.Errorf("ADVISOR_BACKEND must be %q or %q, got %q", BackendOpenAI, BackendGRPC, c.Backend)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("ADVISOR_TIMEOUT_SEC must be > 0")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("ADVISOR_MAX_TOKENS must be > 0")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("ADVISOR_TEMPERATURE must be within [0, 2]")
	}
	if c.Examples < 0 {
		return fmt.Errorf("ADVISOR_EXAMPLES must be >= 0")
	}
	if c.CorpusWatch && c.CorpusCSV == "" && c.CorpusJSON == "" {
		return fmt.Errorf("CORPUS_WATCH needs CORPUS_CSV or CORPUS_JSON")
	}
	if c.DBPath == "" {
		return fmt.Errorf("ADVISOR_DB cannot be empty")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	return nil
}

// CorpusPaths lists the configured corpus files, CSV first.
func (c *Config) CorpusPaths() []string {
	var out []string
	for _, p := range []string{c.CorpusCSV, c.CorpusJSON} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvUint(key string, fallback uint64) uint64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvList(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
