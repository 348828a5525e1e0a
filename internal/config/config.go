package config

import "time"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	Chat     ChatConfig     `yaml:"chat"`
	Limits   LimitsConfig   `yaml:"limits"`
	Redis    RedisConfig    `yaml:"redis"`
}

type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

type ProviderConfig struct {
	BaseURL         string        `yaml:"base_url"`
	APIKey          string        `yaml:"api_key"`
	TranscribeModel string        `yaml:"transcribe_model"`
	ChatModel       string        `yaml:"chat_model"`
	MaxTokens       int           `yaml:"max_tokens"`
	Temperature     float64       `yaml:"temperature"`
	Timeout         time.Duration `yaml:"timeout"`
}

type ChatConfig struct {
	SystemPrompt   string `yaml:"system_prompt"`
	FallbackReply  string `yaml:"fallback_reply"`
	ContextEntries int    `yaml:"context_entries"`
	HistoryLimit   int    `yaml:"history_limit"`
}

// LimitsConfig holds per-rate-class request budgets for one window.
type LimitsConfig struct {
	Window  time.Duration  `yaml:"window"`
	Classes map[string]int `yaml:"classes"`
}

// Budget returns the request budget for a rate class, falling back to the
// "default" class for anything unlisted.
func (l LimitsConfig) Budget(class string) int {
	if n, ok := l.Classes[class]; ok {
		return n
	}
	if n, ok := l.Classes["default"]; ok {
		return n
	}
	return 100
}

// RedisConfig enables the shared rate-limit backend when Addr is set.
// Left empty, rate limiting stays in-process.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

const defaultSystemPrompt = "You are a warm, friendly voice assistant. " +
	"Keep your answers short and conversational so they sound natural when spoken aloud. " +
	"Respond in English unless the user explicitly asks for another language."

const defaultFallbackReply = "I'm sorry, I couldn't generate a response. Please try again."

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8000,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     60 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 30 * time.Second,
		},
		Provider: ProviderConfig{
			BaseURL:         "https://api.openai.com/v1",
			TranscribeModel: "whisper-1",
			ChatModel:       "gpt-3.5-turbo",
			MaxTokens:       150,
			Temperature:     0.7,
			Timeout:         30 * time.Second,
		},
		Chat: ChatConfig{
			SystemPrompt:   defaultSystemPrompt,
			FallbackReply:  defaultFallbackReply,
			ContextEntries: 8,
			HistoryLimit:   20,
		},
		Limits: LimitsConfig{
			Window: time.Minute,
			Classes: map[string]int{
				"health":     60,
				"transcribe": 10,
				"chat":       30,
				"default":    100,
			},
		},
	}
}
