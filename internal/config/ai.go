package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/zhouzirui/smartchat/internal/provider/ollama"
	"github.com/zhouzirui/smartchat/internal/provider/openaicompat"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
)

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider string
	Timeout  time.Duration

	OllamaURL   string
	OllamaModel string

	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string

	APIKey    string
	AccessKey string
	SecretKey string
	ArkModel  string
	BaseURL   string
	Region    string
}

func loadAIConfig(src source) (AIConfig, error) {
	provider := strings.ToLower(src.getOrDefault("MODEL_PROVIDER", ProviderOllama))

	timeout, err := src.secondsOrDefault("MODEL_TIMEOUT", 120)
	if err != nil {
		return AIConfig{}, err
	}

	cfg := AIConfig{
		Provider:      provider,
		Timeout:       timeout,
		OllamaURL:     src.getOrDefault("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:   src.getOrDefault("OLLAMA_MODEL", "llama3.2:1b"),
		OpenAIBaseURL: src.getOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:  src.get("OPENAI_API_KEY"),
		OpenAIModel:   src.get("OPENAI_MODEL"),
		APIKey:        src.get("ARK_API_KEY"),
		AccessKey:     src.get("ARK_ACCESS_KEY"),
		SecretKey:     src.get("ARK_SECRET_KEY"),
		ArkModel:      src.get("ARK_MODEL"),
		BaseURL:       src.getOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:        src.getOrDefault("ARK_REGION", "cn-beijing"),
	}

	switch provider {
	case ProviderOllama:
	case ProviderOpenAI:
		if cfg.OpenAIModel == "" {
			return AIConfig{}, fmt.Errorf("OPENAI_MODEL is required when MODEL_PROVIDER=openai")
		}
	case ProviderArk:
		if !cfg.arkEnabled() {
			return AIConfig{}, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + ARK_MODEL 或 AK/SK 组合")
		}
	default:
		return AIConfig{}, fmt.Errorf("invalid MODEL_PROVIDER value %q", provider)
	}
	return cfg, nil
}

func (c AIConfig) arkEnabled() bool {
	return c.ArkModel != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// ModelName returns the model in use for the configured provider.
func (c AIConfig) ModelName() string {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIModel
	case ProviderArk:
		return c.ArkModel
	default:
		return c.OllamaModel
	}
}

// Endpoint returns the base URL of the configured provider.
func (c AIConfig) Endpoint() string {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIBaseURL
	case ProviderArk:
		return c.BaseURL
	default:
		return c.OllamaURL
	}
}

// NewOllamaClient returns a client for the Ollama server. It is also used by
// the vision OCR engine regardless of the chat provider.
func (c AIConfig) NewOllamaClient() *ollama.Client {
	return ollama.NewClient(ollama.ClientConfig{BaseURL: c.OllamaURL, Timeout: c.Timeout})
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.BaseChatModel, error) {
	switch c.Provider {
	case ProviderOpenAI:
		cm, err := openaicompat.NewChatModel(openaicompat.Config{
			BaseURL: c.OpenAIBaseURL,
			APIKey:  c.OpenAIAPIKey,
			Model:   c.OpenAIModel,
		})
		if err != nil {
			return nil, err
		}
		return cm, nil
	case ProviderArk:
		cm, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
			BaseURL:   c.BaseURL,
			Region:    c.Region,
			APIKey:    c.APIKey,
			AccessKey: c.AccessKey,
			SecretKey: c.SecretKey,
			Model:     c.ArkModel,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create ark chat model: %w", err)
		}
		return cm, nil
	default:
		return ollama.NewChatModel(c.NewOllamaClient(), c.OllamaModel), nil
	}
}
