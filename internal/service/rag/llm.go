package rag

import (
	"context"
	"fmt"

	embopenai "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"ragchat/internal/config"
)

// NewChatModel builds the text generator for the configured provider with the
// configured sampling parameters.
func NewChatModel(ctx context.Context, cfg *config.Config) (model.ToolCallingChatModel, error) {
	var chatModel model.ToolCallingChatModel
	var err error

	llm := cfg.LLM
	switch llm.Provider {
	case "openai":
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			ByAzure:          llm.ByAzure,
			BaseURL:          llm.BaseURL,
			APIVersion:       llm.APIVersion,
			APIKey:           llm.APIKey,
			Model:            llm.ChatModel,
			Temperature:      ptr(llm.Temperature),
			TopP:             ptr(llm.TopP),
			MaxTokens:        ptr(llm.MaxTokens),
			PresencePenalty:  ptr(llm.PresencePenalty),
			FrequencyPenalty: ptr(llm.FrequencyPenalty),
		})
	case "claude":
		var baseURLPtr *string
		if llm.BaseURL != "" {
			baseURLPtr = &llm.BaseURL
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    llm.APIKey,
			Model:     llm.ChatModel,
			BaseURL:   baseURLPtr,
			MaxTokens: llm.MaxTokens,
		})
	case "gemini":
		var client *genai.Client
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: llm.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  llm.ChatModel,
		})
	default:
		return nil, fmt.Errorf("invalid provider: %s", llm.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return chatModel, nil
}

// NewEmbedder builds the text embedder sharing the generator's endpoint and
// credentials.
func NewEmbedder(ctx context.Context, cfg *config.Config) (embedding.Embedder, error) {
	llm := cfg.LLM
	embedder, err := embopenai.NewEmbedder(ctx, &embopenai.EmbeddingConfig{
		ByAzure:    llm.ByAzure,
		BaseURL:    llm.BaseURL,
		APIVersion: llm.APIVersion,
		APIKey:     llm.APIKey,
		Model:      llm.EmbeddingModel,
		Dimensions: ptr(llm.EmbeddingDimension),
	})
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return embedder, nil
}

func ptr[T any](v T) *T {
	return &v
}
