package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"ragchat/internal/models"
)

// Searcher ranks indexed chunks against a query vector within a document
// scope.
type Searcher interface {
	SearchChunks(ctx context.Context, queryVec []float64, documentIDs []string, topK int) ([]models.Passage, error)
}

// Result is the outcome of one retrieval-augmented answer.
type Result struct {
	Answer         string
	Sources        []string
	RetrievedCount int
	// Confidence is 1.0 when the question appears verbatim inside a retrieved
	// passage, and nil otherwise. Absent means unknown, not zero.
	Confidence *float64
}

// Engine answers a question against a set of scoped documents: embed the
// question, retrieve the most similar in-scope passages, assemble a grounded
// prompt with the conversation history, and invoke the generator. Backend
// failures fail the whole operation; there is no degraded mode.
type Engine struct {
	embedder  embedding.Embedder
	chatModel model.BaseChatModel
	searcher  Searcher
	topK      int
}

// NewEngine builds a query engine with a fixed retrieval depth.
func NewEngine(embedder embedding.Embedder, chatModel model.BaseChatModel, searcher Searcher, topK int) *Engine {
	if topK <= 0 {
		topK = 25
	}
	return &Engine{
		embedder:  embedder,
		chatModel: chatModel,
		searcher:  searcher,
		topK:      topK,
	}
}

// Answer runs one retrieval+generation turn.
func (e *Engine) Answer(ctx context.Context, question string, documentIDs []string, history []models.Message) (*Result, error) {
	vectors, err := e.embedder.EmbedStrings(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embed question: empty embedding response")
	}

	passages, err := e.searcher.SearchChunks(ctx, vectors[0], documentIDs, e.topK)
	if err != nil {
		return nil, fmt.Errorf("search passages: %w", err)
	}

	messages := e.buildMessages(question, passages, history)
	reply, err := e.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &Result{
		Answer:         reply.Content,
		Sources:        buildSources(passages),
		RetrievedCount: len(passages),
		Confidence:     confidenceScore(question, passages),
	}, nil
}

// buildMessages assembles the grounded prompt: the system block carries the
// current date, retrieved passages, and rules; prior turns follow in their
// original alternating order, and the question closes the sequence.
func (e *Engine) buildMessages(question string, passages []models.Passage, history []models.Message) []*schema.Message {
	currentDate := time.Now().Format("January 2, 2006")
	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, &schema.Message{
		Role:    schema.System,
		Content: buildSystemPrompt(currentDate, passages),
	})
	for _, msg := range history {
		role := schema.User
		if msg.Role == models.RoleAssistant {
			role = schema.Assistant
		}
		messages = append(messages, &schema.Message{
			Role:    role,
			Content: msg.Content,
		})
	}
	messages = append(messages, &schema.Message{
		Role:    schema.User,
		Content: question,
	})
	return messages
}

// buildSources formats one citation per retrieved passage in retrieval order.
// A document contributing multiple passages appears multiple times.
func buildSources(passages []models.Passage) []string {
	if len(passages) == 0 {
		return nil
	}
	sources := make([]string, len(passages))
	for i, p := range passages {
		sources[i] = fmt.Sprintf("%s (score: %.3f)", p.Filename, p.Score)
	}
	return sources
}

// confidenceScore is a deliberately minimal placeholder heuristic: 1.0 when
// the literal question is a substring of some passage, absent otherwise.
func confidenceScore(question string, passages []models.Passage) *float64 {
	for _, p := range passages {
		if strings.Contains(p.Content, question) {
			score := 1.0
			return &score
		}
	}
	return nil
}
