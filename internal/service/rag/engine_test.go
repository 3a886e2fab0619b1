package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"ragchat/internal/models"
)

type fakeEmbedder struct {
	err error
}

func (f fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = []float64{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

type fakeChatModel struct {
	reply    string
	err      error
	received []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.received = input
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{Role: schema.Assistant, Content: f.reply}, nil
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported in fake")
}

type fakeSearcher struct {
	passages []models.Passage
	err      error

	gotDocIDs []string
	gotTopK   int
}

func (f *fakeSearcher) SearchChunks(_ context.Context, _ []float64, documentIDs []string, topK int) ([]models.Passage, error) {
	f.gotDocIDs = documentIDs
	f.gotTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.passages, nil
}

func TestAnswerFormatsSources(t *testing.T) {
	searcher := &fakeSearcher{passages: []models.Passage{
		{Content: "first passage", Filename: "guide.pdf", DocumentID: "d1", Score: 0.91234},
		{Content: "second passage", Filename: "guide.pdf", DocumentID: "d1", Score: 0.5},
		{Content: "third passage", Filename: "notes.pdf", DocumentID: "d2", Score: 0.25},
	}}
	chat := &fakeChatModel{reply: "the answer"}
	engine := NewEngine(fakeEmbedder{}, chat, searcher, 25)

	result, err := engine.Answer(context.Background(), "what is this?", []string{"d1", "d2"}, nil)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if result.Answer != "the answer" {
		t.Fatalf("unexpected answer: %q", result.Answer)
	}
	if result.RetrievedCount != 3 {
		t.Fatalf("expected retrieved count 3, got %d", result.RetrievedCount)
	}
	// One citation per passage, duplicates kept, three decimal places.
	want := []string{
		"guide.pdf (score: 0.912)",
		"guide.pdf (score: 0.500)",
		"notes.pdf (score: 0.250)",
	}
	if len(result.Sources) != len(want) {
		t.Fatalf("expected %d sources, got %d", len(want), len(result.Sources))
	}
	for i, source := range want {
		if result.Sources[i] != source {
			t.Fatalf("source %d: want %q got %q", i, source, result.Sources[i])
		}
	}
}

func TestAnswerPassesScopeAndTopK(t *testing.T) {
	searcher := &fakeSearcher{}
	engine := NewEngine(fakeEmbedder{}, &fakeChatModel{reply: "ok"}, searcher, 7)

	if _, err := engine.Answer(context.Background(), "q", []string{"a", "b"}, nil); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if len(searcher.gotDocIDs) != 2 || searcher.gotDocIDs[0] != "a" || searcher.gotDocIDs[1] != "b" {
		t.Fatalf("scope not forwarded: %v", searcher.gotDocIDs)
	}
	if searcher.gotTopK != 7 {
		t.Fatalf("expected topK 7, got %d", searcher.gotTopK)
	}
}

func TestConfidenceIsOneOnVerbatimMatch(t *testing.T) {
	question := "how do I reset my password"
	searcher := &fakeSearcher{passages: []models.Passage{
		{Content: "unrelated text", Filename: "a.pdf"},
		{Content: "FAQ: how do I reset my password? Click Settings.", Filename: "a.pdf"},
	}}
	engine := NewEngine(fakeEmbedder{}, &fakeChatModel{reply: "ok"}, searcher, 25)

	result, err := engine.Answer(context.Background(), question, []string{"d1"}, nil)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if result.Confidence == nil || *result.Confidence != 1.0 {
		t.Fatalf("expected confidence 1.0, got %v", result.Confidence)
	}
}

func TestConfidenceAbsentWithoutVerbatimMatch(t *testing.T) {
	searcher := &fakeSearcher{passages: []models.Passage{
		{Content: "password reset instructions", Filename: "a.pdf"},
	}}
	engine := NewEngine(fakeEmbedder{}, &fakeChatModel{reply: "ok"}, searcher, 25)

	result, err := engine.Answer(context.Background(), "how do I reset my password", []string{"d1"}, nil)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if result.Confidence != nil {
		t.Fatalf("expected absent confidence, got %v", *result.Confidence)
	}
}

func TestAnswerBuildsGroundedPrompt(t *testing.T) {
	searcher := &fakeSearcher{passages: []models.Passage{
		{Content: "passage alpha", Filename: "a.pdf"},
		{Content: "passage beta", Filename: "b.pdf"},
	}}
	chat := &fakeChatModel{reply: "ok"}
	engine := NewEngine(fakeEmbedder{}, chat, searcher, 25)

	history := []models.Message{
		{Role: models.RoleUser, Content: "earlier question"},
		{Role: models.RoleAssistant, Content: "earlier answer"},
	}
	if _, err := engine.Answer(context.Background(), "current question", []string{"d"}, history); err != nil {
		t.Fatalf("answer: %v", err)
	}

	msgs := chat.received
	if len(msgs) != 4 {
		t.Fatalf("expected system + 2 history + question, got %d messages", len(msgs))
	}
	system := msgs[0]
	if system.Role != schema.System {
		t.Fatalf("expected system message first, got %s", system.Role)
	}
	if !strings.Contains(system.Content, "Current date:") {
		t.Fatalf("system prompt missing current date")
	}
	for _, content := range []string{"passage alpha", "passage beta", refusalPhrase} {
		if !strings.Contains(system.Content, content) {
			t.Fatalf("system prompt missing %q", content)
		}
	}
	if msgs[1].Role != schema.User || msgs[1].Content != "earlier question" {
		t.Fatalf("history user turn out of place: %+v", msgs[1])
	}
	if msgs[2].Role != schema.Assistant || msgs[2].Content != "earlier answer" {
		t.Fatalf("history assistant turn out of place: %+v", msgs[2])
	}
	if msgs[3].Role != schema.User || msgs[3].Content != "current question" {
		t.Fatalf("question must close the sequence: %+v", msgs[3])
	}
}

func TestAnswerPropagatesBackendFailures(t *testing.T) {
	embedErr := errors.New("embedder down")
	engine := NewEngine(fakeEmbedder{err: embedErr}, &fakeChatModel{reply: "ok"}, &fakeSearcher{}, 25)
	if _, err := engine.Answer(context.Background(), "q", []string{"d"}, nil); !errors.Is(err, embedErr) {
		t.Fatalf("expected embed error, got %v", err)
	}

	genErr := errors.New("generator down")
	engine = NewEngine(fakeEmbedder{}, &fakeChatModel{err: genErr}, &fakeSearcher{}, 25)
	if _, err := engine.Answer(context.Background(), "q", []string{"d"}, nil); !errors.Is(err, genErr) {
		t.Fatalf("expected generator error, got %v", err)
	}

	searchErr := errors.New("store down")
	engine = NewEngine(fakeEmbedder{}, &fakeChatModel{reply: "ok"}, &fakeSearcher{err: searchErr}, 25)
	if _, err := engine.Answer(context.Background(), "q", []string{"d"}, nil); !errors.Is(err, searchErr) {
		t.Fatalf("expected search error, got %v", err)
	}
}
