package chat

import (
	"context"
	"errors"
	"fmt"

	"ragchat/internal/models"
	"ragchat/internal/service/rag"
	"ragchat/internal/session"
)

// QueryEngine is the retrieval-augmented answer step the orchestrator
// delegates to.
type QueryEngine interface {
	Answer(ctx context.Context, question string, documentIDs []string, history []models.Message) (*rag.Result, error)
}

// Service coordinates one conversation turn: resolve or create the session,
// fetch history, delegate to the query engine, and persist the new turn.
type Service struct {
	engine   QueryEngine
	sessions *session.Manager
}

// TurnResult is what one completed turn returns to the caller.
type TurnResult struct {
	Answer    string
	Sources   []string
	SessionID string
}

// NewService builds the conversation orchestrator.
func NewService(engine QueryEngine, sessions *session.Manager) *Service {
	return &Service{engine: engine, sessions: sessions}
}

// HandleTurn processes a question against the scoped documents within the
// given session. An empty sessionID starts a new session. A sessionID whose
// session has expired is healed transparently: a fresh session replaces it and
// the turn proceeds with empty history, so callers holding a stale id never
// see an error. The returned session id may therefore differ from the one
// supplied; callers must persist it for the next turn.
func (s *Service) HandleTurn(ctx context.Context, question string, documentIDs []string, sessionID string) (*TurnResult, error) {
	if sessionID == "" {
		created, err := s.sessions.CreateSession(ctx)
		if err != nil {
			return nil, err
		}
		sessionID = created.SessionID
	}

	history, err := s.sessions.GetHistory(ctx, sessionID)
	if err != nil {
		// Only absence is recovered here; storage failures propagate.
		if !errors.Is(err, session.ErrSessionNotFound) {
			return nil, err
		}
		created, err := s.sessions.CreateSession(ctx)
		if err != nil {
			return nil, err
		}
		sessionID = created.SessionID
		history = nil
	}

	result, err := s.engine.Answer(ctx, question, documentIDs, history)
	if err != nil {
		return nil, err
	}

	turns := []models.Message{
		{Role: models.RoleUser, Content: question},
		{Role: models.RoleAssistant, Content: result.Answer},
	}
	// A turn that cannot be persisted is a failed turn, even though the
	// answer was already generated.
	if err := s.sessions.AppendMessages(ctx, sessionID, turns); err != nil {
		return nil, fmt.Errorf("persist turn: %w", err)
	}

	return &TurnResult{
		Answer:    result.Answer,
		Sources:   result.Sources,
		SessionID: sessionID,
	}, nil
}
