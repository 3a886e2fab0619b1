package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"ragchat/internal/models"
)

const sessionPrefix = "chat_session:"

// ErrSessionNotFound signals a session that is absent, expired, or deleted.
var ErrSessionNotFound = errors.New("session not found or expired")

// Manager owns the session lifecycle: creation, bounded history append with
// sliding TTL renewal, deletion, and diagnostic introspection. It is the only
// writer of session content. Reads do not renew the TTL; the append path does,
// so idle sessions being polled for info do not outlive the timeout.
type Manager struct {
	store       Store
	ttl         time.Duration
	maxMessages int
}

// NewManager builds a session manager over the given store.
func NewManager(store Store, ttl time.Duration, maxMessages int) *Manager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxMessages <= 0 {
		maxMessages = 20
	}
	return &Manager{store: store, ttl: ttl, maxMessages: maxMessages}
}

func sessionKey(sessionID string) string {
	return sessionPrefix + sessionID
}

// CreateSession writes an empty session under a fresh id with the full TTL.
func (m *Manager) CreateSession(ctx context.Context) (*models.Session, error) {
	session := &models.Session{
		SessionID: uuid.NewString(),
		Messages:  []models.Message{},
		CreatedAt: strconv.FormatInt(time.Now().UnixMilli(), 10),
	}
	if err := m.writeSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// GetHistory returns the ordered message history, or ErrSessionNotFound when
// the session is absent. It does not renew the TTL.
func (m *Manager) GetHistory(ctx context.Context, sessionID string) ([]models.Message, error) {
	session, err := m.readSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Messages, nil
}

// AppendMessages concatenates the turns onto the existing history, truncates
// to the most recent maxMessages entries, and rewrites the session with a
// renewed TTL. Absence is ErrSessionNotFound; the caller decides whether that
// should trigger a new-session fallback.
func (m *Manager) AppendMessages(ctx context.Context, sessionID string, messages []models.Message) error {
	session, err := m.readSession(ctx, sessionID)
	if err != nil {
		return err
	}
	session.Messages = append(session.Messages, messages...)
	if len(session.Messages) > m.maxMessages {
		session.Messages = session.Messages[len(session.Messages)-m.maxMessages:]
	}
	if err := m.writeSession(ctx, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// DeleteSession removes the session, reporting whether it existed. Deleting a
// missing session is a no-op, not an error.
func (m *Manager) DeleteSession(ctx context.Context, sessionID string) (bool, error) {
	return m.store.Del(ctx, sessionKey(sessionID))
}

// SessionExists reports whether the session key is currently present.
func (m *Manager) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	return m.store.Exists(ctx, sessionKey(sessionID))
}

// Renew resets the TTL countdown without modifying content.
func (m *Manager) Renew(ctx context.Context, sessionID string) (bool, error) {
	return m.store.Expire(ctx, sessionKey(sessionID), m.ttl)
}

// GetSessionInfo returns diagnostic metadata, or nil when the session is gone.
func (m *Manager) GetSessionInfo(ctx context.Context, sessionID string) (*models.SessionInfo, error) {
	session, err := m.readSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	ttl, err := m.store.TTL(ctx, sessionKey(sessionID))
	if err != nil {
		return nil, fmt.Errorf("session ttl: %w", err)
	}
	return m.sessionInfo(session, ttl), nil
}

// ListSessions enumerates all live sessions by prefix scan and returns their
// metadata sorted by created_at descending. A session whose created_at is
// missing sorts as the empty string, i.e. oldest. O(N) scan for diagnostics,
// not for scale.
func (m *Manager) ListSessions(ctx context.Context) ([]models.SessionInfo, error) {
	keys, err := m.store.Keys(ctx, sessionPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	sessions := make([]models.SessionInfo, 0, len(keys))
	for _, key := range keys {
		sessionID := strings.TrimPrefix(key, sessionPrefix)
		session, err := m.readSession(ctx, sessionID)
		if err != nil {
			// Expired between scan and fetch.
			if errors.Is(err, ErrSessionNotFound) {
				continue
			}
			return nil, err
		}
		ttl, err := m.store.TTL(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("session ttl: %w", err)
		}
		sessions = append(sessions, *m.sessionInfo(session, ttl))
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt > sessions[j].CreatedAt
	})
	return sessions, nil
}

func (m *Manager) sessionInfo(session *models.Session, ttl time.Duration) *models.SessionInfo {
	info := &models.SessionInfo{
		SessionID:    session.SessionID,
		MessageCount: len(session.Messages),
		CreatedAt:    session.CreatedAt,
		TTLRemaining: int64(ttl / time.Second),
	}
	if n := len(session.Messages); n > 0 {
		last := session.Messages[n-1]
		info.LastMessage = &last
	}
	return info
}

func (m *Manager) readSession(ctx context.Context, sessionID string) (*models.Session, error) {
	raw, ok, err := m.store.Get(ctx, sessionKey(sessionID))
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return nil, ErrSessionNotFound
	}
	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (m *Manager) writeSession(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return m.store.Set(ctx, sessionKey(session.SessionID), string(data), m.ttl)
}
