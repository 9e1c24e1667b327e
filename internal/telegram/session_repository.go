package telegram

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"garden-planner/internal/clock"
	sessiondb "garden-planner/internal/telegram/session_db"
)

const (
	sessionType  = "garden"
	sessionState = "editing"

	// DefaultSessionTTL is how long an idle chat keeps its current plan.
	DefaultSessionTTL = 30 * 24 * time.Hour
)

// ChatState is what a chat remembers between messages.
type ChatState struct {
	PlanID      string `json:"plan_id,omitempty"`
	VegetableID string `json:"vegetable_id,omitempty"`
}

// SessionStore loads and saves the per-user chat state.
type SessionStore interface {
	Load(ctx context.Context, userID string) (ChatState, error)
	Save(ctx context.Context, userID string, st ChatState) error
}

var _ SessionStore = (*SessionRepository)(nil)

// Session represents a stored chat session.
type Session struct {
	ID          int64
	UserID      string
	SessionType string
	State       string
	ContextData string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// ChatState unmarshals the context_data JSON field.
func (s *Session) ChatState() (ChatState, error) {
	var st ChatState
	if s.ContextData == "" {
		return st, nil
	}
	err := json.Unmarshal([]byte(s.ContextData), &st)
	return st, err
}

// SessionRepository keeps chat sessions in the telegram_sessions table.
type SessionRepository struct {
	queries *sessiondb.Queries
	clock   clock.Clock
	ttl     time.Duration
}

// NewSessionRepository creates a new SessionRepository instance.
func NewSessionRepository(db *sql.DB, clk clock.Clock, ttl time.Duration) *SessionRepository {
	if clk == nil {
		clk = clock.Real{}
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionRepository{
		queries: sessiondb.New(db),
		clock:   clk,
		ttl:     ttl,
	}
}

// GetActive retrieves the most recent non-expired session for a user.
func (sr *SessionRepository) GetActive(ctx context.Context, userID string) (*Session, error) {
	row, err := sr.queries.GetActiveSession(ctx, sessiondb.GetActiveSessionParams{
		UserID:    userID,
		ExpiresAt: sr.clock.Now(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &Session{
		ID:          row.ID,
		UserID:      row.UserID,
		SessionType: row.SessionType,
		State:       row.State,
		ContextData: row.ContextData,
		ExpiresAt:   row.ExpiresAt,
		CreatedAt:   row.CreatedAt,
	}, nil
}

// Load returns the user's chat state; a missing or expired session yields
// the zero state.
func (sr *SessionRepository) Load(ctx context.Context, userID string) (ChatState, error) {
	s, err := sr.GetActive(ctx, userID)
	if err != nil || s == nil {
		return ChatState{}, err
	}
	st, err := s.ChatState()
	if err != nil {
		return ChatState{}, fmt.Errorf("failed to decode session %d: %w", s.ID, err)
	}
	return st, nil
}

// Save stores the chat state and extends the session.
func (sr *SessionRepository) Save(ctx context.Context, userID string, st ChatState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	now := sr.clock.Now()
	expiresAt := now.Add(sr.ttl)

	s, err := sr.GetActive(ctx, userID)
	if err != nil {
		return err
	}
	if s != nil {
		if err := sr.queries.UpdateSession(ctx, sessiondb.UpdateSessionParams{
			State:       sessionState,
			ContextData: string(data),
			ExpiresAt:   expiresAt,
			ID:          s.ID,
		}); err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
		return nil
	}

	if _, err := sr.queries.CreateSession(ctx, sessiondb.CreateSessionParams{
		UserID:      userID,
		SessionType: sessionType,
		State:       sessionState,
		ContextData: string(data),
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
	}); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Delete removes a session.
func (sr *SessionRepository) Delete(ctx context.Context, sessionID int64) error {
	return sr.queries.DeleteSession(ctx, sessionID)
}

// CleanupExpired removes expired sessions and returns how many were deleted.
func (sr *SessionRepository) CleanupExpired(ctx context.Context) (int64, error) {
	return sr.queries.CleanupExpiredSessions(ctx, sr.clock.Now())
}
