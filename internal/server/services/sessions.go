package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/ageguard/internal/common"
	"github.com/dmitrijs2005/ageguard/internal/dbx"
	"github.com/dmitrijs2005/ageguard/internal/server/models"
	"github.com/google/uuid"
)

// SessionStore tracks usage sessions. Per user it is a small state machine
// (idle, active, ended) keyed by user id: the store never holds two active
// sessions for one user.
type SessionStore struct {
	d Deps
}

func NewSessionStore(d Deps) *SessionStore {
	return &SessionStore{d: d.withDefaults()}
}

// StartResult reports the user's active session. Created is false when the
// session already existed.
type StartResult struct {
	Session *models.Session `json:"session"`
	Created bool            `json:"created"`
}

// Start returns the user's active session, creating one when the user is
// idle. Starting twice does not reset the continuous-use timer.
func (s *SessionStore) Start(ctx context.Context, userID string) (*StartResult, error) {
	active, err := s.CurrentActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return &StartResult{Session: active}, nil
	}

	sess := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		StartTime: s.d.Clock.Now(),
	}
	if createErr := s.d.Repos.Sessions(s.d.DB).Create(ctx, sess); createErr != nil {
		if !dbx.IsUniqueViolation(createErr) {
			return nil, persistence("create session", createErr)
		}
		// A concurrent Start won the race.
		active, err := s.CurrentActive(ctx, userID)
		if err != nil {
			return nil, err
		}
		if active == nil {
			return nil, persistence("create session", createErr)
		}
		return &StartResult{Session: active}, nil
	}

	s.d.Logger.Info(ctx, "session started", "user_id", userID, "session_id", sess.ID)
	return &StartResult{Session: sess, Created: true}, nil
}

// End closes the user's session. Only the owner may end a session; an
// unknown or foreign id is common.ErrorNotFound. Ending an ended session
// returns it unchanged.
func (s *SessionStore) End(ctx context.Context, userID, sessionID string) (*models.Session, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, common.ErrorNotFound
	}

	repo := s.d.Repos.Sessions(s.d.DB)
	sess, err := repo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, persistence("find session", err)
	}
	if sess.UserID != userID {
		return nil, common.ErrorNotFound
	}
	if !sess.IsActive {
		return sess, nil
	}

	now := s.d.Clock.Now()
	closed, err := repo.Close(ctx, sessionID, now)
	if err != nil {
		return nil, persistence("close session", err)
	}
	if !closed {
		// Closed concurrently; report the stored end time.
		sess, err = repo.FindByID(ctx, sessionID)
		if err != nil {
			return nil, persistence("find session", err)
		}
		return sess, nil
	}

	sess.EndTime = &now
	sess.IsActive = false
	s.d.Logger.Info(ctx, "session ended", "user_id", userID, "session_id", sessionID)
	return sess, nil
}

// CurrentActive returns the user's active session, or nil when idle.
func (s *SessionStore) CurrentActive(ctx context.Context, userID string) (*models.Session, error) {
	sess, err := s.d.Repos.Sessions(s.d.DB).FindActive(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, persistence("find active session", err)
	}
	return sess, nil
}
