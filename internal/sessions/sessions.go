// Package sessions gives every browser a stable screen identity and a place
// to keep per-screen view state across requests.
package sessions

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"

	"github.com/mrlokans/sunflower/internal/config"
)

const (
	keyScreenID = "screen_id"
	keyStateFmt = "state:%s"
)

const createSessionsTable = `CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	expiry REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`

// SessionManager wraps scs.SessionManager with screen helpers.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a session manager storing sessions in the
// sessions table of sqlDB, creating the table if needed.
func NewSessionManager(sqlDB *sql.DB, cfg config.Sessions) (*SessionManager, error) {
	if _, err := sqlDB.Exec(createSessionsTable); err != nil {
		return nil, fmt.Errorf("create sessions table: %w", err)
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)

	sm.Lifetime = cfg.Lifetime
	sm.IdleTimeout = cfg.Lifetime / 2

	sm.Cookie.Name = "sunflower_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// ScreenID returns the screen id of the session loaded into ctx, assigning
// one on first use.
func (sm *SessionManager) ScreenID(ctx context.Context) string {
	if id := sm.GetString(ctx, keyScreenID); id != "" {
		return id
	}
	id := uuid.NewString()
	sm.Put(ctx, keyScreenID, id)
	return id
}

// SavedState returns the view state stored under name for the session in ctx.
// ctx must carry a loaded session for as long as the state is used.
func (sm *SessionManager) SavedState(ctx context.Context, name string) *SavedState {
	return &SavedState{sm: sm, ctx: ctx, prefix: fmt.Sprintf(keyStateFmt, name) + ":"}
}

// SavedState stores view-model state in the session.
type SavedState struct {
	sm     *SessionManager
	ctx    context.Context
	prefix string
}

func (s *SavedState) Get(key string) (any, bool) {
	if !s.sm.Exists(s.ctx, s.prefix+key) {
		return nil, false
	}
	return s.sm.SessionManager.Get(s.ctx, s.prefix+key), true
}

func (s *SavedState) Set(key string, value any) {
	s.sm.Put(s.ctx, s.prefix+key, value)
}
