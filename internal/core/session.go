package core

import "sync"

// SessionState is the explicit lifecycle state of a session.
type SessionState int

const (
	// StateUnauthenticated is a connection with no display name claimed.
	StateUnauthenticated SessionState = iota
	// StateAuthenticated has a display name but no current room.
	StateAuthenticated
	// StateInRoom is authenticated and joined to exactly one room.
	StateInRoom
)

// Session is the identity and room affiliation bound to one connection.
type Session struct {
	UserID   int64
	Username string
	State    SessionState
	RoomID   int64 // valid only when State == StateInRoom
}

// Registry is the single source of truth for which connection is
// authenticated as whom. All access goes through its methods; the maps
// are never exposed.
type Registry struct {
	mu       sync.RWMutex
	sessions map[*Client]*Session // nil value: connected but unauthenticated
	names    map[string]*Client
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[*Client]*Session),
		names:    make(map[string]*Client),
	}
}

// Register adds a connection with no bound session.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[c]; !ok {
		r.sessions[c] = nil
	}
}

// Claim atomically checks display-name uniqueness and binds a session to
// the connection. Two concurrent claims for the same name cannot both
// succeed. The user id is filled in later by Bind once the durable user
// is upserted.
func (r *Registry) Claim(c *Client, username string) *CoreError {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess := r.sessions[c]; sess != nil {
		return coreError(ErrCodeBadRequest, "Already authenticated")
	}
	if _, taken := r.names[username]; taken {
		return coreError(ErrCodeUsernameTaken, "Username is already taken")
	}

	r.sessions[c] = &Session{Username: username, State: StateAuthenticated}
	r.names[username] = c
	return nil
}

// Unclaim rolls back a Claim whose durable upsert failed. The connection
// stays registered as unauthenticated.
func (r *Registry) Unclaim(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess := r.sessions[c]; sess != nil {
		delete(r.names, sess.Username)
		r.sessions[c] = nil
	}
}

// Bind records the durable user id on the connection's session.
func (r *Registry) Bind(c *Client, userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess := r.sessions[c]; sess != nil {
		sess.UserID = userID
	}
}

// Lookup returns a copy of the session bound to the connection.
// ok is false for unknown or unauthenticated connections.
func (r *Registry) Lookup(c *Client) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess := r.sessions[c]
	if sess == nil {
		return Session{}, false
	}
	return *sess, true
}

// SetRoom moves the session into a room.
func (r *Registry) SetRoom(c *Client, roomID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess := r.sessions[c]; sess != nil {
		sess.RoomID = roomID
		sess.State = StateInRoom
	}
}

// ClearRoom clears the session's room if it matches roomID.
// Returns false if the session is not in that room.
func (r *Registry) ClearRoom(c *Client, roomID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess := r.sessions[c]
	if sess == nil || sess.State != StateInRoom || sess.RoomID != roomID {
		return false
	}
	sess.RoomID = 0
	sess.State = StateAuthenticated
	return true
}

// Remove drops the connection and its session entirely. Idempotent: the
// bound session is returned exactly once, nil on repeat calls.
func (r *Registry) Remove(c *Client) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[c]
	if !ok {
		return nil
	}
	delete(r.sessions, c)
	if sess == nil {
		return nil
	}
	delete(r.names, sess.Username)
	copied := *sess
	return &copied
}

// each calls fn for every registered connection under the read lock.
// fn must not block or call back into the registry.
func (r *Registry) each(fn func(c *Client, sess *Session)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for c, sess := range r.sessions {
		fn(c, sess)
	}
}
