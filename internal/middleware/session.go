package middleware

import (
	"cryptowallet/internal/domain"
)

// Session is the per-connection authentication state.
// It holds a back reference to the logged-in user; the account service owns the user.
type Session struct {
	ConnID string
	user   *domain.User
}

// User returns the logged-in user, or nil for a guest connection
func (s *Session) User() *domain.User {
	return s.user
}

// LoggedIn reports whether a user is attached to the session
func (s *Session) LoggedIn() bool {
	return s.user != nil
}

// Registry tracks every open connection's session and which users are logged in.
// It is only touched from the dispatch loop and is not safe for concurrent use.
type Registry struct {
	sessions map[string]*Session
	active   map[string]string // username -> connection id
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		active:   make(map[string]string),
	}
}

// Open registers a guest session for a newly accepted connection.
// Opening an id twice returns the existing session.
func (r *Registry) Open(connID string) *Session {
	if sess, ok := r.sessions[connID]; ok {
		return sess
	}
	sess := &Session{ConnID: connID}
	r.sessions[connID] = sess
	return sess
}

// Attach logs user in on sess.
// Returns ErrAlreadyLoggedIn when the session already has a user or the user
// is logged in on another connection.
func (r *Registry) Attach(sess *Session, user *domain.User) error {
	if sess.user != nil {
		return domain.ErrAlreadyLoggedIn
	}
	if _, inUse := r.active[user.Username]; inUse {
		return domain.ErrAlreadyLoggedIn
	}
	sess.user = user
	r.active[user.Username] = sess.ConnID
	return nil
}

// Detach logs the session's user out. It reports whether a user was attached.
func (r *Registry) Detach(sess *Session) bool {
	if sess.user == nil {
		return false
	}
	delete(r.active, sess.user.Username)
	sess.user = nil
	return true
}

// Close detaches and forgets the session of a closed connection
func (r *Registry) Close(connID string) {
	sess, ok := r.sessions[connID]
	if !ok {
		return
	}
	r.Detach(sess)
	delete(r.sessions, connID)
}

// Len returns the number of open connections
func (r *Registry) Len() int {
	return len(r.sessions)
}

// ActiveUsers returns the number of logged-in users
func (r *Registry) ActiveUsers() int {
	return len(r.active)
}
