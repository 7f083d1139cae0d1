package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptowallet/internal/domain"
)

func TestOpenCreatesGuestSession(t *testing.T) {
	r := NewRegistry()

	sess := r.Open("c1")
	assert.False(t, sess.LoggedIn())
	assert.Nil(t, sess.User())
	assert.Same(t, sess, r.Open("c1"))
	assert.Equal(t, 1, r.Len())
}

func TestAttachAndDetach(t *testing.T) {
	r := NewRegistry()
	sess := r.Open("c1")
	alice := domain.NewUser("alice", "hash")

	require.NoError(t, r.Attach(sess, alice))
	assert.True(t, sess.LoggedIn())
	assert.Same(t, alice, sess.User())
	assert.Equal(t, 1, r.ActiveUsers())

	assert.True(t, r.Detach(sess))
	assert.False(t, sess.LoggedIn())
	assert.Equal(t, 0, r.ActiveUsers())
	assert.False(t, r.Detach(sess))
}

func TestAttachTwiceOnSameConnection(t *testing.T) {
	r := NewRegistry()
	sess := r.Open("c1")

	require.NoError(t, r.Attach(sess, domain.NewUser("alice", "hash")))
	err := r.Attach(sess, domain.NewUser("bob", "hash"))

	assert.ErrorIs(t, err, domain.ErrAlreadyLoggedIn)
	assert.Equal(t, "alice", sess.User().Username)
	assert.Equal(t, 1, r.ActiveUsers())

	// the rejected attach left bob free to log in elsewhere
	require.NoError(t, r.Attach(r.Open("c2"), domain.NewUser("bob", "hash")))
}

func TestAttachUserActiveElsewhere(t *testing.T) {
	r := NewRegistry()
	alice := domain.NewUser("alice", "hash")

	require.NoError(t, r.Attach(r.Open("c1"), alice))

	second := r.Open("c2")
	assert.ErrorIs(t, r.Attach(second, alice), domain.ErrAlreadyLoggedIn)
	assert.False(t, second.LoggedIn())
}

func TestCloseReleasesUser(t *testing.T) {
	r := NewRegistry()
	alice := domain.NewUser("alice", "hash")
	require.NoError(t, r.Attach(r.Open("c1"), alice))

	r.Close("c1")

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, r.ActiveUsers())

	// the user can log in again from a new connection
	require.NoError(t, r.Attach(r.Open("c2"), alice))
	r.Close("unknown")
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, r.ActiveUsers())
}
