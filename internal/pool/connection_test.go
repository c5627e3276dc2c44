package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/smpp-server/pkg/smpp"
)

func TestSessionRegistryAddGetRemove(t *testing.T) {
	r := NewSessionRegistry()
	s := &smpp.Session{ID: "session-a"}

	r.Add(s)
	assert.Equal(t, 1, r.Len())

	got, err := r.Get("session-a")
	require.NoError(t, err)
	assert.Same(t, s, got)

	r.Remove("session-a")
	assert.Zero(t, r.Len())
	_, err = r.Get("session-a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRegistryAddIsIdempotentOnID(t *testing.T) {
	r := NewSessionRegistry()
	r.Add(&smpp.Session{ID: "dup"})
	r.Add(&smpp.Session{ID: "dup"})
	assert.Equal(t, 1, r.Len())
}

func TestSessionRegistryRemoveMissingIsNoop(t *testing.T) {
	r := NewSessionRegistry()
	r.Remove("never-registered")
	assert.Zero(t, r.Len())
}

func TestSessionRegistryEach(t *testing.T) {
	r := NewSessionRegistry()
	r.Add(&smpp.Session{ID: "a"})
	r.Add(&smpp.Session{ID: "b"})

	seen := map[string]bool{}
	r.Each(func(s *smpp.Session) { seen[s.ID] = true })
	assert.Len(t, seen, 2)
	assert.True(t, seen["a"] && seen["b"])
}
