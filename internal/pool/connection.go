// Package pool tracks the set of live sessions in one process (spec §5, §6: a process may hold
// several concurrent sessions, each independent). It is the multi-session counterpart to a
// Session's own per-connection state: the teacher's connection-caching pool is adapted here into
// a registry keyed by session id, backed by orcaman/concurrent-map/v2 so lookups, inserts, and
// removals from reader/writer goroutines across many sessions never contend on one mutex.
package pool

import (
	"context"
	"errors"
	"sync/atomic"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/oarkflow/smpp-server/pkg/smpp"
)

// ErrNotFound is returned by Get when no session is registered under the given id.
var ErrNotFound = errors.New("smpp: no session registered under that id")

// SessionRegistry tracks every Session a process currently owns, independent of bind role. It
// does not manage lifecycle (dialing, unbinding) itself; callers register a Session after Dial
// succeeds and remove it once UnbindAndClose returns.
type SessionRegistry struct {
	sessions cmap.ConcurrentMap[string, *smpp.Session]
	count    int64
}

// NewSessionRegistry returns an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: cmap.New[*smpp.Session]()}
}

// Add registers s under its own Session.ID, overwriting any prior entry with the same id.
func (r *SessionRegistry) Add(s *smpp.Session) {
	if _, replaced := r.sessions.Get(s.ID); !replaced {
		atomic.AddInt64(&r.count, 1)
	}
	r.sessions.Set(s.ID, s)
}

// Get returns the session registered under id, or ErrNotFound.
func (r *SessionRegistry) Get(id string) (*smpp.Session, error) {
	s, ok := r.sessions.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Remove drops the session registered under id. It is not an error to remove an id that was
// never (or is no longer) present.
func (r *SessionRegistry) Remove(id string) {
	if _, ok := r.sessions.Get(id); ok {
		r.sessions.Remove(id)
		atomic.AddInt64(&r.count, -1)
	}
}

// Len returns the number of sessions currently registered.
func (r *SessionRegistry) Len() int {
	return int(atomic.LoadInt64(&r.count))
}

// Each calls fn once per registered session, in no particular order. fn must not call Add or
// Remove on this registry (concurrent-map's iterator snapshots bucket-by-bucket, not atomically
// across the whole map).
func (r *SessionRegistry) Each(fn func(s *smpp.Session)) {
	for item := range r.sessions.IterBuffered() {
		fn(item.Val)
	}
}

// CloseAll calls UnbindAndClose on every registered session and removes it from the registry,
// used for a clean process shutdown.
func (r *SessionRegistry) CloseAll(ctx context.Context) {
	for _, id := range r.sessions.Keys() {
		s, ok := r.sessions.Get(id)
		if !ok {
			continue
		}
		_ = s.UnbindAndClose(ctx)
		r.Remove(id)
	}
}
