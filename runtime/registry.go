package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"sync"
)

// PresenceRegistry maps an identity to its live connection.
// It is pure in-memory state: empty at start, gone at shutdown.
type PresenceRegistry struct {
	mu       sync.RWMutex
	sessions map[domain.Identity]contract.Handle // map identity -> handle
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		sessions: make(map[domain.Identity]contract.Handle),
	}
}

// Register overwrites any existing handle for the identity.
// Only one device per identity receives pushes: the last one to register.
// A nil handle is ignored.
func (r *PresenceRegistry) Register(identity domain.Identity, handle contract.Handle) {
	if handle == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[identity] = handle
}

func (r *PresenceRegistry) Lookup(identity domain.Identity) (contract.Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handle, ok := r.sessions[identity]
	return handle, ok
}

// Unregister removes every identity currently bound to this exact connection.
// An identity already re-registered by a newer connection is left untouched,
// which makes a late close of a stale socket harmless.
func (r *PresenceRegistry) Unregister(handle contract.Handle) {
	if handle == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for identity, current := range r.sessions {
		if current.ConnectionID() == handle.ConnectionID() {
			delete(r.sessions, identity)
		}
	}
}

func (r *PresenceRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
