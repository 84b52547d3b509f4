package presence

import "sync"

// Registry tracks the confirmed home/away status of known users. It is the
// source for the usersConfirmedHome/usersConfirmedOut components of the
// presence state.
type Registry struct {
	mu sync.RWMutex
	// users maps usernames to their confirmed-home status.
	users map[string]bool
}

// DefaultUser is the registry entry used when a confirmation answer does
// not identify a speaker.
const DefaultUser = "resident"

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		users: make(map[string]bool),
	}
}

// SetHome records a user's confirmed status. Unknown users are added.
func (r *Registry) SetHome(user string, home bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user] = home
}

// Clear forgets all confirmations. A new occupancy episode starts with
// nobody confirmed either way.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = make(map[string]bool)
}

// ConfirmedHome reports whether at least one user is confirmed home.
func (r *Registry) ConfirmedHome() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, home := range r.users {
		if home {
			return true
		}
	}

	return false
}

// ConfirmedOut reports whether every known user is confirmed away.
// An empty registry confirms nothing.
func (r *Registry) ConfirmedOut() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.users) == 0 {
		return false
	}

	for _, home := range r.users {
		if home {
			return false
		}
	}

	return true
}
