package presence

import (
	"context"

	"github.com/lazzaau/witi-watchdog/internal/domain/watchdog"
)

// Oracle is an optional external occupancy source that overrides the
// believed-home value entirely when it is reachable.
type Oracle interface {
	Read(ctx context.Context) (someoneHome, ok bool)
}

// Model computes the presence state from the supplied beliefs, the user
// registry, and the optional oracle. The state is always rebuilt as a whole
// record, never partially updated.
type Model struct {
	registry *Registry
	oracle   Oracle
}

// NewModel creates a model. oracle may be nil when external person
// detection is not configured.
func NewModel(registry *Registry, oracle Oracle) *Model {
	return &Model{
		registry: registry,
		oracle:   oracle,
	}
}

// Registry exposes the user registry so confirmation answers can be
// recorded against it.
func (m *Model) Registry() *Registry {
	return m.registry
}

// Recompute builds the next presence state. When the oracle is enabled and
// reachable its reading wins unconditionally over believedHome; otherwise
// the supplied values are used directly. The registry-derived confirmations
// are re-read every time.
func (m *Model) Recompute(ctx context.Context, checking, believedHome bool) watchdog.PresenceState {
	someoneHome := believedHome

	if m.oracle != nil {
		if oracleHome, ok := m.oracle.Read(ctx); ok {
			someoneHome = oracleHome
		}
	}

	return watchdog.PresenceState{
		CheckingForUser:    checking,
		SomeoneHome:        someoneHome,
		UsersConfirmedHome: m.registry.ConfirmedHome(),
		UsersConfirmedOut:  m.registry.ConfirmedOut(),
	}
}
