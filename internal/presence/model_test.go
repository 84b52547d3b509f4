package presence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeOracle is a scripted Oracle implementation.
type fakeOracle struct {
	home bool
	ok   bool
}

// Read returns the scripted values.
func (f *fakeOracle) Read(context.Context) (bool, bool) {
	return f.home, f.ok
}

// TestModel_RecomputeWithoutOracle uses the supplied beliefs directly.
func TestModel_RecomputeWithoutOracle(t *testing.T) {
	t.Parallel()

	m := NewModel(NewRegistry(), nil)

	state := m.Recompute(context.Background(), true, true)
	require.True(t, state.CheckingForUser)
	require.True(t, state.SomeoneHome)
	require.False(t, state.UsersConfirmedHome)
	require.False(t, state.UsersConfirmedOut)
}

// TestModel_OracleWins lets a reachable oracle override believedHome
// in both directions.
func TestModel_OracleWins(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{home: false, ok: true}
	m := NewModel(NewRegistry(), oracle)

	state := m.Recompute(context.Background(), false, true)
	require.False(t, state.SomeoneHome)

	oracle.home = true

	state = m.Recompute(context.Background(), false, false)
	require.True(t, state.SomeoneHome)
}

// TestModel_OracleUnreachableFallsBack keeps the caller's belief when the
// oracle reports not-ok.
func TestModel_OracleUnreachableFallsBack(t *testing.T) {
	t.Parallel()

	m := NewModel(NewRegistry(), &fakeOracle{home: true, ok: false})

	state := m.Recompute(context.Background(), false, true)
	require.True(t, state.SomeoneHome)
}

// TestModel_RegistryDerivation re-derives confirmations every recompute.
func TestModel_RegistryDerivation(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	m := NewModel(registry, nil)

	registry.SetHome("alice", true)
	registry.SetHome("bob", false)

	state := m.Recompute(context.Background(), false, false)
	require.True(t, state.UsersConfirmedHome)
	require.False(t, state.UsersConfirmedOut)

	registry.SetHome("alice", false)

	state = m.Recompute(context.Background(), false, false)
	require.False(t, state.UsersConfirmedHome)
	require.True(t, state.UsersConfirmedOut)
}

// TestRegistry_EmptyConfirmsNothing ensures an empty registry reports
// neither confirmed-home nor confirmed-out.
func TestRegistry_EmptyConfirmsNothing(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	require.False(t, registry.ConfirmedHome())
	require.False(t, registry.ConfirmedOut())
}

// TestHomeAssistant_ReadsEntityState reads an input_boolean over REST.
func TestHomeAssistant_ReadsEntityState(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/states/input_boolean.people_home", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(map[string]string{"state": "on"})
	}))
	defer srv.Close()

	oracle := NewHomeAssistant(srv.URL, "secret", "people_home")

	home, ok := oracle.Read(context.Background())
	require.True(t, ok)
	require.True(t, home)
}

// TestHomeAssistant_LatchesOffAfterFailure disables itself permanently
// after the first failed read.
func TestHomeAssistant_LatchesOffAfterFailure(t *testing.T) {
	t.Parallel()

	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++

		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	oracle := NewHomeAssistant(srv.URL, "secret", "missing")

	_, ok := oracle.Read(context.Background())
	require.False(t, ok)

	// Latched: no further requests are made.
	_, ok = oracle.Read(context.Background())
	require.False(t, ok)
	require.Equal(t, 1, requests)
}
