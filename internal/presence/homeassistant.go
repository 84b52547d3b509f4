package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lazzaau/witi-watchdog/internal/logger"
	"github.com/lazzaau/witi-watchdog/internal/version"
)

// oracleTimeout bounds each Home Assistant read so a slow instance cannot
// stall the poll tick.
const oracleTimeout = 3 * time.Second

// HomeAssistant reads an input_boolean entity from a Home Assistant
// instance and uses it as the authoritative occupancy signal.
//
// The first failed read latches the oracle off for the remainder of the
// process lifetime: a misconfigured or absent instance is logged once and
// then ignored, it never fails a tick.
type HomeAssistant struct {
	client  *http.Client
	baseURL string
	token   string
	entity  string

	mu       sync.Mutex
	disabled bool
}

// entityState is the subset of the Home Assistant state response we read.
type entityState struct {
	State string `json:"state"`
}

// NewHomeAssistant creates an oracle for the given input_boolean name.
func NewHomeAssistant(baseURL, token, booleanName string) *HomeAssistant {
	return &HomeAssistant{
		client:  &http.Client{Timeout: oracleTimeout},
		baseURL: baseURL,
		token:   token,
		entity:  "input_boolean." + booleanName,
	}
}

// Read returns the oracle's occupancy value and whether it is usable.
// ok is false when the oracle is disabled or the read fails; the failure
// that disables it is logged once.
func (h *HomeAssistant) Read(ctx context.Context) (someoneHome, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.disabled {
		return false, false
	}

	state, err := h.fetch(ctx)
	if err != nil {
		h.disabled = true
		logger.WarnKV(ctx, "Home Assistant presence detection disabled",
			"entity", h.entity, "error", err)

		return false, false
	}

	return state == "on", true
}

// fetch performs the REST read of the configured entity.
func (h *HomeAssistant) fetch(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/api/states/%s", h.baseURL, h.entity)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("query %s: %w", h.entity, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("query %s: unexpected status %s", h.entity, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var state entityState
	if err := json.Unmarshal(body, &state); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return state.State, nil
}
