package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lazzaau/witi-watchdog/internal/logger"
	"github.com/lazzaau/witi-watchdog/internal/repository/settings"
)

// Output drives the physical arm/disarm relay.
type Output interface {
	SetAlarm(on bool) error
}

// Actuator owns the alarm output and the persisted authoritative armed
// state. All arm/disarm writes in the system go through it; nothing else
// touches the relay or the AlarmState key.
type Actuator struct {
	out  Output
	repo settings.Repository

	mu    sync.Mutex
	armed bool
}

// NewActuator restores the last persisted armed state and reasserts it on
// the output, so a crash or restart resumes the previous physical state.
// No notifications are produced: recovery is not a state change.
func NewActuator(ctx context.Context, out Output, repo settings.Repository) (*Actuator, error) {
	a := &Actuator{
		out:  out,
		repo: repo,
	}

	value, err := repo.Get(ctx, settings.KeyAlarmState)
	switch {
	case err == nil:
		a.armed = value != 0
	case errors.Is(err, settings.ErrNotFound):
		// No record yet: disarmed.
	default:
		return nil, fmt.Errorf("restore alarm state: %w", err)
	}

	if err := out.SetAlarm(a.armed); err != nil {
		return nil, fmt.Errorf("reassert alarm output: %w", err)
	}

	if a.armed {
		logger.Info(ctx, "Restored armed state from persisted record")
	}

	return a, nil
}

// Armed reports the current armed state.
func (a *Actuator) Armed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.armed
}

// Arm engages the alarm. Idempotent: when already armed it changes nothing
// and reports changed=false. The new state is persisted before success is
// reported; a persistence failure fails the operation so the armed state
// never silently diverges from the record.
func (a *Actuator) Arm(ctx context.Context) (changed bool, err error) {
	return a.set(ctx, true, "")
}

// Disarm disengages the alarm. Mirrors Arm.
func (a *Actuator) Disarm(ctx context.Context, reason string) (changed bool, err error) {
	return a.set(ctx, false, reason)
}

// set applies the desired output state and persists it.
func (a *Actuator) set(ctx context.Context, on bool, reason string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.armed == on {
		return false, nil
	}

	if err := a.out.SetAlarm(on); err != nil {
		return false, fmt.Errorf("switch alarm output: %w", err)
	}

	value := int64(0)
	if on {
		value = 1
	}

	if err := a.repo.Set(ctx, settings.KeyAlarmState, value); err != nil {
		// Roll the relay back: the physical output must never diverge
		// from the persisted record.
		if rollbackErr := a.out.SetAlarm(a.armed); rollbackErr != nil {
			logger.ErrorKV(ctx, "Relay rollback failed", "error", rollbackErr)
		}

		return false, fmt.Errorf("persist alarm state: %w", err)
	}

	a.armed = on

	if on {
		logger.Info(ctx, "Alarm armed")
	} else {
		logger.InfoKV(ctx, "Alarm disarmed", "reason", reason)
	}

	return true, nil
}
