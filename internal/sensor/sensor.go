package sensor

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/lazzaau/witi-watchdog/internal/config"
	"github.com/lazzaau/witi-watchdog/internal/domain/watchdog"
)

// inputCount is the number of logical sensor lines in a snapshot.
const inputCount = 4

// Positions of the logical lines within the requested input bundle.
const (
	idxAlarmState = iota
	idxTriggeredState
	idxIgnitionActive
	idxPairedToVehicle
)

// ErrClosed is returned when polling after Close.
var ErrClosed = errors.New("sensor lines are closed")

// Lines owns the GPIO lines of the alarm box: four inputs for the sensor
// snapshot and one output driving the arm/disarm relay.
type Lines struct {
	inputs *gpiocdev.Lines
	relay  *gpiocdev.Line
}

// Open requests the configured lines on the chip. The caller must Close.
func Open(chip string, offsets config.LineOffsets) (*Lines, error) {
	inputs, err := gpiocdev.RequestLines(
		chip,
		[]int{
			offsets.AlarmState,
			offsets.TriggeredState,
			offsets.IgnitionActive,
			offsets.PairedToVehicle,
		},
		gpiocdev.AsInput,
	)
	if err != nil {
		return nil, fmt.Errorf("request sensor lines on %s: %w", chip, err)
	}

	relay, err := gpiocdev.RequestLine(chip, offsets.SwitchAlarm, gpiocdev.AsOutput(0))
	if err != nil {
		_ = inputs.Close()

		return nil, fmt.Errorf("request relay line on %s: %w", chip, err)
	}

	return &Lines{
		inputs: inputs,
		relay:  relay,
	}, nil
}

// Poll reads all four inputs into a normalized snapshot. The pairing link
// is active-low on the wire: electrical low means connected, so the value
// is inverted here. A read error fails the whole snapshot; the monitor
// skips the tick and retries on the next interval.
func (l *Lines) Poll() (watchdog.Snapshot, error) {
	if l.inputs == nil {
		return watchdog.Snapshot{}, ErrClosed
	}

	values := make([]int, inputCount)
	if err := l.inputs.Values(values); err != nil {
		return watchdog.Snapshot{}, fmt.Errorf("read sensor lines: %w", err)
	}

	return watchdog.Snapshot{
		Armed:         values[idxAlarmState] != 0,
		Triggered:     values[idxTriggeredState] != 0,
		IgnitionOn:    values[idxIgnitionActive] != 0,
		VehiclePaired: values[idxPairedToVehicle] == 0,
	}, nil
}

// SetAlarm drives the relay output.
func (l *Lines) SetAlarm(on bool) error {
	if l.relay == nil {
		return ErrClosed
	}

	value := 0
	if on {
		value = 1
	}

	if err := l.relay.SetValue(value); err != nil {
		return fmt.Errorf("set relay: %w", err)
	}

	return nil
}

// Close releases all requested lines.
func (l *Lines) Close() error {
	var errs []error

	if l.inputs != nil {
		errs = append(errs, l.inputs.Close())
		l.inputs = nil
	}

	if l.relay != nil {
		errs = append(errs, l.relay.Close())
		l.relay = nil
	}

	return errors.Join(errs...)
}
