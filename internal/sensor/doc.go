// Package sensor adapts the alarm box's GPIO lines to the logical sensor
// snapshot the monitor consumes.
//
// Four inputs (alarm engaged, siren triggered, ignition, vehicle pairing)
// are read in one bulk request per poll; the pairing line is active-low and
// normalized here so the rest of the system only sees logical values. One
// output drives the arm/disarm relay.
package sensor
