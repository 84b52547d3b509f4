// Package dialogue is the MQTT boundary of the watchdog.
//
// Inbound, it subscribes to the voice assistant's intent topics and
// converts their loosely-typed slot payloads into the closed Intent union
// consumed by the monitor. Outbound, it publishes local announcements for
// the assistant to speak and the WitiAlarm status payload, the latter only
// when it differs from the previously published one.
package dialogue
