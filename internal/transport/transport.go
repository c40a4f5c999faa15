// SPDX-License-Identifier: MIT
package transport

import (
	applog "crossover/internal/log"
)

// Transport is a generic sink for telemetry payloads (meter updates,
// status snapshots, spectrum frames). Implementations are thread-safe
// and may drop payloads under pressure rather than block the caller.
type Transport interface {
	Send(data any) error
	Close() error
}

// LoggingTransport is a Transport that discards payloads, logging only
// lifecycle events. Useful as a default sink and in tests.
type LoggingTransport struct{}

// NewLoggingTransport creates a LoggingTransport.
func NewLoggingTransport() *LoggingTransport {
	applog.Debugf("transport: using logging transport")
	return &LoggingTransport{}
}

// Send discards the payload. It never fails.
func (lt *LoggingTransport) Send(data any) error {
	return nil
}

// Close is a no-op.
func (lt *LoggingTransport) Close() error {
	applog.Debugf("transport: logging transport closed")
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
