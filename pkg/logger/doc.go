// Package logger provides structured JSON logging for the gutensearch service.
//
// It wraps Uber's Zap logger behind a small interface
// (Info/Debug/Warn/Error/Fatal) that every other package in this repository
// consumes, so packages never depend on Zap directly. The log level is
// configured through the ZAP_LOGGER_LEVEL environment variable and every
// entry carries the service name and pid.
//
// The package integrates with fx through FXModule; the lifecycle hook flushes
// buffered entries on shutdown.
package logger
