// Package logger is a standardized event logging framework for shell
// sessions. Events are written as newline delimited JSON so other tools can
// replay or aggregate them.
package logger
