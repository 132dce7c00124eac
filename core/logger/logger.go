package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"
)

// LogEntry is one session event. Exactly one of the event fields is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	SessionStart *SessionStart `json:"session_start,omitempty"`
	SessionEnd   *SessionEnd   `json:"session_end,omitempty"`
	Command      *Command      `json:"command,omitempty"`
	Query        *Query        `json:"query,omitempty"`
}

// SessionStart marks the beginning of an interactive session.
type SessionStart struct {
	User string `json:"user,omitempty"`
	Host string `json:"host,omitempty"`
}

// SessionEnd marks the end of an interactive session.
type SessionEnd struct{}

// Command records one executed command or pipeline.
type Command struct {
	// Stages holds one argument vector per pipeline stage; a plain command
	// has exactly one stage.
	Stages   [][]string `json:"stages"`
	ExitCode int        `json:"exit_code"`
}

// Query records one natural-language query sent to the assistant.
type Query struct {
	Text     string `json:"text"`
	CacheHit bool   `json:"cache_hit,omitempty"`
}

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(le *LogEntry) error

// Logger captures session interaction events.
type Logger struct {
	Record LogRecorder
}

// NewJsonLinesLogRecorder creates a Logger that exports logs in newline
// delimited JSON object format.
func NewJsonLinesLogRecorder(w io.Writer) *Logger {
	return &Logger{
		Record: func(le *LogEntry) error {
			entry, err := json.Marshal(le)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// NewNopLogger creates a Logger that drops every event.
func NewNopLogger() *Logger {
	return &Logger{Record: func(le *LogEntry) error { return nil }}
}

func (l *Logger) record(sessionID string, fill func(le *LogEntry)) error {
	le := &LogEntry{
		TimestampMicros: time.Now().UnixMicro(),
		SessionID:       sessionID,
	}
	fill(le)
	return l.Record(le)
}

// NewSession creates a logger with attached session ID.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: fmt.Sprintf("%d", rand.Uint64())}
}

// SessionLogger logs messages with a shared session ID.
type SessionLogger struct {
	*Logger
	sessionID string
}

// LogSessionStart records the start of a session.
func (l *SessionLogger) LogSessionStart(user, host string) error {
	return l.record(l.sessionID, func(le *LogEntry) {
		le.SessionStart = &SessionStart{User: user, Host: host}
	})
}

// LogSessionEnd records the end of a session.
func (l *SessionLogger) LogSessionEnd() error {
	return l.record(l.sessionID, func(le *LogEntry) {
		le.SessionEnd = &SessionEnd{}
	})
}

// LogCommand records a command or pipeline and its exit code.
func (l *SessionLogger) LogCommand(stages [][]string, exitCode int) error {
	return l.record(l.sessionID, func(le *LogEntry) {
		le.Command = &Command{Stages: stages, ExitCode: exitCode}
	})
}

// LogQuery records a natural-language query.
func (l *SessionLogger) LogQuery(text string, cacheHit bool) error {
	return l.record(l.sessionID, func(le *LogEntry) {
		le.Query = &Query{Text: text, CacheHit: cacheHit}
	})
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}
