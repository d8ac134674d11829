package logging

import "strings"

// Level represents a log level
type Level int

const (
	// DebugLevel covers per-container and per-chapter detail
	DebugLevel Level = iota
	// InfoLevel is the default
	InfoLevel
	// WarnLevel flags recoverable oddities such as unknown encoding schemes
	WarnLevel
	// ErrorLevel is reserved for failed archive operations
	ErrorLevel
)

// String returns the upper-case level name
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name, in any case, to a Level.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, true
	case "info", "":
		return InfoLevel, true
	case "warn", "warning":
		return WarnLevel, true
	case "error":
		return ErrorLevel, true
	default:
		return InfoLevel, false
	}
}
