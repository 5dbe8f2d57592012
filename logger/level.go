package logger

import "fmt"

// Level orders message severities. The logger drops anything below its
// current level before formatting.
type Level int32

const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelLog
	LevelWarn
	LevelError
)

// Tag returns the bracketed marker used in formatted lines.
func (l Level) Tag() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelLog:
		return "LOG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int32(l))
	}
}

// ParseLevel maps a tag, case-sensitive, back to its Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "LOG":
		return LevelLog, nil
	case "WARN":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
