package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Logger is a simple leveled logger that writes to the console.
type Logger struct {
	*log.Logger
}

// NewLogger creates a new Logger.
func NewLogger() *Logger {
	return &Logger{
		Logger: log.New(os.Stdout, "", log.LstdFlags),
	}
}

// Info logs an informational message with optional key/value pairs.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.Printf("INFO: %s%s", msg, formatFields(args))
}

// Warn logs a warning message with optional key/value pairs.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.Printf("WARN: %s%s", msg, formatFields(args))
}

// Error logs an error message with optional key/value pairs.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.Printf("ERROR: %s%s", msg, formatFields(args))
}

// Debug logs a debug message with optional key/value pairs.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.Printf("DEBUG: %s%s", msg, formatFields(args))
}

// formatFields renders trailing key/value pairs as " k=v k=v". An odd
// trailing value is logged as-is.
func formatFields(args []interface{}) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, " %v", args[i])
		}
	}
	return b.String()
}
