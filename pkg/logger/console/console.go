package console

import (
	"os"

	"github.com/charmbracelet/log"
)

// ConsoleLogger is the stderr backend the server and worker binaries install
// behind the logger facade at startup. It wraps charmbracelet/log for
// levelled, timestamped key-value output.
type ConsoleLogger struct {
	logger *log.Logger
}

// ConsoleLoggerParams configures the backend.
type ConsoleLoggerParams struct {
	// Debug lowers the threshold so translation and ingest tracing shows up.
	Debug bool
}

// NewConsoleLogger builds a stderr logger at INFO level, or DEBUG when
// requested.
func NewConsoleLogger(params ConsoleLoggerParams) *ConsoleLogger {
	level := log.InfoLevel
	if params.Debug {
		level = log.DebugLevel
	}
	return &ConsoleLogger{
		logger: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Level:           level,
		}),
	}
}

// Log writes at the default level regardless of the threshold.
func (l *ConsoleLogger) Log(message string, keyvals ...any) {
	l.logger.Print(message, keyvals...)
}

func (l *ConsoleLogger) Info(message string, keyvals ...any) {
	l.logger.Info(message, keyvals...)
}

func (l *ConsoleLogger) Warn(message string, keyvals ...any) {
	l.logger.Warn(message, keyvals...)
}

func (l *ConsoleLogger) Error(message string, keyvals ...any) {
	l.logger.Error(message, keyvals...)
}

func (l *ConsoleLogger) Debug(message string, keyvals ...any) {
	l.logger.Debug(message, keyvals...)
}

// Fatal logs and terminates the process. Reserved for startup wiring that
// cannot proceed, like a missing broker or graph connection.
func (l *ConsoleLogger) Fatal(message string, keyvals ...any) {
	l.logger.Fatal(message, keyvals...)
}
