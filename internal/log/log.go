// Package log configures apex/log for the bfmemo CLI.
package log

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
)

// InitLogger sets up apex with a custom handler and a log level from the
// BFMEMO_LOG env variable. Cache-layer failures are logged at warn, so the
// default level keeps the tool quiet unless something needs attention.
func InitLogger() {
	level := strings.ToUpper(os.Getenv("BFMEMO_LOG"))
	if level == "" {
		level = "WARN"
	}

	log.SetHandler(&CustomHandler{})
	log.SetLevelFromString(level)
}

// CustomHandler formats log messages and writes to stderr.
type CustomHandler struct{}

// HandleLog implements the log.Handler interface.
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	level := strings.ToUpper(e.Level.String())
	fmt.Fprintf(os.Stderr, "%s %.1s %s\n", timestamp, level, e.Message)

	return nil
}
