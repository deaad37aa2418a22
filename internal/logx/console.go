package logx

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/apex/log"
	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
)

// Colors mapping.
var Colors = [...]*color.Color{
	log.DebugLevel: color.New(color.FgWhite),
	log.InfoLevel:  color.New(color.FgBlue),
	log.WarnLevel:  color.New(color.FgYellow),
	log.ErrorLevel: color.New(color.FgRed),
	log.FatalLevel: color.New(color.FgRed),
}

// ConsoleHandler writes [FormatLine] lines to a console.
type ConsoleHandler struct {
	mu       sync.Mutex
	Writer   io.Writer
	Colorize bool
}

var _ log.Handler = &ConsoleHandler{}

// NewConsoleHandler creates a new [ConsoleHandler]. We only colorize
// the output when w is a file, e.g., os.Stdout.
func NewConsoleHandler(w io.Writer) *ConsoleHandler {
	if f, ok := w.(*os.File); ok {
		return &ConsoleHandler{
			Writer:   colorable.NewColorable(f),
			Colorize: true,
		}
	}
	return &ConsoleHandler{Writer: w}
}

// HandleLog implements log.Handler.
func (h *ConsoleHandler) HandleLog(e *log.Entry) error {
	line := FormatLine(e)
	if h.Colorize && int(e.Level) >= 0 && int(e.Level) < len(Colors) {
		line = Colors[e.Level].Sprint(line)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.Writer, line)
	return err
}
