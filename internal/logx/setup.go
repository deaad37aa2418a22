package logx

import (
	"errors"
	"io"

	"github.com/apex/log"
	"github.com/apex/log/handlers/level"
	"github.com/apex/log/handlers/multi"
)

// Config contains the settings for [NewHandler].
type Config struct {
	// Console is where we write console lines; nil disables the console.
	Console io.Writer

	// Verbose enables debug lines on the console.
	Verbose bool

	// LogDir is the directory of the ".all.log" and ".error.log"
	// files; empty disables them.
	LogDir string

	// JournalDir is the directory of the journal; empty disables it.
	JournalDir string
}

// Handler is the [log.Handler] built by [NewHandler].
type Handler struct {
	log.Handler
	files []*FileHandler
}

// Close closes the files opened by the handler.
func (h *Handler) Close() error {
	var errs []error
	for _, f := range h.files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

// NewHandler creates the handler used by the commands.
//
// The console receives info and above, or debug and above when verbose;
// the ".all.log" files receive debug and above; the ".error.log" files
// receive error and above; the journal receives everything.
func NewHandler(config *Config) *Handler {
	out := &Handler{}
	var handlers []log.Handler
	if config.Console != nil {
		lvl := log.InfoLevel
		if config.Verbose {
			lvl = log.DebugLevel
		}
		handlers = append(handlers, level.New(NewConsoleHandler(config.Console), lvl))
	}
	if config.LogDir != "" {
		all, errs := NewLogFileHandler(config.LogDir), NewErrorFileHandler(config.LogDir)
		handlers = append(handlers, level.New(all, log.DebugLevel), level.New(errs, log.ErrorLevel))
		out.files = append(out.files, all, errs)
	}
	if config.JournalDir != "" {
		journal := NewJournalHandler(config.JournalDir)
		handlers = append(handlers, journal)
		out.files = append(out.files, journal)
	}
	out.Handler = multi.New(handlers...)
	return out
}
