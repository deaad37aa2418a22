// Package logx contains the github.com/apex/log handlers and the
// [model.LoggerFactory] used by the tcpclient and tcphost commands.
//
// Every line belongs to a channel, which is the name of the peer the
// line is about. We store the channel name in the [ChannelField] field
// of each [log.Entry], and the handlers use it to pick the right file.
package logx

import (
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/ooni/tcpprobe/internal/model"
)

// ChannelField is the name of the entry field containing the channel.
const ChannelField = "channel"

// DefaultChannel is the channel of entries without a channel field.
const DefaultChannel = "tcpprobe"

// Banner separates the transcripts of sessions.
var Banner = strings.Repeat("=", 64)

// Factory is a [model.LoggerFactory] creating apex/log entries
// carrying the [ChannelField] field.
type Factory struct {
	Logger log.Interface
}

var _ model.LoggerFactory = &Factory{}

// NewFactory creates a [Factory] emitting all levels to handler. Use
// the handlers/level package to filter the entries.
func NewFactory(handler log.Handler) *Factory {
	return &Factory{Logger: &log.Logger{Handler: handler, Level: log.DebugLevel}}
}

// NewLogger implements model.LoggerFactory.
func (f *Factory) NewLogger(channel string) model.Logger {
	return f.Logger.WithField(ChannelField, channel)
}

// ChannelOf returns the channel of the given entry.
func ChannelOf(e *log.Entry) string {
	if channel, ok := e.Fields.Get(ChannelField).(string); ok && channel != "" {
		return channel
	}
	return DefaultChannel
}

// HexDump formats data as space separated uppercase hex bytes.
func HexDump(data []byte) string {
	return fmt.Sprintf("% X", data)
}

// timeFormat is the format of the time of each line.
const timeFormat = "15:04:05.0000"

// FormatLine formats e as "[time] [LEVEL] [channel] message" followed
// by the other fields, if any, sorted by name.
func FormatLine(e *log.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] [%s] %s", e.Timestamp.Format(timeFormat),
		strings.ToUpper(e.Level.String()), ChannelOf(e), e.Message)
	for _, name := range e.Fields.Names() {
		if name == ChannelField {
			continue
		}
		fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
	}
	return b.String()
}

// FormatJournalLine formats e as "[time] message".
func FormatJournalLine(e *log.Entry) string {
	return fmt.Sprintf("[%s] %s", e.Timestamp.Format(timeFormat), e.Message)
}
