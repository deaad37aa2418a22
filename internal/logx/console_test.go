package logx

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/apex/log"
)

func TestConsoleHandler(t *testing.T) {
	t.Run("with a buffer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		handler := NewConsoleHandler(buf)
		if handler.Colorize {
			t.Fatal("we should not colorize a buffer")
		}
		err := handler.HandleLog(&log.Entry{
			Fields:    log.Fields{ChannelField: "127.0.0.1"},
			Level:     log.InfoLevel,
			Timestamp: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
			Message:   "[Start]",
		})
		if err != nil {
			t.Fatal(err)
		}
		if buf.String() != "[10:00:00.0000] [INFO] [127.0.0.1] [Start]\n" {
			t.Fatal("unexpected output", buf.String())
		}
	})

	t.Run("with a file", func(t *testing.T) {
		handler := NewConsoleHandler(os.Stderr)
		if !handler.Colorize {
			t.Fatal("we should colorize files")
		}
	})

	t.Run("with concurrent writers", func(t *testing.T) {
		buf := &bytes.Buffer{}
		factory := NewFactory(NewConsoleHandler(buf))
		const writers, lines = 8, 100
		wg := &sync.WaitGroup{}
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				logger := factory.NewLogger(fmt.Sprintf("peer%d", w))
				for i := 0; i < lines; i++ {
					logger.Infof("%s", strings.Repeat("x", 512))
				}
			}(w)
		}
		wg.Wait()
		output := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		if len(output) != writers*lines {
			t.Fatal("unexpected number of lines", len(output))
		}
		for _, line := range output {
			if !strings.HasSuffix(line, "] "+strings.Repeat("x", 512)) {
				t.Fatal("interleaved line", line)
			}
		}
	})
}
