package logx

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

const (
	// DefaultMaxFileSize is the size above which we archive a log file.
	DefaultMaxFileSize = 10 << 20

	// DefaultMaxArchives is the maximum number of archives per day.
	DefaultMaxArchives = 100
)

// dateFormat is the format of the date inside file names.
const dateFormat = "2006-01-02"

// FileHandler writes each channel to its own daily file.
//
// The zero value is invalid; construct using [NewLogFileHandler],
// [NewErrorFileHandler] or [NewJournalHandler].
type FileHandler struct {
	// Path returns the path of the file of channel on day.
	Path func(channel string, day time.Time) string

	// ArchiveDir is the directory containing the "<date>.<n><suffix>"
	// archives. When empty, we never archive files.
	ArchiveDir string

	// ArchiveSuffix is the suffix of the archives (e.g., ".all.log").
	ArchiveSuffix string

	// Format formats an entry.
	Format func(e *log.Entry) string

	// MaxSize is the size above which we archive the file.
	MaxSize int64

	// MaxArchives is the maximum number of archives per day.
	MaxArchives int

	mu    sync.Mutex
	files map[string]*openFile
}

var _ log.Handler = &FileHandler{}

// openFile is a file we're writing into.
type openFile struct {
	fp   *os.File
	path string
	size int64
}

// NewLogFileHandler writes "<channel>-<date>.all.log" files inside dir and
// archives them as "<date>.<n>.all.log" when they become too large.
func NewLogFileHandler(dir string) *FileHandler {
	return newRotatingFileHandler(dir, ".all.log")
}

// NewErrorFileHandler is like [NewLogFileHandler] but uses the ".error.log"
// suffix. Use the handlers/level package to only pass it errors.
func NewErrorFileHandler(dir string) *FileHandler {
	return newRotatingFileHandler(dir, ".error.log")
}

func newRotatingFileHandler(dir, suffix string) *FileHandler {
	return &FileHandler{
		Path: func(channel string, day time.Time) string {
			return filepath.Join(dir, SafeChannelName(channel)+"-"+day.Format(dateFormat)+suffix)
		},
		ArchiveDir:    dir,
		ArchiveSuffix: suffix,
		Format:        FormatLine,
		MaxSize:       DefaultMaxFileSize,
		MaxArchives:   DefaultMaxArchives,
	}
}

// NewJournalHandler writes "<date>/<channel>.txt" files inside dir. The
// journal only contains the time and the message of each entry.
func NewJournalHandler(dir string) *FileHandler {
	return &FileHandler{
		Path: func(channel string, day time.Time) string {
			return filepath.Join(dir, day.Format(dateFormat), SafeChannelName(channel)+".txt")
		},
		Format: FormatJournalLine,
	}
}

// SafeChannelName makes a channel name usable as a file name.
func SafeChannelName(channel string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		default:
			return r
		}
	}, channel)
}

// HandleLog implements log.Handler.
func (h *FileHandler) HandleLog(e *log.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	channel := ChannelOf(e)
	f, err := h.open(channel, h.Path(channel, e.Timestamp))
	if err != nil {
		return err
	}
	count, err := fmt.Fprintln(f.fp, h.Format(e))
	f.size += int64(count)
	if err != nil {
		return err
	}
	if h.ArchiveDir != "" && h.MaxSize > 0 && f.size > h.MaxSize {
		return h.archive(channel, f, e.Timestamp)
	}
	return nil
}

// open returns the file for channel, reopening it when the path changes.
func (h *FileHandler) open(channel, path string) (*openFile, error) {
	if h.files == nil {
		h.files = make(map[string]*openFile)
	}
	if f, found := h.files[channel]; found {
		if f.path == path {
			return f, nil
		}
		f.fp.Close()
		delete(h.files, channel)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	fp, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	stat, err := fp.Stat()
	if err != nil {
		fp.Close()
		return nil, err
	}
	f := &openFile{fp: fp, path: path, size: stat.Size()}
	h.files[channel] = f
	return f, nil
}

// archivePath returns the path of the n-th archive of day.
func (h *FileHandler) archivePath(day time.Time, n int) string {
	return filepath.Join(h.ArchiveDir, fmt.Sprintf("%s.%d%s", day.Format(dateFormat), n, h.ArchiveSuffix))
}

// archives returns the sorted numbers of the existing archives of day.
func (h *FileHandler) archives(day time.Time) ([]int, error) {
	prefix := day.Format(dateFormat) + "."
	matches, err := filepath.Glob(filepath.Join(h.ArchiveDir, prefix+"*"+h.ArchiveSuffix))
	if err != nil {
		return nil, err
	}
	var numbers []int
	for _, match := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(match), prefix), h.ArchiveSuffix)
		if n, err := strconv.Atoi(name); err == nil && n >= 0 {
			numbers = append(numbers, n)
		}
	}
	sort.Ints(numbers)
	return numbers, nil
}

// archive renames the file of channel to the next archive of day
// and removes the oldest archives of the day above MaxArchives.
func (h *FileHandler) archive(channel string, f *openFile, day time.Time) error {
	f.fp.Close()
	delete(h.files, channel)
	numbers, err := h.archives(day)
	if err != nil {
		return err
	}
	next := 0
	if len(numbers) > 0 {
		next = numbers[len(numbers)-1] + 1
	}
	if err := os.Rename(f.path, h.archivePath(day, next)); err != nil {
		return err
	}
	numbers = append(numbers, next)
	if h.MaxArchives <= 0 || len(numbers) <= h.MaxArchives {
		return nil
	}
	for _, n := range numbers[:len(numbers)-h.MaxArchives] {
		if err := os.Remove(h.archivePath(day, n)); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all the open files.
func (h *FileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var firstErr error
	for channel, f := range h.files {
		if err := f.fp.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(h.files, channel)
	}
	return firstErr
}
