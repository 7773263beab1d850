package writer

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LineSink receives accepted prompt lines in generation order. Lines are
// append-only; Close makes everything written so far durable.
type LineSink interface {
	WriteLine(line string) error
	Close() error
}

func openFile(path string, appendMode bool) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}
	return f, nil
}

func cleanLine(line string) string {
	return strings.TrimRight(line, "\r\n") + "\n"
}

// IncrementalWriter writes each line to the file as soon as it is accepted,
// so an interrupted run keeps every line written before the interruption.
// With fsync enabled each line is also synced to stable storage.
type IncrementalWriter struct {
	file  *os.File
	fsync bool
	lines int
	mu    sync.Mutex
}

// NewIncrementalWriter opens path for incremental output
func NewIncrementalWriter(path string, appendMode, fsync bool) (*IncrementalWriter, error) {
	f, err := openFile(path, appendMode)
	if err != nil {
		return nil, err
	}
	return &IncrementalWriter{file: f, fsync: fsync}, nil
}

// WriteLine writes one line and flushes it
func (w *IncrementalWriter) WriteLine(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.WriteString(cleanLine(line)); err != nil {
		return fmt.Errorf("failed to write line: %w", err)
	}
	if w.fsync {
		// Some filesystems do not support sync; the line is already written.
		_ = w.file.Sync()
	}
	w.lines++
	return nil
}

// Lines returns the number of lines written
func (w *IncrementalWriter) Lines() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lines
}

// Path returns the file path
func (w *IncrementalWriter) Path() string {
	return w.file.Name()
}

// Close closes the underlying file
func (w *IncrementalWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// Flusher is implemented by sinks that can make pending lines durable
// before Close. Callers that record progress flush first so recorded
// progress never runs ahead of the file.
type Flusher interface {
	Flush() error
}

// Flush is a no-op; every line is written as it arrives
func (w *IncrementalWriter) Flush() error {
	return nil
}

// BufferedWriter keeps lines in memory and writes them in one batch on Close.
// Flush writes the pending batch early; later batches are appended.
type BufferedWriter struct {
	path       string
	appendMode bool
	pending    []string
	count      int
	flushed    bool
	closed     bool
	mu         sync.Mutex
}

// NewBufferedWriter creates a writer that writes to path on Close
func NewBufferedWriter(path string, appendMode bool) *BufferedWriter {
	return &BufferedWriter{path: path, appendMode: appendMode}
}

// WriteLine buffers one line
func (w *BufferedWriter) WriteLine(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("write to closed writer")
	}
	w.pending = append(w.pending, line)
	w.count++
	return nil
}

// Lines returns the number of lines accepted so far
func (w *BufferedWriter) Lines() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Path returns the file path
func (w *BufferedWriter) Path() string {
	return w.path
}

// Flush writes the pending lines to the file
func (w *BufferedWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	return w.flushLocked()
}

func (w *BufferedWriter) flushLocked() error {
	appendMode := w.appendMode || w.flushed
	if appendMode && len(w.pending) == 0 {
		return nil
	}
	if err := WriteLines(w.path, w.pending, appendMode); err != nil {
		return err
	}
	w.flushed = true
	w.pending = nil
	return nil
}

// Close writes all pending lines. In append mode with nothing buffered the
// file is left untouched.
func (w *BufferedWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.flushLocked()
}

// WriteLines writes lines to path, one per line, appending when requested
func WriteLines(path string, lines []string, appendMode bool) error {
	f, err := openFile(path, appendMode)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := bw.WriteString(cleanLine(line)); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write line: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return f.Close()
}

// ReadLines reads non-empty, trimmed lines from path
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines, nil
}
