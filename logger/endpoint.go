package logger

import (
	"bufio"
	"os"
	"strings"
	"sync"
)

// Endpoint receives flushed log chunks. Write gets the whole buffered
// chunk, possibly many lines; Flush pushes anything the endpoint itself
// buffers.
type Endpoint interface {
	Write(chunk string) error
	Flush() error
}

// StdoutEndpoint writes chunks to standard output.
type StdoutEndpoint struct{}

func NewStdoutEndpoint() *StdoutEndpoint {
	return &StdoutEndpoint{}
}

func (e *StdoutEndpoint) Write(chunk string) error {
	_, err := os.Stdout.WriteString(chunk)
	return err
}

func (e *StdoutEndpoint) Flush() error {
	return nil
}

// FileEndpoint appends chunks to a file through a buffered writer.
type FileEndpoint struct {
	mu sync.Mutex
	f  *os.File
	w  *bufio.Writer
}

// NewFileEndpoint opens (or creates) path for appending.
func NewFileEndpoint(path string) (*FileEndpoint, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileEndpoint{f: f, w: bufio.NewWriter(f)}, nil
}

func (e *FileEndpoint) Write(chunk string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.w.WriteString(chunk)
	return err
}

func (e *FileEndpoint) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.w.Flush()
}

// Close flushes and closes the underlying file.
func (e *FileEndpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.w.Flush(); err != nil {
		e.f.Close()
		return err
	}
	return e.f.Close()
}

// ForwardEndpoint re-logs every delivered chunk to another logger at Info,
// with the trailing newline trimmed. Chaining a logger to itself, or two
// loggers to each other, deadlocks.
type ForwardEndpoint struct {
	target *Logger
}

func NewForwardEndpoint(target *Logger) *ForwardEndpoint {
	return &ForwardEndpoint{target: target}
}

func (e *ForwardEndpoint) Write(chunk string) error {
	e.target.Infof("%s", strings.TrimRight(chunk, "\n"))
	return nil
}

func (e *ForwardEndpoint) Flush() error {
	return e.target.Flush()
}
