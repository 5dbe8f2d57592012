// Package logger provides leveled, module-tagged logging with asynchronous
// delivery. Lines are formatted at the call site, handed to a per-logger
// scheduler worker and buffered; the buffer drains to every endpoint when
// it grows past a byte limit or enough time has passed since the last
// flush. Call sites therefore pay for formatting, never for I/O.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/tamari/scheduler"
)

const (
	// DefaultFormat slots: timestamp, module, level tag, message.
	DefaultFormat = "%s - %s - [%s] %s\n"

	// TimeLayout is the timestamp rendering used in formatted lines.
	TimeLayout = "2006-01-02 15:04:05.000"

	defaultFlushBytes    = 1 << 20
	defaultFlushInterval = time.Second
)

// Logger formats and asynchronously delivers leveled messages.
type Logger struct {
	level int32 // atomic Level

	mu        sync.Mutex
	module    string
	format    string
	byteLimit int
	interval  time.Duration
	endpoints []Endpoint
	buf       bytes.Buffer
	lastFlush time.Time

	sched     *scheduler.Scheduler
	closeOnce sync.Once
	closeErr  error
}

// New returns a logger tagged with module, delivering to the given
// endpoints. The logger starts its own scheduler worker; Close releases
// it.
func New(module string, endpoints ...Endpoint) *Logger {
	return &Logger{
		level:     int32(LevelInfo),
		module:    module,
		format:    DefaultFormat,
		byteLimit: defaultFlushBytes,
		interval:  defaultFlushInterval,
		endpoints: endpoints,
		lastFlush: time.Now(),
		sched:     scheduler.New(),
	}
}

// Level returns the current severity gate.
func (l *Logger) Level() Level {
	return Level(atomic.LoadInt32(&l.level))
}

// SetLevel changes the severity gate; messages below it are dropped.
func (l *Logger) SetLevel(level Level) {
	atomic.StoreInt32(&l.level, int32(level))
}

// SetModule renames the module tag on future lines.
func (l *Logger) SetModule(module string) {
	l.mu.Lock()
	l.module = module
	l.mu.Unlock()
}

// SetFormat replaces the line template. The template receives timestamp,
// module, level tag and message, in that order.
func (l *Logger) SetFormat(format string) {
	l.mu.Lock()
	l.format = format
	l.mu.Unlock()
}

// SetFlushByteLimit changes how many buffered bytes force a flush.
func (l *Logger) SetFlushByteLimit(n int) {
	l.mu.Lock()
	l.byteLimit = n
	l.mu.Unlock()
}

// SetFlushInterval changes how stale the buffer may grow before the next
// appended line forces a flush.
func (l *Logger) SetFlushInterval(d time.Duration) {
	l.mu.Lock()
	l.interval = d
	l.mu.Unlock()
}

// AddEndpoint attaches another delivery target.
func (l *Logger) AddEndpoint(ep Endpoint) {
	if ep == nil {
		return
	}
	l.mu.Lock()
	l.endpoints = append(l.endpoints, ep)
	l.mu.Unlock()
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(LevelDebug, format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(LevelInfo, format, args...)
}

func (l *Logger) Logf(format string, args ...interface{}) {
	l.logf(LevelLog, format, args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logf(LevelWarn, format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(LevelError, format, args...)
}

// Flush waits for queued log tasks, then drains the buffer to every
// endpoint. Returns the first endpoint error.
func (l *Logger) Flush() error {
	l.sched.WaitForAll()

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.flushLocked()
}

// Close drains outstanding messages, stops the worker and closes every
// endpoint that supports closing. Later log calls are dropped.
func (l *Logger) Close() error {
	l.closeOnce.Do(func() {
		l.sched.Shutdown()

		l.mu.Lock()
		l.closeErr = l.flushLocked()
		endpoints := l.endpoints
		l.mu.Unlock()

		for _, ep := range endpoints {
			if c, ok := ep.(io.Closer); ok {
				if err := c.Close(); err != nil && l.closeErr == nil {
					l.closeErr = err
				}
			}
		}
	})
	return l.closeErr
}

// Type identifies loggers in object registries.
func (l *Logger) Type() string {
	return "Logger"
}

// logf formats the full line at the call site, so later setter calls
// cannot retroactively restyle it, then hands the append to the worker.
func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if level < l.Level() {
		return
	}

	msg := fmt.Sprintf(format, args...)
	ts := time.Now().Format(TimeLayout)

	l.mu.Lock()
	line := fmt.Sprintf(l.format, ts, l.module, level.Tag(), msg)
	l.mu.Unlock()

	l.sched.Schedule(func() { l.append(line) })
}

// append runs on the worker: buffer the line and flush when the buffer is
// big enough or stale enough. Endpoint errors on this path have no caller
// to return to and are dropped.
func (l *Logger) append(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.buf.WriteString(line)
	if l.buf.Len() >= l.byteLimit || time.Since(l.lastFlush) >= l.interval {
		_ = l.flushLocked()
	}
}

func (l *Logger) flushLocked() error {
	l.lastFlush = time.Now()
	if l.buf.Len() == 0 {
		return nil
	}

	chunk := l.buf.String()
	l.buf.Reset()

	var firstErr error
	for _, ep := range l.endpoints {
		if err := ep.Write(chunk); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := ep.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
