// Package notice carries transient user-visible messages ("toasts") from the
// library layers to whatever front end is attached.
package notice

import (
	"fmt"
	"io"
	"sync"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level
	Title   string
	Message string
}

func (n Notice) String() string {
	if n.Message == "" {
		return n.Title
	}
	if n.Title == "" {
		return n.Message
	}
	return n.Title + ": " + n.Message
}

// Notifier shows a notice to the user. Implementations must be safe for
// concurrent use and must not block for long.
type Notifier interface {
	Notify(n Notice)
}

// Error builds an error notice.
func Error(title, message string) Notice {
	return Notice{Level: LevelError, Title: title, Message: message}
}

// Success builds a success notice.
func Success(title, message string) Notice {
	return Notice{Level: LevelSuccess, Title: title, Message: message}
}

// Info builds an info notice.
func Info(title, message string) Notice {
	return Notice{Level: LevelInfo, Title: title, Message: message}
}

// WriterNotifier prints notices as single lines to w.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (p *WriterNotifier) Notify(n Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "[%s] %s\n", n.Level, n)
}

// Recorder keeps every notice it receives.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Discard drops every notice.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Notice) {}
