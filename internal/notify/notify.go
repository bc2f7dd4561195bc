// Package notify delivers user-visible messages and keeps the single
// persistent "last error" slot with its auto-clear timer.
package notify

import (
	"log"
	"sync"
	"time"
)

// Severity classifies a notification.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Message is one notification.
type Message struct {
	Title    string
	Body     string
	Severity Severity
	Duration time.Duration
}

// Sink displays messages. Notify must not block.
type Sink interface {
	Notify(msg Message)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Message)

func (f SinkFunc) Notify(msg Message) { f(msg) }

// Logger is the subset of *log.Logger LogSink needs.
type Logger interface {
	Printf(format string, args ...any)
}

// LogSink writes every message to a logger.
type LogSink struct {
	Logger Logger
}

func (s LogSink) Notify(msg Message) {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	if msg.Body == "" {
		logger.Printf("[%s] %s", msg.Severity, msg.Title)
		return
	}
	logger.Printf("[%s] %s: %s", msg.Severity, msg.Title, msg.Body)
}

// Multi fans a message out to several sinks.
type Multi []Sink

func (m Multi) Notify(msg Message) {
	for _, s := range m {
		if s != nil {
			s.Notify(msg)
		}
	}
}

// Channel hands messages to a single consumer such as the TUI. Notify drops
// the message when the buffer is full.
type Channel chan Message

func (c Channel) Notify(msg Message) {
	select {
	case c <- msg:
	default:
	}
}

const (
	DefaultDisplay   = 30 * time.Second
	DefaultClear     = 60 * time.Second
	DefaultTransient = 4 * time.Second
)

// Options configure a Notifier.
type Options struct {
	// Display is how long a persistent error stays on screen.
	Display time.Duration
	// ClearAfter is when the last error resets itself.
	ClearAfter time.Duration
	// Transient is the display time of ordinary messages.
	Transient time.Duration
}

// Notifier owns the last-error slot. At most one auto-clear timer is pending
// at any time, and a timer can only clear the error it was scheduled for.
type Notifier struct {
	sink      Sink
	display   time.Duration
	clear     time.Duration
	transient time.Duration

	mu         sync.Mutex
	lastError  string
	timer      *time.Timer
	generation uint64
	closed     bool
}

func New(sink Sink, opts Options) *Notifier {
	n := &Notifier{
		sink:      sink,
		display:   opts.Display,
		clear:     opts.ClearAfter,
		transient: opts.Transient,
	}
	if n.display <= 0 {
		n.display = DefaultDisplay
	}
	if n.clear <= 0 {
		n.clear = DefaultClear
	}
	if n.transient <= 0 {
		n.transient = DefaultTransient
	}
	return n
}

// ShowPersistentError records message as the last error, shows it for the
// display duration and reschedules the auto-clear.
func (n *Notifier) ShowPersistentError(title, message string) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.stopTimerLocked()
	n.lastError = message
	n.generation++
	gen := n.generation
	n.timer = time.AfterFunc(n.clear, func() { n.expire(gen) })
	n.mu.Unlock()

	n.send(Message{Title: title, Body: message, Severity: SeverityError, Duration: n.display})
}

// ClearError empties the last error and cancels the pending timer.
func (n *Notifier) ClearError() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopTimerLocked()
	n.generation++
	n.lastError = ""
}

// LastError returns the current last error, empty when none.
func (n *Notifier) LastError() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastError
}

// Pending reports how many auto-clear timers are scheduled (0 or 1).
func (n *Notifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		return 1
	}
	return 0
}

// Notify sends a transient message.
func (n *Notifier) Notify(title, message string, severity Severity) {
	n.mu.Lock()
	closed := n.closed
	n.mu.Unlock()
	if closed {
		return
	}
	n.send(Message{Title: title, Body: message, Severity: severity, Duration: n.transient})
}

// Close cancels the pending timer. Later calls are no-ops.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopTimerLocked()
	n.generation++
	n.closed = true
}

func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if gen != n.generation {
		return
	}
	n.lastError = ""
	n.timer = nil
}

func (n *Notifier) stopTimerLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

func (n *Notifier) send(msg Message) {
	if n.sink != nil {
		n.sink.Notify(msg)
	}
}
