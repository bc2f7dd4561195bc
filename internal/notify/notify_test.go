package notify

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

type captureSink struct {
	mu   sync.Mutex
	msgs []Message
}

func (s *captureSink) Notify(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *captureSink) all() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.msgs...)
}

func TestShowPersistentError_ReplacesTimer(t *testing.T) {
	sink := &captureSink{}
	n := New(sink, Options{ClearAfter: time.Hour})
	t.Cleanup(n.Close)

	n.ShowPersistentError("Sync failed", "first")
	n.ShowPersistentError("Sync failed", "second")

	if got := n.Pending(); got != 1 {
		t.Fatalf("Pending() = %d, want 1", got)
	}
	if got := n.LastError(); got != "second" {
		t.Fatalf("LastError() = %q, want second", got)
	}

	msgs := sink.all()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[1].Severity != SeverityError || msgs[1].Duration != DefaultDisplay {
		t.Fatalf("message = %+v, want error shown for the long display time", msgs[1])
	}
}

func TestShowPersistentError_AutoClears(t *testing.T) {
	n := New(nil, Options{ClearAfter: 20 * time.Millisecond})
	t.Cleanup(n.Close)

	n.ShowPersistentError("Import", "bad file")
	deadline := time.Now().Add(2 * time.Second)
	for n.LastError() != "" {
		if time.Now().After(deadline) {
			t.Fatal("last error never cleared")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := n.Pending(); got != 0 {
		t.Fatalf("Pending() = %d after expiry, want 0", got)
	}
}

func TestShowPersistentError_StaleTimerCannotClearNewerError(t *testing.T) {
	n := New(nil, Options{ClearAfter: time.Hour})
	t.Cleanup(n.Close)

	n.ShowPersistentError("a", "old")
	n.mu.Lock()
	staleGen := n.generation
	n.mu.Unlock()

	n.ShowPersistentError("b", "new")
	n.expire(staleGen)

	if got := n.LastError(); got != "new" {
		t.Fatalf("LastError() = %q, want new", got)
	}
}

func TestClearError(t *testing.T) {
	n := New(nil, Options{ClearAfter: time.Hour})
	t.Cleanup(n.Close)

	n.ShowPersistentError("a", "oops")
	n.ClearError()

	if n.LastError() != "" || n.Pending() != 0 {
		t.Fatalf("after ClearError: last=%q pending=%d", n.LastError(), n.Pending())
	}
}

func TestClose_CancelsAndIgnoresLaterCalls(t *testing.T) {
	sink := &captureSink{}
	n := New(sink, Options{ClearAfter: time.Hour})

	n.ShowPersistentError("a", "oops")
	n.Close()
	if got := n.Pending(); got != 0 {
		t.Fatalf("Pending() = %d after Close, want 0", got)
	}

	n.ShowPersistentError("b", "later")
	n.Notify("info", "ignored", SeverityInfo)
	if got := len(sink.all()); got != 1 {
		t.Fatalf("messages = %d, want only the one before Close", got)
	}
}

func TestNotify_UsesTransientDuration(t *testing.T) {
	sink := &captureSink{}
	n := New(sink, Options{Transient: time.Second})
	t.Cleanup(n.Close)

	n.Notify("Saved", "order o-1", SeveritySuccess)
	msgs := sink.all()
	if len(msgs) != 1 || msgs[0].Duration != time.Second || msgs[0].Severity != SeveritySuccess {
		t.Fatalf("messages = %+v", msgs)
	}
	if n.LastError() != "" {
		t.Fatal("transient message set the last error")
	}
}

type lineLogger struct{ lines []string }

func (l *lineLogger) Printf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestLogSinkAndMulti(t *testing.T) {
	logger := &lineLogger{}
	capture := &captureSink{}
	Multi{LogSink{Logger: logger}, capture, nil}.Notify(Message{Title: "Sync failed", Body: "timeout", Severity: SeverityError})

	if len(logger.lines) != 1 || !strings.Contains(logger.lines[0], "[error] Sync failed: timeout") {
		t.Fatalf("log lines = %q", logger.lines)
	}
	if len(capture.all()) != 1 {
		t.Fatal("Multi did not reach every sink")
	}
}

func TestChannel_DropsWhenFull(t *testing.T) {
	ch := make(Channel, 1)
	ch.Notify(Message{Title: "first"})
	ch.Notify(Message{Title: "second"})

	if got := (<-ch).Title; got != "first" {
		t.Fatalf("Title = %q, want first", got)
	}
	select {
	case msg := <-ch:
		t.Fatalf("unexpected buffered message %+v", msg)
	default:
	}
}

func TestSinkFunc_ReceivesNotifications(t *testing.T) {
	var got []Message
	n := New(SinkFunc(func(msg Message) { got = append(got, msg) }), Options{ClearAfter: time.Hour})
	defer n.Close()

	n.Notify("Order advanced", "o-1 is now processing", SeveritySuccess)

	if len(got) != 1 || got[0].Title != "Order advanced" || got[0].Severity != SeveritySuccess {
		t.Fatalf("messages = %+v, want one success message", got)
	}
}
