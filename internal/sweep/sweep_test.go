package sweep

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/stockroom/internal/store"
)

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

type probeClient struct {
	*store.Memory

	mu      sync.Mutex
	fail    map[string]error
	probed  []string
	delay   time.Duration
	lists   int
	inserts int
}

func (c *probeClient) Probe(ctx context.Context, collection string) error {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probed = append(c.probed, collection)
	return c.fail[collection]
}

func (c *probeClient) List(ctx context.Context, collection string, q store.Query) ([]store.Record, error) {
	c.mu.Lock()
	c.lists++
	c.mu.Unlock()
	return c.Memory.List(ctx, collection, q)
}

var critical = []string{"products", "orders", "customers", "inventory_history"}

func TestRun_AllProbesSucceed(t *testing.T) {
	client := &probeClient{Memory: store.NewMemory()}
	logger := &recordingLogger{}

	err := New(client, critical, Options{Logger: logger}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(client.probed) != 4 {
		t.Fatalf("probed = %v, want 4 collections", client.probed)
	}
	if len(logger.lines) != 0 {
		t.Fatalf("unexpected log lines: %q", logger.lines)
	}
	if client.lists != 0 {
		t.Fatalf("sweep issued %d list calls, want none", client.lists)
	}
}

func TestRun_OneFailureFailsSweepAndLogsOnce(t *testing.T) {
	boom := errors.New("permission denied")
	client := &probeClient{Memory: store.NewMemory(), fail: map[string]error{"orders": boom}}
	logger := &recordingLogger{}

	err := New(client, critical, Options{Logger: logger}).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Run err = %v, want %v", err, boom)
	}
	if len(client.probed) != 4 {
		t.Fatalf("probed = %v, other probes should still run", client.probed)
	}
	if len(logger.lines) != 1 || !strings.Contains(logger.lines[0], "sweep probe orders failed") {
		t.Fatalf("log lines = %q, want one orders failure", logger.lines)
	}
}

func TestRun_TimeoutBoundsSlowProbes(t *testing.T) {
	client := &probeClient{Memory: store.NewMemory(), delay: time.Second}
	logger := &recordingLogger{}

	start := time.Now()
	err := New(client, critical[:2], Options{Logger: logger, Timeout: 20 * time.Millisecond}).Run(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run err = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("Run took %v, want it bounded by the timeout", elapsed)
	}
	if len(logger.lines) != 2 {
		t.Fatalf("log lines = %q, want two", logger.lines)
	}
}

func TestRun_UsesProbeAgainstMemoryStore(t *testing.T) {
	mem := store.NewMemory()
	if err := New(mem, critical, Options{Logger: &recordingLogger{}}).Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	_ = mem.Close()
	if err := New(mem, critical, Options{Logger: &recordingLogger{}}).Run(context.Background()); !errors.Is(err, store.ErrClosed) {
		t.Fatalf("Run err = %v, want ErrClosed", err)
	}
}
