package connectivity

import (
	"context"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Signal reports whether the store is reachable. Changes delivers the new
// state after each transition; a slow reader only ever sees the latest one,
// so a brief reconnect that ends before it is read may not trigger a sweep.
type Signal interface {
	Online() bool
	Changes() <-chan bool
}

// publish replaces any undelivered state with v.
func publish(ch chan bool, v bool) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}

// ManualSignal is switched by hand, for tests and for starting offline.
type ManualSignal struct {
	mu      sync.Mutex
	online  bool
	changes chan bool
}

func NewManualSignal(online bool) *ManualSignal {
	return &ManualSignal{online: online, changes: make(chan bool, 1)}
}

func (s *ManualSignal) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

func (s *ManualSignal) Changes() <-chan bool {
	return s.changes
}

// Set switches the state and emits a change if it differs.
func (s *ManualSignal) Set(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.online == online {
		return
	}
	s.online = online
	publish(s.changes, online)
}

const (
	DefaultProbeInterval = 10 * time.Second
	defaultDialTimeout   = 3 * time.Second
)

// ProbeOptions configure a ProbeSignal.
type ProbeOptions struct {
	Interval    time.Duration
	DialTimeout time.Duration
}

// ProbeSignal derives connectivity from periodic TCP dials to the store host.
type ProbeSignal struct {
	address  string
	interval time.Duration
	timeout  time.Duration
	dialer   func(ctx context.Context, network, address string) (net.Conn, error)

	mu      sync.Mutex
	online  bool
	changes chan bool
}

// NewProbeSignal dials address once to pick the initial state.
func NewProbeSignal(ctx context.Context, address string, opts ProbeOptions) *ProbeSignal {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	timeout := opts.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	d := &net.Dialer{}
	s := &ProbeSignal{
		address:  address,
		interval: interval,
		timeout:  timeout,
		dialer:   d.DialContext,
		changes:  make(chan bool, 1),
	}
	s.online = s.dial(ctx)
	return s
}

func (s *ProbeSignal) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

func (s *ProbeSignal) Changes() <-chan bool {
	return s.changes
}

// Check dials once and records the outcome.
func (s *ProbeSignal) Check(ctx context.Context) bool {
	online := s.dial(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if online != s.online {
		s.online = online
		publish(s.changes, online)
	}
	return online
}

// Run checks on every interval until ctx is done.
func (s *ProbeSignal) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

func (s *ProbeSignal) dial(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	conn, err := s.dialer(ctx, "tcp", s.address)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// AddressFromDSN returns the host:port a store DSN connects to. Local
// backends (memory, sqlite) have none.
func AddressFromDSN(dsn string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(dsn))
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	port := u.Port()
	if port == "" {
		switch strings.ToLower(u.Scheme) {
		case "https":
			port = "443"
		case "http":
			port = "80"
		case "postgres", "postgresql":
			port = "5432"
		default:
			return "", false
		}
	}
	return net.JoinHostPort(u.Hostname(), port), true
}
