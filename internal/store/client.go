package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Client is the collection-scoped view of the remote record store.
// Implementations must be safe for concurrent use.
type Client interface {
	List(ctx context.Context, collection string, q Query) ([]Record, error)
	Insert(ctx context.Context, collection string, rec Record) (Record, error)
	Update(ctx context.Context, collection, id string, patch Record) (Record, error)
	Delete(ctx context.Context, collection, id string) (bool, error)
	// Probe performs a bounded read (at most one row) to check that the
	// collection is reachable.
	Probe(ctx context.Context, collection string) error
	Close() error
}

// ListOrdered lists a whole collection sorted by field.
func ListOrdered(ctx context.Context, c Client, collection, field string, dir Direction) ([]Record, error) {
	return c.List(ctx, collection, Query{OrderBy: field, Direction: dir})
}

// Options tune the backends built by Open. Each backend ignores what it does
// not need.
type Options struct {
	APIKey string
	// RequestRate caps REST requests per second; zero means unlimited.
	RequestRate float64
	Timeout     time.Duration
}

const defaultTimeout = 10 * time.Second

// Factory builds a Client for a DSN.
type Factory func(dsn string, opts Options) (Client, error)

var factoryRegistry = struct {
	mu        sync.RWMutex
	factories map[string]Factory
}{
	factories: map[string]Factory{},
}

// Register installs a factory for a DSN scheme, replacing built-in handling.
func Register(scheme string, factory Factory) {
	scheme = normalizeScheme(scheme)
	if scheme == "" || factory == nil {
		return
	}
	factoryRegistry.mu.Lock()
	defer factoryRegistry.mu.Unlock()
	factoryRegistry.factories[scheme] = factory
}

func lookupFactory(scheme string) (Factory, bool) {
	factoryRegistry.mu.RLock()
	defer factoryRegistry.mu.RUnlock()
	factory, ok := factoryRegistry.factories[normalizeScheme(scheme)]
	return factory, ok
}

// Open builds a Client from a DSN:
//
//	memory://                  in-process store
//	http(s)://host[/rest/v1]   PostgREST-compatible REST endpoint
//	postgres://user@host/db    Postgres database
//	sqlite://path/to/file.db   SQLite database file
func Open(dsn string, opts Options) (Client, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("%w: empty dsn", ErrUnsupported)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse store dsn: %w", err)
	}
	scheme := normalizeScheme(parsed.Scheme)
	if factory, ok := lookupFactory(scheme); ok {
		return factory(dsn, opts)
	}
	switch scheme {
	case "memory", "mem":
		return NewMemory(), nil
	case "http", "https":
		return NewREST(dsn, opts)
	case "postgres", "postgresql":
		return OpenPostgres(dsn, opts)
	case "sqlite", "sqlite3":
		return OpenSQLite(sqlitePath(dsn), opts)
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupported, scheme)
	}
}

func sqlitePath(dsn string) string {
	for _, prefix := range []string{"sqlite3://", "sqlite://"} {
		if len(dsn) >= len(prefix) && strings.EqualFold(dsn[:len(prefix)], prefix) {
			return dsn[len(prefix):]
		}
	}
	return dsn
}

func normalizeScheme(scheme string) string {
	return strings.ToLower(strings.TrimSpace(scheme))
}
