// Package sweep probes the critical collections to check that the store is
// reachable as a whole.
package sweep

import (
	"context"
	"errors"
	"log"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/stockroom/internal/store"
)

const DefaultTimeout = 15 * time.Second

// Logger receives one line per failed probe.
type Logger interface {
	Printf(format string, args ...any)
}

// Sweeper issues one bounded read per collection. It never touches a hook's
// cached view.
type Sweeper struct {
	client      store.Client
	collections []string
	timeout     time.Duration
	logger      Logger
}

// Options configure a Sweeper.
type Options struct {
	Timeout time.Duration
	Logger  Logger
}

func New(client store.Client, collections []string, opts Options) *Sweeper {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Sweeper{
		client:      client,
		collections: slices.Clone(collections),
		timeout:     timeout,
		logger:      logger,
	}
}

// Run probes every collection concurrently and waits for all of them. A
// failing probe does not cancel the others. The returned error joins every
// probe failure; nil means the sweep succeeded.
func (s *Sweeper) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	errs := make([]error, len(s.collections))
	var g errgroup.Group
	for i, collection := range s.collections {
		g.Go(func() error {
			if err := s.client.Probe(ctx, collection); err != nil {
				s.logger.Printf("sweep probe %s failed: %v", collection, err)
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
