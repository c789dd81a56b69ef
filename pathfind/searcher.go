package pathfind

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"github.com/milk9111/tilepath/events"
	"github.com/milk9111/tilepath/grid"
)

// ErrBlockedEndpoint is returned when a search endpoint is not walkable.
var ErrBlockedEndpoint = errors.New("pathfind: endpoint is not walkable")

// Result is the single outcome of one FindPath call.
type Result struct {
	Start grid.Cell
	End   grid.Cell
	Path  grid.Path
}

// Found reports whether a route was produced.
func (r Result) Found() bool {
	return len(r.Path) > 0
}

// Config tunes a Searcher.
type Config struct {
	Options
	// MaxInFlight bounds how many searches compute at once; zero means 4.
	MaxInFlight int64
}

type completion struct {
	result Result
	done   func(Result)
}

// Searcher runs searches off the game thread and hands results back through
// Poll, which must be called from the game loop.
type Searcher struct {
	grid   *grid.Grid
	opts   Options
	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc
	logger *log.Logger

	completed events.Queue[completion]
	// ready is signalled after every push so Flush can sleep between results.
	ready   chan struct{}
	wg      sync.WaitGroup
	pending int
}

// NewSearcher creates a searcher over g. The grid is read only when FindPath
// is called, on the calling goroutine.
func NewSearcher(g *grid.Grid, cfg Config, logger *log.Logger) *Searcher {
	if logger == nil {
		logger = log.Default()
	}
	limit := cfg.MaxInFlight
	if limit <= 0 {
		limit = 4
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Searcher{
		grid:   g,
		opts:   cfg.Options,
		sem:    semaphore.NewWeighted(limit),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
		ready:  make(chan struct{}, 1),
	}
}

// Validate checks that both endpoints are in range and walkable.
func (s *Searcher) Validate(start, end grid.Cell) error {
	for _, c := range [...]grid.Cell{start, end} {
		state, err := s.grid.Query(c)
		if err != nil {
			return err
		}
		if state != grid.Walkable {
			return fmt.Errorf("%w: %s", ErrBlockedEndpoint, c)
		}
	}
	return nil
}

// FindPath starts a search and returns immediately. Invalid endpoints fail
// fast and done is never called. Otherwise done is called exactly once, from
// a later Poll or Flush.
func (s *Searcher) FindPath(start, end grid.Cell, done func(Result)) error {
	if done == nil {
		return errors.New("pathfind: nil completion")
	}
	if err := s.Validate(start, end); err != nil {
		return err
	}
	if s.ctx.Err() != nil {
		return errors.New("pathfind: searcher closed")
	}

	snap := s.grid.Snapshot()
	s.pending++
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.sem.Acquire(s.ctx, 1); err != nil {
			return
		}
		defer s.sem.Release(1)

		path, _ := Search(snap, start, end, s.opts)
		s.completed.Push(completion{
			result: Result{Start: start, End: end, Path: path},
			done:   done,
		})
		select {
		case s.ready <- struct{}{}:
		default:
		}
	}()
	return nil
}

// Poll delivers every finished search and returns how many were delivered.
func (s *Searcher) Poll() int {
	items := s.completed.Drain()
	for _, c := range items {
		s.pending--
		if !c.result.Found() {
			s.logger.Debug("no route", "start", c.result.Start, "end", c.result.End)
		}
		c.done(c.result)
	}
	return len(items)
}

// Pending returns the number of searches not yet delivered.
func (s *Searcher) Pending() int {
	return s.pending
}

// Flush waits for every outstanding search, including ones started by
// completion callbacks, and delivers them.
func (s *Searcher) Flush(ctx context.Context) error {
	for s.pending > 0 {
		if s.Poll() > 0 {
			continue
		}
		select {
		case <-s.ready:
		case <-ctx.Done():
			return ctx.Err()
		case <-s.ctx.Done():
			return s.ctx.Err()
		}
	}
	return nil
}

// Close stops queued searches from starting and waits for running ones.
// Their results are dropped.
func (s *Searcher) Close() {
	s.cancel()
	s.wg.Wait()
	s.completed.Drain()
	s.pending = 0
}
