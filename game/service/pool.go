package service

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/wricardo/finesse/game/engine"
)

// ErrPoolClosed is returned for work submitted after Close.
var ErrPoolClosed = errors.New("solver pool closed")

// solveJob is one search request; the worker answers on reply.
type solveJob struct {
	board *engine.Board
	start engine.Placement
	goal  engine.Placement
	reply chan engine.SearchResult
}

// Pool runs searches on a fixed set of worker goroutines. A search is never
// interrupted: the caller's context only bounds how long it waits.
type Pool struct {
	jobs    chan solveJob
	closed  chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	workers int
}

// PoolSize clamps a requested worker count to [1, NumCPU]. Zero or negative
// means one worker per CPU.
func PoolSize(requested int) int {
	cpus := runtime.NumCPU()
	if cpus < 1 {
		cpus = 1
	}
	if requested <= 0 || requested > cpus {
		return cpus
	}
	return requested
}

// NewPool starts workers goroutines
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		jobs:    make(chan solveJob),
		closed:  make(chan struct{}),
		workers: workers,
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}
	return p
}

// Workers returns the number of worker goroutines
func (p *Pool) Workers() int {
	return p.workers
}

// Solve hands the search to a worker and waits for the answer. The board must
// not be mutated until Solve returns.
func (p *Pool) Solve(ctx context.Context, b *engine.Board, start, goal engine.Placement) (engine.SearchResult, error) {
	job := solveJob{
		board: b,
		start: start,
		goal:  goal,
		reply: make(chan engine.SearchResult, 1),
	}

	select {
	case <-p.closed:
		return engine.SearchResult{}, ErrPoolClosed
	default:
	}

	select {
	case p.jobs <- job:
	case <-p.closed:
		return engine.SearchResult{}, ErrPoolClosed
	case <-ctx.Done():
		return engine.SearchResult{}, ctx.Err()
	}

	select {
	case result := <-job.reply:
		return result, nil
	case <-ctx.Done():
		return engine.SearchResult{}, ctx.Err()
	}
}

// Close stops accepting work and waits for in-flight searches to finish
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.closed)
	})
	p.wg.Wait()
}

func (p *Pool) work() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobs:
			job.reply <- engine.Search(job.board, job.start, job.goal)
		case <-p.closed:
			return
		}
	}
}
