package world

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

const defaultQueueSize = 1024

// streamJob is one queued background generation.
type streamJob struct {
	coord  ChunkCoord
	gen    Generator
	ctx    context.Context
	cancel context.CancelFunc
}

// ChunkStreamer generates chunks on background workers and installs them
// into the store. A cancelled job never reaches the store: installation
// and cancellation both happen under the pending lock.
type ChunkStreamer struct {
	jobs chan *streamJob

	pendingMu  sync.Mutex
	pending    map[ChunkCoord]*streamJob
	maxPending int
	closed     bool

	wg    sync.WaitGroup
	store *ChunkStore
	log   logrus.FieldLogger
}

// NewChunkStreamer starts workers goroutines feeding store.
func NewChunkStreamer(store *ChunkStore, workers, queueSize int, log logrus.FieldLogger) *ChunkStreamer {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	workers = max(workers, 1)
	cs := &ChunkStreamer{
		jobs:       make(chan *streamJob, queueSize),
		pending:    make(map[ChunkCoord]*streamJob),
		maxPending: queueSize,
		store:      store,
		log:        log,
	}
	cs.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go cs.worker()
	}
	return cs
}

func (cs *ChunkStreamer) worker() {
	defer cs.wg.Done()
	for j := range cs.jobs {
		if err := j.ctx.Err(); err != nil {
			cs.finish(j, nil, err)
			continue
		}
		chunk, err := j.gen.Synthesize(j.ctx, j.coord)
		cs.finish(j, chunk, err)
	}
}

func (cs *ChunkStreamer) finish(j *streamJob, chunk *Chunk, err error) {
	cs.pendingMu.Lock()
	defer cs.pendingMu.Unlock()

	if cur, ok := cs.pending[j.coord]; ok && cur == j {
		delete(cs.pending, j.coord)
	}
	switch {
	case err != nil:
		if !errors.Is(err, context.Canceled) {
			cs.log.WithError(err).WithField("chunk", j.coord.String()).Warn("chunk generation failed")
		}
	case j.ctx.Err() != nil:
		// cancelled after the last check inside Synthesize
	default:
		cs.store.Add(chunk)
	}
	j.cancel()
}

// Request queues coord for generation with gen. It returns false when the
// chunk is resident, already pending, or the queue is full.
func (cs *ChunkStreamer) Request(coord ChunkCoord, gen Generator) bool {
	if cs.store.Has(coord) {
		return false
	}

	cs.pendingMu.Lock()
	defer cs.pendingMu.Unlock()

	if cs.closed {
		return false
	}
	if _, ok := cs.pending[coord]; ok {
		return false
	}
	if cs.maxPending > 0 && len(cs.pending) >= cs.maxPending {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := &streamJob{coord: coord, gen: gen, ctx: ctx, cancel: cancel}

	select {
	case cs.jobs <- j:
		cs.pending[coord] = j
		return true
	default:
		cancel()
		return false
	}
}

// CancelWhere cancels every pending job whose coordinate matches.
func (cs *ChunkStreamer) CancelWhere(match func(ChunkCoord) bool) int {
	cs.pendingMu.Lock()
	defer cs.pendingMu.Unlock()

	n := 0
	for coord := range cs.pending {
		if match(coord) && cs.cancelLocked(coord) {
			n++
		}
	}
	return n
}

// CancelAll cancels every pending job.
func (cs *ChunkStreamer) CancelAll() int {
	return cs.CancelWhere(func(ChunkCoord) bool { return true })
}

func (cs *ChunkStreamer) cancelLocked(coord ChunkCoord) bool {
	j, ok := cs.pending[coord]
	if !ok {
		return false
	}
	j.cancel()
	delete(cs.pending, coord)
	return true
}

// Pending returns the number of queued or in-progress jobs.
func (cs *ChunkStreamer) Pending() int {
	cs.pendingMu.Lock()
	defer cs.pendingMu.Unlock()
	return len(cs.pending)
}

// Close cancels outstanding work and waits for the workers to exit.
func (cs *ChunkStreamer) Close() {
	cs.pendingMu.Lock()
	if cs.closed {
		cs.pendingMu.Unlock()
		return
	}
	cs.closed = true
	for coord := range cs.pending {
		cs.cancelLocked(coord)
	}
	close(cs.jobs)
	cs.pendingMu.Unlock()

	cs.wg.Wait()
}
