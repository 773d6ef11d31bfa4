package cvtrack

import (
	"context"
	"sync"

	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
)

// result is the outcome of one tracker update within a frame
type result struct {
	index int
	box   BoundingBox
	ok    bool
}

// slot binds a tracker to its index in the MultiTracker
type slot struct {
	index   int
	tracker SingleTracker
}

// worker exclusively owns a subset of the trackers.  It receives one frame
// at a time on in and hands back the results for all of its trackers on out.
type worker struct {
	slots []slot
	in    chan gocv.Mat
	out   chan []result
}

// run processes frames until the context is cancelled
func (w *worker) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case frame := <-w.in:
			res := make([]result, len(w.slots))

			for i, s := range w.slots {
				box, ok := s.tracker.Update(frame)
				res[i] = result{index: s.index, box: box, ok: ok}
			}

			select {
			case w.out <- res:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// workerPool is a fixed size pool of workers the trackers of a MultiTracker
// are distributed across
type workerPool struct {
	workers []*worker
	group   *errgroup.Group
	cancel  context.CancelFunc
	close   sync.Once
}

// newWorkerPool starts size workers and assigns tracker i to worker
// i mod size
func newWorkerPool(trackers []SingleTracker, size int) *workerPool {

	if size > len(trackers) {
		size = len(trackers)
	}

	if size < 1 {
		size = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	p := &workerPool{
		workers: make([]*worker, size),
		group:   group,
		cancel:  cancel,
	}

	for i := range p.workers {
		p.workers[i] = &worker{
			in:  make(chan gocv.Mat, 1),
			out: make(chan []result, 1),
		}
	}

	for i, t := range trackers {
		w := p.workers[i%size]
		w.slots = append(w.slots, slot{index: i, tracker: t})
	}

	for _, w := range p.workers {
		group.Go(func() error {
			return w.run(ctx)
		})
	}

	return p
}

// size returns the number of workers in the pool
func (p *workerPool) size() int {
	return len(p.workers)
}

// update scatters the frame to every worker and blocks until all of them
// have returned their results, which are written at their tracker index
func (p *workerPool) update(frame gocv.Mat, statuses []bool, boxes []BoundingBox) {

	for _, w := range p.workers {
		w.in <- frame
	}

	for _, w := range p.workers {
		for _, r := range <-w.out {
			statuses[r.index] = r.ok
			boxes[r.index] = r.box
		}
	}
}

// Close stops all workers and waits for them to exit
func (p *workerPool) Close() error {

	var err error

	p.close.Do(func() {
		p.cancel()
		err = p.group.Wait()
	})

	return err
}
