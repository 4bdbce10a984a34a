package engine

import (
	"context"
	"sync"
	"time"
)

// pdfWorkers is the default background PDF queue concurrency (spec §4.5).
const pdfWorkers = 2

// shutdownDrain bounds how long Close waits for in-flight PDF extraction to
// finish before abandoning whatever remains (spec §5: "drains the
// background queue for at most 2 seconds").
const shutdownDrain = 2 * time.Second

// PDFQueueStatus mirrors the get_pdf_queue_status command's response shape
// (spec §6).
type PDFQueueStatus struct {
	Pending         int
	Processing      int
	Completed       int
	Total           int
	IsRunning       bool
	ProgressPercent float64
	IsComplete      bool
}

// pdfQueue is the bounded, single-consumer-per-worker background queue that
// drains deferred PDF extraction after a foreground scan completes: a
// fixed worker pool reading off one channel, torn down by cancelling a
// context rather than by coordinated shutdown messages. Reset atomically
// replaces the in-flight generation: any item a
// worker is already processing finishes, everything still queued is
// abandoned, per spec §4.5's cancellation rule.
type pdfQueue struct {
	handle func(path string)

	mu         sync.Mutex
	generation int
	cancel     context.CancelFunc
	pending    int
	processing int
	completed  int
	total      int
	running    bool
	done       chan struct{}
}

// newPDFQueue returns an idle queue that calls handle for each path it
// pops.
func newPDFQueue(handle func(path string)) *pdfQueue {
	return &pdfQueue{handle: handle}
}

// Reset cancels whatever generation is currently running and starts a
// fresh one seeded with paths. Called with an empty slice to simply drain
// the current generation. The returned channel closes when every worker of
// this generation has returned, whether by draining the queue or by a
// later Reset/Shutdown cancelling it.
func (q *pdfQueue) Reset(paths []string) <-chan struct{} {
	q.mu.Lock()

	if q.cancel != nil {
		q.cancel()
	}

	q.generation++
	gen := q.generation

	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel

	items := make(chan string, len(paths))
	for _, p := range paths {
		items <- p
	}
	close(items)

	q.pending = len(paths)
	q.processing = 0
	q.completed = 0
	q.total = len(paths)
	q.running = len(paths) > 0
	done := make(chan struct{})
	q.done = done

	q.mu.Unlock()

	var wg sync.WaitGroup

	for i := 0; i < pdfWorkers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			q.worker(ctx, gen, items)
		}()
	}

	go func() {
		wg.Wait()
		close(done)
	}()

	return done
}

func (q *pdfQueue) worker(ctx context.Context, gen int, items chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-items:
			if !ok {
				q.finishGeneration(gen)
				return
			}

			q.startItem(gen)
			q.handle(path)
			q.completeItem(gen)
		}
	}
}

func (q *pdfQueue) startItem(gen int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if gen != q.generation {
		return
	}

	q.pending--
	q.processing++
}

func (q *pdfQueue) completeItem(gen int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if gen != q.generation {
		return
	}

	q.processing--
	q.completed++

	if q.completed >= q.total {
		q.running = false
	}
}

func (q *pdfQueue) finishGeneration(gen int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if gen != q.generation {
		return
	}

	q.running = false
}

// Status returns a point-in-time snapshot of queue progress.
func (q *pdfQueue) Status() PDFQueueStatus {
	q.mu.Lock()
	defer q.mu.Unlock()

	var pct float64
	if q.total > 0 {
		pct = float64(q.completed) / float64(q.total) * 100
	}

	return PDFQueueStatus{
		Pending:         q.pending,
		Processing:      q.processing,
		Completed:       q.completed,
		Total:           q.total,
		IsRunning:       q.running,
		ProgressPercent: pct,
		IsComplete:      q.total > 0 && q.completed == q.total,
	}
}

// Shutdown cancels the current generation and waits up to shutdownDrain for
// in-flight work to finish before returning.
func (q *pdfQueue) Shutdown() {
	q.mu.Lock()
	cancel := q.cancel
	done := q.done
	q.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()

	if done == nil {
		return
	}

	select {
	case <-done:
	case <-time.After(shutdownDrain):
	}
}
