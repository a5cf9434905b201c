package game

import (
	"runtime"
	"sync"
)

// chunksPerWorker splits each stage finer than one chunk per worker so
// rows that hit the early-exit path do not leave workers idle.
const chunksPerWorker = 4

// rowFunc processes grid rows [y0, y1).
type rowFunc func(y0, y1 int)

// workChunk represents a range of rows for a worker to process.
type workChunk struct {
	y0, y1 int
	fn     rowFunc
}

// workerPool runs stages over row ranges on persistent goroutines.
// run returns only after every chunk has finished, which is the barrier
// between pipeline stages.
type workerPool struct {
	numWorkers int
	threshold  int // grids with fewer rows run inline

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool
}

// newWorkerPool creates a pool of workers goroutines (GOMAXPROCS when
// workers <= 0). Workers start lazily on the first parallel stage.
func newWorkerPool(workers, thresholdRows int) *workerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &workerPool{
		numWorkers: workers,
		threshold:  thresholdRows,
	}
}

// start launches persistent worker goroutines.
func (p *workerPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers*chunksPerWorker)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker processes chunks until stopped.
func (p *workerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.y0, chunk.y1)
			p.doneChan <- struct{}{}
		}
	}
}

// run applies fn to rows [0, rows) and waits for completion.
func (p *workerPool) run(rows int, fn rowFunc) {
	if rows <= 0 {
		return
	}
	if p.numWorkers <= 1 || rows < p.threshold {
		fn(0, rows)
		return
	}

	if !p.running {
		p.start()
	}

	chunks := p.numWorkers * chunksPerWorker
	chunkSize := (rows + chunks - 1) / chunks

	dispatched := 0
	for y0 := 0; y0 < rows; y0 += chunkSize {
		y1 := min(y0+chunkSize, rows)
		p.workChan <- workChunk{y0: y0, y1: y1, fn: fn}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
