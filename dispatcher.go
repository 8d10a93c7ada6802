package tax

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"goflare.io/tax/models"
	"goflare.io/tax/models/enum"
)

const (
	defaultMaxWorkers   = 4
	defaultJobQueueSize = 100
)

// Dispatcher fans batch entries out over a fixed pool of workers.
type Dispatcher struct {
	WorkerPool chan chan WorkRequest
	maxWorkers int
	jobQueue   chan WorkRequest
	salesTax   *WashingtonSalesTax
	workers    []Worker
	stop       chan bool
	stopOnce   sync.Once
	mu         sync.Mutex
}

func NewDispatcher(maxWorkers int, jobQueueSize int, salesTax *WashingtonSalesTax) *Dispatcher {
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}
	if jobQueueSize <= 0 {
		jobQueueSize = defaultJobQueueSize
	}
	pool := make(chan chan WorkRequest, maxWorkers)
	return &Dispatcher{
		WorkerPool: pool,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan WorkRequest, jobQueueSize),
		salesTax:   salesTax,
		stop:       make(chan bool),
	}
}

func (d *Dispatcher) Run() {
	d.mu.Lock()
	for i := 0; i < d.maxWorkers; i++ {
		worker := NewWorker(i+1, d.WorkerPool, d.salesTax)
		worker.Start()
		d.workers = append(d.workers, worker)
	}
	d.mu.Unlock()

	go d.dispatch()
}

func (d *Dispatcher) dispatch() {
	for {
		select {
		case job := <-d.jobQueue:
			go func(job WorkRequest) {
				select {
				case jobChannel := <-d.WorkerPool:
					select {
					case jobChannel <- job:
					case <-job.Ctx.Done():
						// the pool is sized to hold every worker's channel
						d.WorkerPool <- jobChannel
						d.abandon(job, "Job context canceled before processing")
					case <-d.stop:
						d.abandon(job, "Dispatcher stopped before processing")
					}
				case <-job.Ctx.Done():
					d.abandon(job, "Job context canceled while waiting for available worker")
				case <-d.stop:
					d.abandon(job, "Dispatcher stopped while waiting for available worker")
				}
			}(job)

		case <-d.stop:
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case job := <-d.jobQueue:
			d.abandon(job, "Dispatcher stopped before processing")
		default:
			return
		}
	}
}

// Submit queues a job. A job that cannot be queued is answered immediately so
// that every submitted job yields exactly one result.
func (d *Dispatcher) Submit(job WorkRequest) {
	select {
	case <-d.stop:
		d.abandon(job, "Dispatcher stopped before queueing")
		return
	default:
	}

	select {
	case d.jobQueue <- job:
	case <-job.Ctx.Done():
		d.abandon(job, "Job context canceled before queueing")
	case <-d.stop:
		d.abandon(job, "Dispatcher stopped before queueing")
	}
}

// Resolve submits every request and waits for all results, returned in input order.
func (d *Dispatcher) Resolve(ctx context.Context, reqs []models.TaxRateRequest) []models.TaxRateResult {
	results := make(chan WorkResult, len(reqs))
	for i, req := range reqs {
		d.Submit(WorkRequest{Ctx: ctx, Index: i, Request: req, Results: results})
	}

	ordered := make([]models.TaxRateResult, len(reqs))
	for range reqs {
		r := <-results
		ordered[r.Index] = r.Result
	}
	return ordered
}

func (d *Dispatcher) abandon(job WorkRequest, reason string) {
	d.salesTax.logger.Warn(reason, zap.Int("index", job.Index), zap.Error(job.Ctx.Err()))
	job.Results <- WorkResult{
		Index:  job.Index,
		Result: models.NewErrorResult(enum.ErrorKindNetworkFailure, Message(enum.ErrorKindNetworkFailure)),
	}
}

func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stop)

		d.mu.Lock()
		for _, worker := range d.workers {
			worker.Stop()
		}
		d.workers = nil
		d.mu.Unlock()
	})
}
