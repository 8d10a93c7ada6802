package tax

import (
	"context"

	"go.uber.org/zap"

	"goflare.io/tax/models"
)

type Worker struct {
	ID         int
	WorkerPool chan chan WorkRequest
	JobChannel chan WorkRequest
	quit       chan bool
	salesTax   *WashingtonSalesTax
}

// WorkRequest is one address of a batch. Index is its position in the batch.
type WorkRequest struct {
	Ctx     context.Context
	Index   int
	Request models.TaxRateRequest
	Results chan<- WorkResult
}

type WorkResult struct {
	Index  int
	Result models.TaxRateResult
}

func NewWorker(id int, workerPool chan chan WorkRequest, salesTax *WashingtonSalesTax) Worker {
	return Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan WorkRequest),
		quit:       make(chan bool),
		salesTax:   salesTax,
	}
}

func (w Worker) Start() {
	go func() {
		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-w.quit:
				return
			}

			select {
			case job := <-w.JobChannel:
				w.salesTax.logger.Debug("Resolving batch entry",
					zap.Int("worker_id", w.ID),
					zap.Int("index", job.Index))

				job.Results <- WorkResult{
					Index:  job.Index,
					Result: w.salesTax.GetTaxRate(job.Ctx, job.Request),
				}

			case <-w.quit:
				return
			}
		}
	}()
}

func (w Worker) Stop() {
	close(w.quit)
}
