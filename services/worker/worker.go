package worker

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"funpay/lotworker/internal/lots"
	"funpay/lotworker/logger"
	"funpay/lotworker/services/publisher"
)

// Source scrapes the lot records of a single node
type Source interface {
	Scrape(ctx context.Context, nodeID int64) ([]lots.LotRecord, error)
}

// Worker periodically scrapes all configured lot nodes and publishes
// the results
type Worker struct {
	ctx       context.Context
	source    Source
	nodeIDs   []int64
	publisher publisher.Publisher
	interval  time.Duration
	log       *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	source Source,
	nodeIDs []int64,
	pub publisher.Publisher,
	interval time.Duration,
) *Worker {
	return &Worker{
		ctx:       ctx,
		source:    source,
		nodeIDs:   nodeIDs,
		publisher: pub,
		interval:  interval,
		log:       logger.ForWorker(),
	}
}

// Start runs the scrape loop until the context is cancelled
func (w *Worker) Start() error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		start := time.Now()
		w.RunOnce()
		w.log.Debug().
			Dur("elapsed", time.Since(start)).
			Msg("Scrape cycle finished")

		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce scrapes every configured node in parallel and then trims the
// streams
func (w *Worker) RunOnce() {
	var wg sync.WaitGroup
	for _, nodeID := range w.nodeIDs {
		wg.Add(1)
		go func(nodeID int64) {
			defer wg.Done()
			w.scrapeAndPublish(nodeID)
		}(nodeID)
	}
	wg.Wait()

	if err := w.publisher.TrimStreams(); err != nil {
		w.log.Error().Err(err).Msg("Error trimming streams")
	}
}

// scrapeAndPublish scrapes lots for one node and publishes the batch
func (w *Worker) scrapeAndPublish(nodeID int64) {
	key := strconv.FormatInt(nodeID, 10)

	records, err := w.source.Scrape(w.ctx, nodeID)
	if err != nil {
		w.log.Error().Err(err).Str("node", key).Msg("Scrape failed")
		return
	}

	if len(records) == 0 {
		w.log.Debug().Str("node", key).Msg("No lots found")
		return
	}

	batch, err := json.Marshal(records)
	if err != nil {
		w.log.Error().Err(err).Str("node", key).Msg("Error encoding lots")
		return
	}

	if err := w.publisher.Publish(key, batch); err != nil {
		w.log.Error().Err(err).Str("node", key).Msg("Error publishing lots")
		return
	}

	w.log.Info().
		Str("node", key).
		Int("count", len(records)).
		Msg("Published lots")
}
