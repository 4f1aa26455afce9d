package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultWorkers   = 4
	MaxWorkers       = 10
	DefaultRateLimit = 5.0
)

// BulkLookupOpts contains configuration for bulk song lookups.
type BulkLookupOpts struct {
	NumWorkers int     // Concurrent workers (default: 4, max: 10)
	RateLimit  float64 // Requests per second shared by all workers (default: 5)
}

func (o BulkLookupOpts) normalize() BulkLookupOpts {
	if o.NumWorkers <= 0 {
		o.NumWorkers = DefaultWorkers
	}
	if o.NumWorkers > MaxWorkers {
		o.NumWorkers = MaxWorkers
	}
	if o.RateLimit <= 0 {
		o.RateLimit = DefaultRateLimit
	}
	return o
}

type lookupJob struct {
	index int
	id    int64
}

// BulkLookup resolves ids against the catalog with a bounded worker pool.
//
// Workers pull ids from a channel and wait on one shared limiter before each request.
// Failures are reported per id; the call only fails as a whole when ctx is cancelled.
// Results keep the order of ids.
func (e *LookupEngine) BulkLookup(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []int64,
	opts BulkLookupOpts,
) (*BulkLookupResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no ids to look up", shared.ErrMissingArgument)
	}

	opts = opts.normalize()
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan lookupJob, len(ids))
	results := make(chan LookupResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.lookupWorker(ctx, &wg, limiter, jobs, results)
	}

	e.sendProgress(prog, lookupStartedUpdate(len(ids), opts.NumWorkers))
	for i, id := range ids {
		jobs <- lookupJob{index: i, id: id}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]LookupResult, len(ids))
	filled := make([]bool, len(ids))
	result := &BulkLookupResult{Total: len(ids)}

	completed := 0
	for res := range results {
		completed++
		ordered[res.index] = res
		filled[res.index] = true

		if res.Err == nil {
			result.Found++
			e.sendProgress(prog, lookupCompletedUpdate(completed, len(ids), res.Song))
		} else {
			result.Failed++
			e.sendProgress(prog, lookupFailedUpdate(completed, len(ids), res.ID, res.Err))
		}
	}

	for i, ok := range filled {
		if ok {
			result.Results = append(result.Results, ordered[i])
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("bulk lookup interrupted after %d of %d: %w", completed, len(ids), err)
	}
	return result, nil
}

// lookupWorker resolves ids from the jobs channel until it is drained or ctx is done.
func (e *LookupEngine) lookupWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan lookupJob,
	results chan<- LookupResult,
) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		song, err := e.catalog.GetByID(ctx, job.id)
		if err != nil && errors.Is(err, context.Canceled) {
			return
		}
		if err != nil {
			e.logger.Warn("lookup failed", "id", job.id, "error", err)
		}
		results <- LookupResult{index: job.index, ID: job.id, Song: song, Err: err}
	}
}

// Songs returns the songs that were found, in input order.
func (r *BulkLookupResult) Songs() []models.Song {
	out := make([]models.Song, 0, r.Found)
	for _, res := range r.Results {
		if res.Err == nil {
			out = append(out, res.Song)
		}
	}
	return out
}
