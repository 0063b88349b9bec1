package worker

import (
	"context"

	"nexo/internal/model"
	"nexo/internal/store"
)

// Reviewer defines the interface for reviewing a single pair.
type Reviewer interface {
	Review(ctx context.Context, pair store.Pair) (*model.Review, error)
}

// ReviewJob asks the reviewer for a verdict on one correlated pair.
type ReviewJob struct {
	Pair     store.Pair
	Reviewer Reviewer
}

// Execute executes the review job.
func (j *ReviewJob) Execute(ctx context.Context) Result {
	review, err := j.Reviewer.Review(ctx, j.Pair)
	return &ReviewResult{
		Pair:   j.Pair,
		Review: review,
		Error:  err,
	}
}

// ReviewResult represents the outcome of one review job. A failed review
// carries its error and a nil Review; the batch never aborts on single-pair
// failures.
type ReviewResult struct {
	Pair   store.Pair
	Review *model.Review
	Error  error
}

// GetError returns the error from the review result.
func (r *ReviewResult) GetError() error {
	return r.Error
}

// BatchProcessor reviews multiple pairs concurrently.
type BatchProcessor struct {
	reviewer    Reviewer
	concurrency int
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(reviewer Reviewer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		reviewer:    reviewer,
		concurrency: concurrency,
	}
}

// ProcessPairs reviews the given pairs concurrently and returns one result
// per pair.
func (b *BatchProcessor) ProcessPairs(ctx context.Context, pairs []store.Pair) []*ReviewResult {
	if len(pairs) == 0 {
		return []*ReviewResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	go func() {
		defer pool.Close()
		for _, pair := range pairs {
			select {
			case <-ctx.Done():
				return
			default:
			}
			pool.Submit(&ReviewJob{Pair: pair, Reviewer: b.reviewer})
		}
	}()

	results := pool.Wait()

	reviewResults := make([]*ReviewResult, 0, len(results))
	for _, result := range results {
		reviewResults = append(reviewResults, result.(*ReviewResult))
	}
	return reviewResults
}
