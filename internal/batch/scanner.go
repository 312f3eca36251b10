// Package batch runs many product-page scans concurrently against a
// shared browser pool.
package batch

import (
	"context"
	"sync"

	"github.com/flipintegrity/flipscan/pkg/models"
)

// Auditor is the single-page scan the batch fans out over.
type Auditor interface {
	Audit(ctx context.Context, opts models.ScanOptions) (*models.Product, error)
}

// Scanner wraps an Auditor with bounded concurrency.
type Scanner struct {
	auditor     Auditor
	concurrency int
}

// New creates a batch Scanner. Non-positive concurrency auto-tunes to
// the machine.
func New(auditor Auditor, concurrency int) *Scanner {
	if concurrency <= 0 {
		concurrency = OptimalConcurrency()
	}
	return &Scanner{
		auditor:     auditor,
		concurrency: concurrency,
	}
}

// ScanAll runs every scan with at most the configured concurrency and
// streams results as they finish. The channel closes when all scans are
// done or the context is cancelled.
func (s *Scanner) ScanAll(ctx context.Context, requests []models.ScanOptions) <-chan models.ScanResult {
	results := make(chan models.ScanResult, len(requests))

	go func() {
		defer close(results)

		sem := make(chan struct{}, s.concurrency)
		var wg sync.WaitGroup

		for _, req := range requests {
			select {
			case <-ctx.Done():
				wg.Wait()
				return
			case sem <- struct{}{}:
			}

			wg.Add(1)
			go func(r models.ScanOptions) {
				defer wg.Done()
				defer func() { <-sem }()

				product, err := s.auditor.Audit(ctx, r)
				result := models.ScanResult{URL: r.URL, Product: product}
				if err != nil {
					result.Error = err.Error()
				}
				results <- result
			}(req)
		}

		wg.Wait()
	}()

	return results
}
