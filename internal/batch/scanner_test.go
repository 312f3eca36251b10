package batch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/flipintegrity/flipscan/pkg/models"
)

type mockAuditor struct {
	mu      sync.Mutex
	calls   int
	inUse   int32
	maxSeen int32
	fail    func(url string) bool
}

func (m *mockAuditor) Audit(ctx context.Context, opts models.ScanOptions) (*models.Product, error) {
	cur := atomic.AddInt32(&m.inUse, 1)
	defer atomic.AddInt32(&m.inUse, -1)
	for {
		seen := atomic.LoadInt32(&m.maxSeen)
		if cur <= seen || atomic.CompareAndSwapInt32(&m.maxSeen, seen, cur) {
			break
		}
	}

	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.fail != nil && m.fail(opts.URL) {
		return nil, errors.New("scan failed")
	}
	return &models.Product{Name: "product", Price: 1000, URL: opts.URL}, nil
}

func requests(urls ...string) []models.ScanOptions {
	out := make([]models.ScanOptions, 0, len(urls))
	for _, u := range urls {
		out = append(out, models.ScanOptions{URL: u})
	}
	return out
}

func TestScanAllCollectsResults(t *testing.T) {
	auditor := &mockAuditor{}
	s := New(auditor, 2)

	results := s.ScanAll(context.Background(), requests("u1", "u2", "u3"))

	count := 0
	for res := range results {
		count++
		if res.Error != "" {
			t.Errorf("unexpected error for %s: %s", res.URL, res.Error)
		}
		if res.Product == nil {
			t.Errorf("missing product for %s", res.URL)
		}
	}
	if count != 3 {
		t.Errorf("got %d results, want 3", count)
	}
	if auditor.calls != 3 {
		t.Errorf("auditor called %d times, want 3", auditor.calls)
	}
}

func TestScanAllReportsFailures(t *testing.T) {
	auditor := &mockAuditor{fail: func(url string) bool { return strings.HasSuffix(url, "bad") }}
	s := New(auditor, 2)

	results := s.ScanAll(context.Background(), requests("u1", "u2-bad", "u3"))

	failed := 0
	for res := range results {
		if res.Error != "" {
			failed++
			if res.URL != "u2-bad" {
				t.Errorf("wrong URL failed: %s", res.URL)
			}
		}
	}
	if failed != 1 {
		t.Errorf("got %d failures, want 1", failed)
	}
}

func TestScanAllBoundsConcurrency(t *testing.T) {
	auditor := &mockAuditor{}
	s := New(auditor, 2)

	urls := make([]string, 20)
	for i := range urls {
		urls[i] = "u"
	}
	for range s.ScanAll(context.Background(), requests(urls...)) {
	}

	if auditor.maxSeen > 2 {
		t.Errorf("observed %d concurrent scans, want at most 2", auditor.maxSeen)
	}
}

func TestScanAllContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	auditor := &mockAuditor{}
	s := New(auditor, 1)

	urls := make([]string, 50)
	for i := range urls {
		urls[i] = "u"
	}
	count := 0
	for range s.ScanAll(ctx, requests(urls...)) {
		count++
	}
	if count == len(urls) {
		t.Error("cancelled batch should not complete every scan")
	}
}

func TestNewAutoTunes(t *testing.T) {
	s := New(&mockAuditor{}, 0)
	if s.concurrency < 1 {
		t.Errorf("concurrency = %d, want >= 1", s.concurrency)
	}
	if s.concurrency > 6 {
		t.Errorf("concurrency = %d, want the cap of 6", s.concurrency)
	}
}
