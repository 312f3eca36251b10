package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowWithinBurst(t *testing.T) {
	dl := NewDomainLimiter(1.0, 2)

	if !dl.Allow("https://www.flipkart.com/a/p/itm1") {
		t.Error("first request should be allowed")
	}
	if !dl.Allow("https://www.flipkart.com/b/p/itm2") {
		t.Error("second request within burst should be allowed")
	}
	if dl.Allow("https://www.flipkart.com/c/p/itm3") {
		t.Error("third request should exceed the burst")
	}
}

func TestHostsAreIndependent(t *testing.T) {
	dl := NewDomainLimiter(1.0, 1)

	if !dl.Allow("https://www.flipkart.com/a/p/itm1") {
		t.Error("first host should be allowed")
	}
	if !dl.Allow("https://other.example.com/a") {
		t.Error("exhausting one host must not throttle another")
	}
	if dl.Allow("https://www.flipkart.com/b/p/itm2") {
		t.Error("first host should now be throttled")
	}
}

func TestWaitCancelled(t *testing.T) {
	dl := NewDomainLimiter(0.001, 1)
	dl.Allow("https://www.flipkart.com/a") // drain the bucket

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := dl.Wait(ctx, "https://www.flipkart.com/b"); err == nil {
		t.Error("Wait should fail when the context expires first")
	}
}

func TestWaitUnparseableURL(t *testing.T) {
	dl := NewDomainLimiter(1.0, 1)

	if err := dl.Wait(context.Background(), "://not a url"); err != nil {
		t.Errorf("unparseable URL should pass through: %v", err)
	}
}

func TestSetLimit(t *testing.T) {
	dl := NewDomainLimiter(1.0, 1)
	dl.SetLimit("www.flipkart.com", 100, 5)

	allowed := 0
	for i := 0; i < 5; i++ {
		if dl.Allow("https://www.flipkart.com/x") {
			allowed++
		}
	}
	if allowed != 5 {
		t.Errorf("allowed %d requests, want the overridden burst of 5", allowed)
	}
}

func TestDefaultsApplied(t *testing.T) {
	dl := NewDomainLimiter(0, 0)
	if dl.perHost != 1.0 || dl.burst != 2 {
		t.Errorf("defaults = %v/%d, want 1.0/2", dl.perHost, dl.burst)
	}
}
