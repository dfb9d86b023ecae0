package ratelimiter

import (
	"context"
	"log/slog"
	"time"
)

// VendorGate adapts the token-bucket limiter to the boolean gate outbound
// vendor clients use. It fails open: a broken limiter must never block
// screening calls.
type VendorGate struct {
	limiter Limiter
}

func NewVendorGate(l Limiter) *VendorGate {
	return &VendorGate{limiter: l}
}

// Allow reports whether a call against the vendor bucket may proceed.
func (g *VendorGate) Allow(ctx context.Context, key string) bool {
	if g == nil || g.limiter == nil {
		return true
	}
	allowed, retryAfter, err := g.limiter.Allow(ctx, key, 1)
	if err != nil {
		return true
	}
	if !allowed {
		slog.Warn("vendor call throttled",
			slog.String("bucket", key),
			slog.Duration("retry_after", retryAfter.Round(time.Millisecond)))
	}
	return allowed
}
