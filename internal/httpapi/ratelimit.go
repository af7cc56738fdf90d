// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package httpapi

import (
	"sync"
	"time"
)

// resendInterval is the minimum gap between verification code resends per
// account.
const resendInterval = time.Minute

// resendLimiter enforces a per-key minimum interval. State lives in memory;
// a restart resets it, which is acceptable for an abuse brake.
type resendLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[string]time.Time
}

func newResendLimiter(interval time.Duration) *resendLimiter {
	return &resendLimiter{
		interval: interval,
		last:     make(map[string]time.Time),
	}
}

// Allow reports whether the key may act now and records the attempt if so.
func (l *resendLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if prev, ok := l.last[key]; ok && now.Sub(prev) < l.interval {
		return false
	}
	l.last[key] = now

	// Opportunistic cleanup keeps the map from growing without bound.
	if len(l.last) > 10000 {
		for k, t := range l.last {
			if now.Sub(t) >= l.interval {
				delete(l.last, k)
			}
		}
	}
	return true
}
