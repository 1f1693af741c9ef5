// Package health checks the runtime dependencies of the service.
package health

import (
	"context"
	"sync"
	"time"
)

// DefaultTimeout bounds a check when Run is given no timeout.
const DefaultTimeout = 2 * time.Second

// Check pings one dependency.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Result is the outcome of one Check.
type Result struct {
	Name    string
	Latency time.Duration
	Err     error
}

// OK reports whether the check succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Run pings every check concurrently, each bounded by timeout, and reports
// whether all of them passed. Results keep the order of checks.
func Run(ctx context.Context, checks []Check, timeout time.Duration) ([]Result, bool) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	results := make([]Result, len(checks))

	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func(i int, c Check) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			err := c.Ping(ctx)
			results[i] = Result{Name: c.Name, Latency: time.Since(start), Err: err}
		}(i, c)
	}
	wg.Wait()

	for _, res := range results {
		if !res.OK() {
			return results, false
		}
	}
	return results, true
}
