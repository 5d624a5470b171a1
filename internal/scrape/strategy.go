package scrape

import (
	"fmt"
	"strings"
)

// Strategy selects how detail pages are fetched.
type Strategy string

const (
	// StrategySequential fetches one page at a time and stops at the first
	// failure.
	StrategySequential Strategy = "sequential"
	// StrategyFanout starts one goroutine per page. Failed pages are
	// reported; the rest are still stored.
	StrategyFanout Strategy = "threaded"
	// StrategyPool runs pages on a bounded worker pool and stops at the
	// first failure in listing order.
	StrategyPool Strategy = "executor"
)

// Strategies lists every strategy in the order the API documents them.
var Strategies = []Strategy{StrategySequential, StrategyFanout, StrategyPool}

// ParseStrategy accepts the canonical names plus "fanout" and "pool".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sequential", "":
		return StrategySequential, nil
	case "threaded", "fanout":
		return StrategyFanout, nil
	case "executor", "pool":
		return StrategyPool, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

func (s Strategy) String() string { return string(s) }
