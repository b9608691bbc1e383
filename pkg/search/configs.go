package search

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// ResultCap is the maximum number of results a search returns.
	ResultCap int

	// FunctionThreshold is the minimum similarity passed to the
	// database-side search function. Kept at 0 so the function returns
	// its full candidate window; the quality decision happens against
	// QualityBar afterwards.
	FunctionThreshold float64

	// QualityBar is the minimum top similarity below which a result set
	// is considered insufficient and replenishment kicks in.
	QualityBar float64

	// CoverageBatch caps how many embedding-less books are backfilled
	// inline before a search runs.
	CoverageBatch int

	// ReplenishCount is how many unknown catalog records a replenishment
	// pass fetches.
	ReplenishCount int

	// ReplenishDelay is the fixed pause between consecutive embedding
	// calls during replenishment. A crude rate limit, not backpressure.
	ReplenishDelay time.Duration
}

// NewConfig reads the orchestrator tunables from the environment, falling
// back to the service defaults.
func NewConfig() Config {
	return Config{
		ResultCap:         getenvInt("SEARCH_RESULT_CAP", 10),
		FunctionThreshold: getenvFloat("SEARCH_FUNCTION_THRESHOLD", 0),
		QualityBar:        getenvFloat("SEARCH_QUALITY_BAR", 0.15),
		CoverageBatch:     getenvInt("SEARCH_COVERAGE_BATCH", 50),
		ReplenishCount:    getenvInt("SEARCH_REPLENISH_COUNT", 32),
		ReplenishDelay:    time.Duration(getenvInt("SEARCH_REPLENISH_DELAY_MS", 200)) * time.Millisecond,
	}
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getenvFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
	}
	return def
}
