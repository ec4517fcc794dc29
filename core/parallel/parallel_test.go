package parallel

import (
	"sync/atomic"
	"testing"
)

func TestParallelizeCoversAllItems(t *testing.T) {
	tests := []struct {
		name  string
		items int
	}{
		{"empty", 0},
		{"single item", 1},
		{"fewer items than cores", 3},
		{"many items", 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var visited int64
			Parallelize(tt.items, func(start, end int) {
				atomic.AddInt64(&visited, int64(end-start))
			})
			if visited != int64(tt.items) {
				t.Errorf("visited %d items, want %d", visited, tt.items)
			}
		})
	}
}

func TestParallelizeDisjointRanges(t *testing.T) {
	const items = 512
	seen := make([]int64, items)

	Parallelize(items, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt64(&seen[i], 1)
		}
	})

	for i, count := range seen {
		if count != 1 {
			t.Fatalf("item %d visited %d times, want exactly once", i, count)
		}
	}
}

func TestParallelizeWithThreshold(t *testing.T) {
	// Below the threshold the callback must run once over the full range.
	calls := 0
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		calls++
		if start != 0 || end != 10 {
			t.Errorf("sequential range = [%d,%d), want [0,10)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("callback invoked %d times, want 1", calls)
	}
}
