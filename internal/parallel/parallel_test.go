package parallel

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestForCoversRangeOnce(t *testing.T) {
	tests := []struct {
		n, minChunk int
	}{
		{0, 8},
		{1, 8},
		{7, 8},
		{100, 8},
		{1000, 1},
		{1001, 64},
	}

	for _, tt := range tests {
		hits := make([]int32, tt.n)
		For(tt.n, tt.minChunk, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Errorf("n=%d minChunk=%d: index %d visited %d times", tt.n, tt.minChunk, i, h)
			}
		}
	}
}

func TestForErrPropagates(t *testing.T) {
	boom := errors.New("boom")
	err := ForErr(1000, 10, func(start, end int) error {
		if start == 0 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}
