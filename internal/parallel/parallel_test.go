package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		n    int
	}{
		{"default", DefaultConfig(), 1000},
		{"sequential", Sequential(), 100},
		{"disabled", Config{Enabled: false, NumWorkers: 8}, 37},
		{"large chunks", Config{Enabled: true, NumWorkers: 4, MinChunkSize: 300}, 1000},
		{"empty", DefaultConfig(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var counter int64
			seen := make([]int32, tt.n)
			For(tt.n, func(i int) {
				atomic.AddInt64(&counter, 1)
				atomic.AddInt32(&seen[i], 1)
			}, tt.cfg)

			assert.Equal(t, int64(tt.n), counter)
			for i, v := range seen {
				assert.Equalf(t, int32(1), v, "index %d visited %d times", i, v)
			}
		})
	}
}

func TestForBatch(t *testing.T) {
	batch, channels := 4, 8
	results := make([][]bool, batch)
	for b := range results {
		results[b] = make([]bool, channels)
	}

	ForBatch(batch, channels, func(b, c int) {
		results[b][c] = true
	}, DefaultConfig())

	for b := 0; b < batch; b++ {
		for c := 0; c < channels; c++ {
			assert.Truef(t, results[b][c], "missing result at [%d][%d]", b, c)
		}
	}
}
