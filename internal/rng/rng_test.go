package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Deterministic(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}

func TestIntN_NonPositive(t *testing.T) {
	assert.Equal(t, 0, New(1).IntN(0))
	assert.Equal(t, 0, New(1).IntN(-3))
}

func TestSample(t *testing.T) {
	tests := []struct {
		name       string
		size, n    int
		wantLength int
	}{
		{"fewer than size", 10, 3, 3},
		{"more than size", 2, 5, 2},
		{"zero", 4, 0, 0},
		{"empty pool", 0, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sample(New(7), tt.size, tt.n)
			assert.Len(t, got, tt.wantLength)
			seen := map[int]bool{}
			for _, i := range got {
				assert.False(t, seen[i], "duplicate index %d", i)
				assert.GreaterOrEqual(t, i, 0)
				assert.Less(t, i, tt.size)
				seen[i] = true
			}
		})
	}
}
