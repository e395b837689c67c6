package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRand(t *testing.T) {
	t.Run("same seed and stream repeat", func(t *testing.T) {
		a := NewRand(42, 3)
		b := NewRand(42, 3)
		for i := 0; i < 10; i++ {
			require.Equal(t, a.Uint64(), b.Uint64(), "Streams should be reproducible")
		}
	})

	t.Run("different streams diverge", func(t *testing.T) {
		a := NewRand(42, 0)
		b := NewRand(42, 1)
		require.NotEqual(t, a.Uint64(), b.Uint64(), "Streams should be decorrelated")
	})
}

func TestSeed(t *testing.T) {
	require.Equal(t, uint64(7), Seed(7), "Non-zero seeds pass through")
	require.NotZero(t, Seed(0), "Zero seed is replaced")
}
