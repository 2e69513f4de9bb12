// Public domain.

package zernike_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radioholo/oof/zernike"
)

func ExampleIndices() {
	for _, ln := range zernike.Indices(2) {
		fmt.Printf("(%d, %d) ", ln.L, ln.N)
	}
	fmt.Println()
	// Output:
	// (0, 0) (-1, 1) (1, 1) (-2, 2) (0, 2) (2, 2)
}

func TestR(t *testing.T) {
	for _, tc := range []struct {
		m, n int
		rho  float64
		want float64
	}{
		{0, 0, 0.7, 1},
		{1, 1, 0.7, 0.7},
		{0, 2, 0.7, 2*0.7*0.7 - 1},
		{2, 2, 0.7, 0.7 * 0.7},
		{1, 3, 0.5, 3*0.125 - 2*0.5},
		{0, 4, 0.3, 6*math.Pow(0.3, 4) - 6*0.09 + 1},
	} {
		got := zernike.R(tc.m, tc.n, tc.rho)
		assert.InDelta(t, tc.want, got, 1e-12, "R(%d, %d, %g)", tc.m, tc.n, tc.rho)
	}

	// edge of the disk: R_n^n(1) = 1 for any n
	for n := 0; n <= 6; n++ {
		assert.InDelta(t, 1, zernike.R(n, n, 1), 1e-12)
	}
}

func TestRPanics(t *testing.T) {
	assert.Panics(t, func() { zernike.R(-1, 1, 0.5) })
	assert.Panics(t, func() { zernike.R(3, 1, 0.5) })
	assert.Panics(t, func() { zernike.R(0, 1, 0.5) }) // n-m odd
}

func TestU(t *testing.T) {
	theta, rho := 0.3, 0.8

	// l = -2, n = 2: rho^2 sin(2 theta)
	assert.InDelta(t, rho*rho*math.Sin(2*theta), zernike.U(-2, 2, theta, rho), 1e-12)
	// l = 2, n = 2: rho^2 cos(2 theta)
	assert.InDelta(t, rho*rho*math.Cos(2*theta), zernike.U(2, 2, theta, rho), 1e-12)
	// l = 0: no angular dependence
	assert.InDelta(t, zernike.U(0, 2, 0, rho), zernike.U(0, 2, 1.1, rho), 1e-12)
}

func TestCountOrder(t *testing.T) {
	for n := 0; n <= 8; n++ {
		k := zernike.Count(n)
		assert.Equal(t, k, len(zernike.Indices(n)))

		got, err := zernike.Order(k)
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}

	_, err := zernike.Order(4)
	assert.Error(t, err)
	_, err = zernike.Order(0)
	assert.Error(t, err)
}

func TestLadderLeaders(t *testing.T) {
	ln := zernike.Indices(5)
	assert.Equal(t, zernike.LN{0, 0}, ln[0])
	assert.Equal(t, zernike.LN{-1, 1}, ln[1])
	assert.Equal(t, zernike.LN{1, 1}, ln[2])
}
