package linsys

import "math"

// NoFailure is returned as the pivot index by Solve when factorization
// succeeds. Any other value is the 0-based row index where a singular pivot
// was encountered, matching the sentinel convention in
// original_source/core/gaussian_solver.h (there -1 means success).
const NoFailure = -1

const singularPivotThreshold = 1e-18

// Solve factors a copy of A and solves A*x = z for x using Gaussian
// elimination with partial pivoting. It never mutates the System itself —
// callers that need to retry with a perturbed diagonal (e.g. Gmin boosting)
// add to the diagonal (AddA or AddGmin) and call Solve again.
//
// On success it returns (x, NoFailure). On a singular pivot it returns
// (nil, row) where row is the 0-based equation index whose pivot could not
// be made non-negligible by partial pivoting.
func Solve(s *System) ([]float64, int) {
	n := s.Size
	a := make([][]float64, n)
	for i := 0; i < n; i++ {
		a[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			a[i][j] = s.GetA(i, j)
		}
	}
	b := make([]float64, n)
	for i := 0; i < n; i++ {
		b[i] = s.GetZ(i)
	}

	for k := 0; k < n; k++ {
		pivotRow := k
		pivotMag := math.Abs(a[k][k])
		for i := k + 1; i < n; i++ {
			if mag := math.Abs(a[i][k]); mag > pivotMag {
				pivotMag = mag
				pivotRow = i
			}
		}

		if pivotMag < singularPivotThreshold {
			return nil, k
		}

		if pivotRow != k {
			a[k], a[pivotRow] = a[pivotRow], a[k]
			b[k], b[pivotRow] = b[pivotRow], b[k]
		}

		pivot := a[k][k]
		for i := k + 1; i < n; i++ {
			factor := a[i][k] / pivot
			if factor == 0 {
				continue
			}
			for j := k; j < n; j++ {
				a[i][j] -= factor * a[k][j]
			}
			b[i] -= factor * b[k]
		}
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := b[i]
		for j := i + 1; j < n; j++ {
			sum -= a[i][j] * x[j]
		}
		x[i] = sum / a[i][i]
	}

	return x, NoFailure
}
