// SPDX-License-Identifier: MIT

// Package linalg holds the small dense solvers used by the colour gradient.
package linalg

import (
	"fmt"
	"math"

	"spectrogen/internal/fault"

	"gonum.org/v1/gonum/mat"
)

// pivotTolerance is the smallest admissible pivot relative to the largest
// absolute entry of the pivot's own row in the input matrix. Scaling per row
// keeps well conditioned systems with very uneven rows, such as splines over
// unevenly spaced points, from being rejected.
const pivotTolerance = 1e-12

// Invert replaces the square matrix m with its inverse using Gauss-Jordan
// elimination with a full pivot search. Rows are swapped to bring each pivot
// onto the diagonal and the matching column swaps are undone at the end.
//
// It returns an error wrapping fault.ErrSingularSystem when some step has no
// admissible pivot: a finite entry larger than pivotTolerance times the
// largest entry of its row. m is left in an unspecified state in that case.
func Invert(m *mat.Dense) error {
	r, c := m.Dims()
	if r != c || r == 0 {
		return fmt.Errorf("%w: matrix is %dx%d, want square", fault.ErrInvalidArgument, r, c)
	}
	n := r

	threshold := make([]float64, n)
	for j := range threshold {
		for _, v := range m.RawRowView(j) {
			threshold[j] = math.Max(threshold[j], math.Abs(v))
		}
		threshold[j] *= pivotTolerance
	}

	pivoted := make([]bool, n)
	rowOf := make([]int, n)
	colOf := make([]int, n)

	for i := 0; i < n; i++ {
		pivotRow, pivotCol := -1, -1
		max := 0.0
		for j := 0; j < n; j++ {
			if pivoted[j] {
				continue
			}
			row := m.RawRowView(j)
			for k := 0; k < n; k++ {
				if pivoted[k] {
					continue
				}
				v := math.Abs(row[k])
				if v > max && v > threshold[j] && !math.IsInf(v, 0) {
					max = v
					pivotRow, pivotCol = j, k
				}
			}
		}
		if pivotCol < 0 {
			return fmt.Errorf("%w: no pivot at step %d", fault.ErrSingularSystem, i)
		}
		pivoted[pivotCol] = true

		if pivotRow != pivotCol {
			swapRows(m, pivotRow, pivotCol)
			threshold[pivotRow], threshold[pivotCol] = threshold[pivotCol], threshold[pivotRow]
		}
		rowOf[i] = pivotRow
		colOf[i] = pivotCol

		prow := m.RawRowView(pivotCol)
		inv := 1 / prow[pivotCol]
		prow[pivotCol] = 1
		for k := range prow {
			prow[k] *= inv
		}

		for j := 0; j < n; j++ {
			if j == pivotCol {
				continue
			}
			row := m.RawRowView(j)
			f := row[pivotCol]
			if f == 0 {
				continue
			}
			row[pivotCol] = 0
			for k := range row {
				row[k] -= prow[k] * f
			}
		}
	}

	for i := n - 1; i >= 0; i-- {
		if rowOf[i] != colOf[i] {
			swapCols(m, rowOf[i], colOf[i])
		}
	}
	return nil
}

// Solve returns x with a*x = b, computed as inverse(a)*b. a is not modified.
func Solve(a *mat.Dense, b []float64) ([]float64, error) {
	n, _ := a.Dims()
	if len(b) != n {
		return nil, fmt.Errorf("%w: rhs has %d entries, matrix has %d rows", fault.ErrInvalidArgument, len(b), n)
	}
	inv := mat.DenseCopyOf(a)
	if err := Invert(inv); err != nil {
		return nil, err
	}
	var x mat.VecDense
	x.MulVec(inv, mat.NewVecDense(n, b))
	return x.RawVector().Data, nil
}

func swapRows(m *mat.Dense, a, b int) {
	ra, rb := m.RawRowView(a), m.RawRowView(b)
	for k := range ra {
		ra[k], rb[k] = rb[k], ra[k]
	}
}

func swapCols(m *mat.Dense, a, b int) {
	n, _ := m.Dims()
	for r := 0; r < n; r++ {
		row := m.RawRowView(r)
		row[a], row[b] = row[b], row[a]
	}
}
