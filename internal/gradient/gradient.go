// SPDX-License-Identifier: MIT

// Package gradient maps scalar amplitudes to colours through piecewise
// interpolated control points.
package gradient

import (
	"fmt"
	"strings"

	"spectrogen/internal/fault"
	"spectrogen/internal/linalg"

	"gonum.org/v1/gonum/mat"
)

// Interpolation selects how a Gradient is evaluated between or beyond its
// control points.
type Interpolation int

const (
	Nearest Interpolation = iota
	Linear
	Spline // interior only
)

func (m Interpolation) String() string {
	switch m {
	case Nearest:
		return "nearest"
	case Linear:
		return "linear"
	case Spline:
		return "spline"
	default:
		return fmt.Sprintf("Interpolation(%d)", int(m))
	}
}

// ParseInterpolation converts a mode name (case-insensitive) to an
// Interpolation.
func ParseInterpolation(name string) (Interpolation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "nearest":
		return Nearest, nil
	case "linear", "lerp":
		return Linear, nil
	case "spline", "cubic":
		return Spline, nil
	default:
		return Nearest, fmt.Errorf("%w: unknown interpolation %q", fault.ErrInvalidArgument, name)
	}
}

// Gradient is a one dimensional piecewise function through control points
// with strictly increasing x.
//
// Spline gradients carry one derivative per point. SetPoint marks them
// stale; Eval keeps using the last solved derivatives until Populate runs.
type Gradient struct {
	x, y     []float64
	interp   Interpolation
	terminal Interpolation

	deriv []float64
	stale bool
}

// New validates the control points and, for Spline gradients, solves for
// the point derivatives. x and y are copied.
func New(x, y []float64, interp, terminal Interpolation) (*Gradient, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d x values but %d y values", fault.ErrInvalidArgument, len(x), len(y))
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: gradient needs at least one point", fault.ErrInvalidArgument)
	}
	if interp < Nearest || interp > Spline {
		return nil, fmt.Errorf("%w: unknown interpolation %d", fault.ErrInvalidArgument, int(interp))
	}
	if terminal != Nearest && terminal != Linear {
		return nil, fmt.Errorf("%w: %s is not a terminal mode", fault.ErrInvalidArgument, terminal)
	}
	if interp == Spline && len(x) < 3 {
		return nil, fmt.Errorf("%w: spline needs at least 3 points, got %d", fault.ErrInvalidArgument, len(x))
	}
	if err := checkIncreasing(x); err != nil {
		return nil, err
	}

	g := &Gradient{
		x:        append([]float64(nil), x...),
		y:        append([]float64(nil), y...),
		interp:   interp,
		terminal: terminal,
	}
	if interp == Spline {
		if err := g.Populate(); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func checkIncreasing(x []float64) error {
	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return fmt.Errorf("%w: x[%d] = %v does not exceed x[%d] = %v",
				fault.ErrInvalidArgument, i, x[i], i-1, x[i-1])
		}
	}
	return nil
}

// Len returns the number of control points.
func (g *Gradient) Len() int { return len(g.x) }

// Point returns control point i.
func (g *Gradient) Point(i int) (x, y float64) { return g.x[i], g.y[i] }

// Stale reports whether the spline derivatives predate a point change.
func (g *Gradient) Stale() bool { return g.stale }

// Derivatives returns a copy of the solved spline derivatives, or nil for
// non-spline gradients.
func (g *Gradient) Derivatives() []float64 {
	if g.deriv == nil {
		return nil
	}
	return append([]float64(nil), g.deriv...)
}

// SetPoint replaces control point i. The points must stay strictly
// increasing in x; on error the gradient is unchanged.
func (g *Gradient) SetPoint(i int, x, y float64) error {
	if i < 0 || i >= len(g.x) {
		return fmt.Errorf("%w: point %d out of range [0, %d)", fault.ErrInvalidArgument, i, len(g.x))
	}
	if (i > 0 && !(x > g.x[i-1])) || (i < len(g.x)-1 && !(x < g.x[i+1])) {
		return fmt.Errorf("%w: x = %v breaks ordering at point %d", fault.ErrInvalidArgument, x, i)
	}
	g.x[i], g.y[i] = x, y
	if g.interp == Spline {
		g.stale = true
	}
	return nil
}

// Populate solves the tridiagonal system for the spline derivatives. It is
// a no-op for other modes. If the system is singular the previous
// derivatives are kept and the error wraps fault.ErrSingularSystem.
func (g *Gradient) Populate() error {
	if g.interp != Spline {
		return nil
	}
	n := len(g.x)
	a := mat.NewDense(n, n, nil)
	rhs := make([]float64, n)

	div := 1 / (g.x[1] - g.x[0])
	a.Set(0, 0, 2*div)
	a.Set(0, 1, div)
	rhs[0] = 3 * (g.y[1] - g.y[0]) * div * div

	for i := 1; i < n-1; i++ {
		divL := 1 / (g.x[i] - g.x[i-1])
		divR := 1 / (g.x[i+1] - g.x[i])
		a.Set(i, i-1, divL)
		a.Set(i, i, 2*(divL+divR))
		a.Set(i, i+1, divR)
		rhs[i] = 3 * ((g.y[i]-g.y[i-1])*divL*divL + (g.y[i+1]-g.y[i])*divR*divR)
	}

	div = 1 / (g.x[n-1] - g.x[n-2])
	a.Set(n-1, n-2, div)
	a.Set(n-1, n-1, 2*div)
	rhs[n-1] = 3 * (g.y[n-1] - g.y[n-2]) * div * div

	d, err := linalg.Solve(a, rhs)
	if err != nil {
		return fmt.Errorf("spline derivatives: %w", err)
	}
	g.deriv = d
	g.stale = false
	return nil
}

// Eval returns the gradient value at x.
func (g *Gradient) Eval(x float64) float64 {
	n := len(g.x)
	i := 0
	for i < n && g.x[i] < x {
		i++
	}
	if x < g.x[0] || i == n {
		return g.terminalEval(x, i)
	}
	if i == 0 {
		// x == g.x[0]
		return g.y[0]
	}

	x0, x1 := g.x[i-1], g.x[i]
	y0, y1 := g.y[i-1], g.y[i]
	switch g.interp {
	case Nearest:
		if x-x0 < x1-x {
			return y0
		}
		return y1
	case Linear:
		return y0 + (y1-y0)*(x-x0)/(x1-x0)
	default:
		dx, dy := x1-x0, y1-y0
		t := (x - x0) / dx
		a := g.deriv[i-1]*dx - dy
		b := -g.deriv[i]*dx + dy
		return (1-t)*y0 + t*y1 + t*(1-t)*(a*(1-t)+b*t)
	}
}

func (g *Gradient) terminalEval(x float64, i int) float64 {
	n := len(g.x)
	if g.terminal == Nearest || n == 1 {
		if i == 0 {
			return g.y[0]
		}
		return g.y[n-1]
	}
	if i == 0 {
		return g.y[0] + (g.y[1]-g.y[0])*(x-g.x[0])/(g.x[1]-g.x[0])
	}
	return g.y[n-2] + (g.y[n-1]-g.y[n-2])*(x-g.x[n-2])/(g.x[n-1]-g.x[n-2])
}
