// SPDX-License-Identifier: MIT
package gradient

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"spectrogen/internal/fault"
)

// ColourGradient evaluates one Gradient per colour channel. The channels
// normally share x coordinates but nothing requires it.
type ColourGradient struct {
	R, G, B *Gradient
}

// Stop is a colour control point. Channel values are on the 0-255 scale.
type Stop struct {
	X float64 `yaml:"x"`
	R float64 `yaml:"r"`
	G float64 `yaml:"g"`
	B float64 `yaml:"b"`
}

// Domain bounds of the preset gradients, in natural log amplitude.
const (
	PresetMin = -12.0
	PresetMax = 0.0
)

var presets = map[string][]Stop{
	"grey": {
		{X: -12, R: 0, G: 0, B: 0},
		{X: -6, R: 128, G: 128, B: 128},
		{X: 0, R: 255, G: 255, B: 255},
	},
	"heat": {
		{X: -12, R: 0, G: 0, B: 0},
		{X: -9, R: 80, G: 0, B: 120},
		{X: -6, R: 220, G: 30, B: 30},
		{X: -3, R: 255, G: 200, B: 0},
		{X: 0, R: 255, G: 255, B: 255},
	},
	"phosphor": {
		{X: -12, R: 0, G: 0, B: 0},
		{X: -8, R: 0, G: 160, B: 0},
		{X: -4, R: 255, G: 255, B: 0},
		{X: 0, R: 255, G: 255, B: 255},
	},
}

// PresetNames lists the built-in gradients in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns a copy of the stops of a built-in gradient.
func Preset(name string) ([]Stop, error) {
	stops, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: unknown gradient preset %q (have %s)",
			fault.ErrInvalidArgument, name, strings.Join(PresetNames(), ", "))
	}
	return append([]Stop(nil), stops...), nil
}

// FromStops builds a ColourGradient whose three channels share the stop x
// coordinates.
func FromStops(stops []Stop, interp, terminal Interpolation) (*ColourGradient, error) {
	n := len(stops)
	x := make([]float64, n)
	r := make([]float64, n)
	g := make([]float64, n)
	b := make([]float64, n)
	for i, s := range stops {
		x[i], r[i], g[i], b[i] = s.X, s.R, s.G, s.B
	}

	var errs []error
	cg := &ColourGradient{}
	var err error
	if cg.R, err = New(x, r, interp, terminal); err != nil {
		errs = append(errs, fmt.Errorf("red: %w", err))
	}
	if cg.G, err = New(x, g, interp, terminal); err != nil {
		errs = append(errs, fmt.Errorf("green: %w", err))
	}
	if cg.B, err = New(x, b, interp, terminal); err != nil {
		errs = append(errs, fmt.Errorf("blue: %w", err))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cg, nil
}

// Populate re-solves the spline derivatives of every channel.
func (c *ColourGradient) Populate() error {
	return errors.Join(c.R.Populate(), c.G.Populate(), c.B.Populate())
}

// Eval returns the colour at x, each channel clamped to [0, 255].
func (c *ColourGradient) Eval(x float64) (r, g, b uint8) {
	return toByte(c.R.Eval(x)), toByte(c.G.Eval(x)), toByte(c.B.Eval(x))
}

// EvalInto writes the colour at x to dst[0:3].
func (c *ColourGradient) EvalInto(dst []byte, x float64) {
	dst[0], dst[1], dst[2] = c.Eval(x)
}

func toByte(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
