// SPDX-License-Identifier: MIT
package display

import (
	"fmt"
	"image"

	"spectrogen/internal/fault"
)

// RGBToRGBA expands packed RGB, row-major and sized to dst's bounds, into
// dst with full alpha.
func RGBToRGBA(dst *image.RGBA, rgb []byte) error {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if len(rgb) < w*h*3 {
		return fmt.Errorf("%w: %d RGB bytes for a %dx%d image", fault.ErrInvalidArgument, len(rgb), w, h)
	}

	for y := 0; y < h; y++ {
		src := rgb[y*w*3 : (y+1)*w*3]
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w; x++ {
			row[x*4] = src[x*3]
			row[x*4+1] = src[x*3+1]
			row[x*4+2] = src[x*3+2]
			row[x*4+3] = 0xff
		}
	}
	return nil
}
