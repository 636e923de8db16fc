// SPDX-License-Identifier: MIT

//go:build headless

package window

import (
	"context"
	"errors"
)

// Run is unavailable in headless builds.
func (w *Window) Run(ctx context.Context) error {
	w.queue.Shutdown()
	return errors.New("window: built without window support, use --headless")
}
