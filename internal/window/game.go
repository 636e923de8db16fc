// SPDX-License-Identifier: MIT

//go:build !headless

package window

import (
	"context"
	"image/color"
	"time"

	applog "spectrogen/internal/log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

var (
	overlayColor = color.RGBA{0, 220, 90, 255}
	shadowColor  = color.RGBA{0, 0, 0, 255}
)

// game adapts a Window to ebiten's game loop.
type game struct {
	w     *Window
	ctx   context.Context
	frame *ebiten.Image
}

// Run opens the window and blocks in ebiten's loop until the window is
// closed, ctx is done or the queue is shut down. It must be called from
// the main goroutine. Closing the window shuts the queue down.
func (w *Window) Run(ctx context.Context) error {
	ebiten.SetWindowSize(w.opts.Width, w.opts.Height)
	ebiten.SetWindowTitle(w.opts.Title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetWindowClosingHandled(true)

	g := &game{
		w:     w,
		ctx:   ctx,
		frame: ebiten.NewImage(w.opts.Width, w.opts.Height),
	}
	applog.Infof("window: %dx%d, refresh %v", w.opts.Width, w.opts.Height, w.opts.Refresh)

	err := ebiten.RunGame(g)
	w.queue.Shutdown()
	applog.Debugf("window: closed after %d frames", w.Presented())
	return err
}

func (g *game) Update() error {
	if ebiten.IsWindowBeingClosed() || g.ctx.Err() != nil || g.w.queue.Closed() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if g.w.togglePause() {
			applog.Infof("window: capture paused")
		} else {
			applog.Infof("window: capture resumed")
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		g.w.overlay = !g.w.overlay
	}

	g.w.tick(time.Now(), g.frame.WritePixels)
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.frame, nil)
	if !g.w.overlay {
		return
	}
	if s := g.w.status(); s != "" {
		face := basicfont.Face7x13
		text.Draw(screen, s, face, 9, 19, shadowColor)
		text.Draw(screen, s, face, 8, 18, overlayColor)
	}
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.w.opts.Width, g.w.opts.Height
}
