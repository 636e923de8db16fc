// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"spectrogen/cmd"
	"spectrogen/internal/audio"
	"spectrogen/internal/config"
	"spectrogen/internal/display"
	"spectrogen/internal/fourier"
	applog "spectrogen/internal/log"
	"spectrogen/internal/pipeline"
	"spectrogen/internal/samples"
	"spectrogen/internal/spectrogram"
	"spectrogen/internal/transport"
	"spectrogen/internal/transport/udp"
	"spectrogen/internal/tui"
	"spectrogen/internal/window"
	"spectrogen/pkg/build"
)

// main runs the spectrogram in three phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and the config file
//   - Execute one-off commands if requested
//   - Build the transform engine, gradient, rasterizer and frame queue
//
// 2. Concurrent Phase (Hot Path):
//   - Capture into the sample ring (live) or render once (static)
//   - Produce frames on one goroutine
//   - Present frames on the main goroutine, window or headless
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals and window close
//   - Stop the producer, capture and recording
//   - Close transports
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := build.Initialize(); err != nil {
		applog.Fatalf("%v", err)
	}

	cfg, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		applog.Fatalf("%v", err)
	}
	if cfg == nil {
		return // help or version
	}
	setLogLevel(cfg)

	if cfg.Command != "" {
		if err := executeCommand(cfg.Command, os.Stdout); err != nil {
			applog.Fatalf("%v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		applog.Fatalf("%v", err)
	}
}

func setLogLevel(cfg *config.Config) {
	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
		return
	}
	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
}

// executeCommand handles one-off commands that don't need the pipeline.
func executeCommand(command string, w io.Writer) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	switch command {
	case cmd.CommandList:
		return audio.ListDevices(w)
	case cmd.CommandDevices:
		sel, err := tui.Run()
		if err != nil {
			return err
		}
		if sel == nil {
			return nil
		}
		snippet, err := sel.ConfigSnippet()
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, snippet)
		return err
	}
	return fmt.Errorf("unknown command %q", command)
}

// stage holds what both the live and the static paths present from.
type stage struct {
	cfg    *config.Config
	engine *fourier.Engine
	raster *spectrogram.Rasterizer
	queue  *display.FrameQueue
	sinks  []display.Sink
	closer []io.Closer
}

func run(ctx context.Context, cfg *config.Config) (err error) {
	st, err := newStage(cfg)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, st.close()) }()

	if cfg.Source.File != "" || cfg.Source.Demo {
		return st.runStatic(ctx)
	}
	return st.runLive(ctx)
}

func newStage(cfg *config.Config) (*stage, error) {
	kind, err := fourier.ParseKind(cfg.Window.Type)
	if err != nil {
		return nil, err
	}
	backend, err := fourier.ParseBackend(cfg.FFT.Backend)
	if err != nil {
		return nil, err
	}
	engine, err := fourier.NewEngine(cfg.Window.Width, kind, cfg.Window.Variance, backend)
	if err != nil {
		return nil, err
	}
	st := &stage{cfg: cfg, engine: engine, closer: []io.Closer{engine}}

	grad, err := cfg.Gradient.Build()
	if err != nil {
		return nil, errors.Join(err, st.close())
	}
	if st.raster, err = spectrogram.NewRasterizer(engine, grad, cfg.Display.Width, cfg.Display.Height); err != nil {
		return nil, errors.Join(err, st.close())
	}
	if st.queue, err = display.NewFrameQueue(cfg.Display.QueueCapacity, cfg.Display.Width, cfg.Display.Height); err != nil {
		return nil, errors.Join(err, st.close())
	}

	if cfg.Transport.WebSocketEnabled {
		ws, err := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddr, cfg.Transport.WebSocketMaxPending)
		if err != nil {
			return nil, errors.Join(err, st.close())
		}
		applog.Infof("websocket: serving frames on ws://%s%s", ws.Addr(), transport.FramesPath)
		st.addSink(ws)
	}
	if applog.GetLevel() <= applog.LevelDebug {
		st.addSink(transport.NewLogSink())
	}
	return st, nil
}

func (st *stage) addSink(t transport.Transport) {
	st.sinks = append(st.sinks, t)
	st.closer = append(st.closer, t)
}

// close releases resources in reverse order of creation.
func (st *stage) close() error {
	var errs []error
	for i := len(st.closer) - 1; i >= 0; i-- {
		errs = append(errs, st.closer[i].Close())
	}
	st.closer = nil
	return errors.Join(errs...)
}

func (st *stage) runStatic(ctx context.Context) error {
	var clip *samples.Clip
	if st.cfg.Source.File != "" {
		var err error
		if clip, err = samples.Load(st.cfg.Source.File); err != nil {
			return err
		}
	} else {
		rate := st.cfg.Audio.SampleRate
		clip = &samples.Clip{
			Samples:    samples.TestSignal(st.cfg.Audio.BufferSamples, rate),
			SampleRate: int(rate),
		}
	}
	applog.Infof("static: %d samples (%.2fs at %d Hz)", len(clip.Samples), clip.Duration(), clip.SampleRate)

	if err := pipeline.RenderStatic(st.queue, st.raster, clip.Samples); err != nil {
		return err
	}

	if st.cfg.Display.Headless {
		// One frame, presented once.
		display.NewHeadless(st.queue, st.cfg.Display.RefreshInterval, st.cfg.Display.RetryInterval, st.sinks...).Tick()
		return nil
	}
	return st.window(nil, float64(clip.SampleRate)).Run(ctx)
}

func (st *stage) runLive(ctx context.Context) error {
	cfg := st.cfg

	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	ring := audio.NewSampleRing(cfg.Audio.BufferSamples)
	engine, err := audio.NewEngine(cfg, ring)
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			applog.Errorf("audio: close failed: %v", err)
		}
	}()

	producer, err := pipeline.NewProducer(st.queue, ring, st.raster)
	if err != nil {
		return err
	}

	// The first call to StartInputStream makes PortAudio start calling the
	// callback, marking the start of the hot path.
	if err := engine.StartInputStream(); err != nil {
		return err
	}
	if cfg.Recording.Enabled {
		if err := engine.StartRecording(cfg.Recording.OutputFile); err != nil {
			return err
		}
	}

	producer.Start()

	var (
		sender    *udp.Sender
		publisher *udp.Publisher
	)
	if cfg.Transport.UDPEnabled {
		if sender, err = udp.NewSender(cfg.Transport.UDPTargetAddress); err != nil {
			return errors.Join(err, producer.Stop())
		}
		if publisher, err = udp.NewPublisher(cfg.Transport.UDPSendInterval, sender, st.raster); err != nil {
			return errors.Join(err, sender.Close(), producer.Stop())
		}
		publisher.Start()
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	var presentErr error
	if cfg.Display.Headless {
		applog.Infof("headless: press Ctrl+C to stop")
		presentErr = display.NewHeadless(st.queue, cfg.Display.RefreshInterval, cfg.Display.RetryInterval, st.sinks...).Run(ctx)
	} else {
		presentErr = st.window(ring, cfg.Audio.SampleRate).Run(ctx)
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	errs := []error{presentErr, producer.Stop()}
	if publisher != nil {
		errs = append(errs, publisher.Close(), sender.Close())
	}
	if cfg.Recording.Enabled {
		if err := engine.StopRecording(); err != nil {
			errs = append(errs, err)
		} else {
			fmt.Printf("\nRecording saved to: %s\n", cfg.Recording.OutputFile)
		}
	}
	return errors.Join(errs...)
}

func (st *stage) window(ring *audio.SampleRing, sampleRate float64) *window.Window {
	cfg := st.cfg
	return window.New(st.queue, window.Options{
		Title:      build.GetBuildFlags().Name,
		Width:      cfg.Display.Width,
		Height:     cfg.Display.Height,
		Refresh:    cfg.Display.RefreshInterval,
		Retry:      cfg.Display.RetryInterval,
		Ring:       ring,
		Raster:     st.raster,
		SampleRate: sampleRate,
		Analysis:   fmt.Sprintf("%s %d", st.engine.Kind(), cfg.Window.Width),
	}, st.sinks...)
}
