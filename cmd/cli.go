// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"spectrogen/internal/config"
	"spectrogen/pkg/build"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Commands that run instead of the spectrogram.
const (
	CommandList    = "list"
	CommandDevices = "devices"
)

// flagValues receives the command line before it is merged into the
// loaded configuration.
type flagValues struct {
	configPath  string
	dim         string
	window      string
	windowWidth int
	windowVar   float64
	file        string
	demo        bool
	device      int
	sampleRate  float64
	samples     int
	gradient    string
	interp      string
	fftBackend  string
	headless    bool
	ws          bool
	udp         bool
	record      bool
	output      string
	verbose     bool
	gate        float64
}

// ParseArgs parses args (without the program name), loads the config file
// and applies the flags that were set on top of it. It returns a nil
// config when cobra handled the invocation itself, as with --help.
func ParseArgs(args []string) (*config.Config, error) {
	buildInfo := build.GetBuildFlags()
	var (
		fv  flagValues
		cfg *config.Config
	)

	load := func(cmd *cobra.Command, command string) error {
		loaded, err := config.LoadConfig(fv.configPath)
		if err != nil {
			return err
		}
		if err := applyFlags(cmd.Flags(), &fv, loaded); err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		loaded.Command = command
		cfg = loaded
		return nil
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.String(),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return load(cmd, "")
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(&cobra.Command{
		Use:   CommandList,
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return load(cmd, CommandList)
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   CommandDevices,
		Short: "Pick an input device interactively and print its config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return load(cmd, CommandDevices)
		},
	})

	flags := rootCmd.PersistentFlags()

	flags.StringVarP(&fv.configPath, "config", "f", "",
		"Path to a YAML config file (default ./config.yaml when present)")

	// Analysis and display
	flags.StringVar(&fv.dim, "dim", "",
		fmt.Sprintf("Image size as WIDTH,HEIGHT (default %d,%d)", config.DefaultDisplayWidth, config.DefaultDisplayHeight))
	flags.StringVarP(&fv.window, "window", "w", config.DefaultWindowType,
		"Window function: rect, tri, gauss, expc, hann, hamming, blackman, blackman-harris, nuttall, bartlett-hann, lanczos")
	flags.IntVar(&fv.windowWidth, "window-width", config.DefaultWindowWidth,
		"Number of samples per transform")
	flags.Float64Var(&fv.windowVar, "window-var", config.DefaultWindowVariance,
		"Window variance for gauss and expc; higher is narrower")
	flags.StringVarP(&fv.gradient, "gradient", "g", config.DefaultGradientPreset,
		"Colour preset: grey, heat, phosphor")
	flags.StringVar(&fv.interp, "interpolation", config.DefaultInterpolation,
		"Gradient interpolation: nearest, linear, spline")
	flags.StringVar(&fv.fftBackend, "fft-backend", config.DefaultFFTBackend,
		"FFT implementation: gonum, godsp")
	flags.BoolVar(&fv.headless, "headless", false,
		"Present frames without a window")

	// Sources
	flags.StringVar(&fv.file, "file", "",
		"Render one frame from a sample file (.txt or .wav) instead of capturing")
	flags.BoolVar(&fv.demo, "demo", false,
		"Render one frame of the built-in test signal instead of capturing")
	flags.IntVarP(&fv.device, "device", "d", config.DefaultDeviceID,
		"Input device ID. Use 'list' command to see available devices.")
	flags.Float64VarP(&fv.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	flags.IntVar(&fv.samples, "samples", config.DefaultBufferSamples,
		"Number of recent samples shown across one frame")
	flags.Float64Var(&fv.gate, "gate", 0,
		"Noise gate peak threshold between 0 and 1 (0 disables)")

	// Outputs
	flags.BoolVar(&fv.ws, "ws", false, "Serve frames over websocket")
	flags.BoolVar(&fv.udp, "udp", false, "Send spectrum columns over UDP")
	flags.BoolVarP(&fv.record, "record", "r", false,
		"Record the captured input to a WAV file")
	flags.StringVarP(&fv.output, "output", "o", "",
		"Recording file name. Default is recording-DD-MM-YYYY-HHMMSS.wav")

	flags.BoolVarP(&fv.verbose, "verbose", "v", false, "Show debug output")

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies every flag the user set into cfg. Unset flags leave the
// file and environment values alone.
func applyFlags(fs *pflag.FlagSet, fv *flagValues, cfg *config.Config) error {
	set := func(name string) bool { return fs.Changed(name) }

	if set("dim") {
		w, h, err := parseDim(fv.dim)
		if err != nil {
			return err
		}
		cfg.Display.Width, cfg.Display.Height = w, h
	}
	if set("window") {
		cfg.Window.Type = fv.window
	}
	if set("window-width") {
		cfg.Window.Width = fv.windowWidth
	}
	if set("window-var") {
		cfg.Window.Variance = fv.windowVar
	}
	if set("gradient") {
		cfg.Gradient.Preset = fv.gradient
		cfg.Gradient.Points = nil
	}
	if set("interpolation") {
		cfg.Gradient.Interpolation = fv.interp
	}
	if set("fft-backend") {
		cfg.FFT.Backend = fv.fftBackend
	}
	if set("headless") {
		cfg.Display.Headless = fv.headless
	}
	if set("file") {
		cfg.Source.File = fv.file
	}
	if set("demo") {
		cfg.Source.Demo = fv.demo
	}
	if set("device") {
		cfg.Audio.InputDevice = fv.device
	}
	if set("sample-rate") {
		cfg.Audio.SampleRate = fv.sampleRate
	}
	if set("samples") {
		cfg.Audio.BufferSamples = fv.samples
	}
	if set("gate") {
		cfg.Audio.GateThreshold = fv.gate
	}
	if set("ws") {
		cfg.Transport.WebSocketEnabled = fv.ws
	}
	if set("udp") {
		cfg.Transport.UDPEnabled = fv.udp
	}
	if set("record") {
		cfg.Recording.Enabled = fv.record
	}
	if set("output") {
		cfg.Recording.OutputFile = fv.output
	}
	if set("verbose") && fv.verbose {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}

	if cfg.Recording.Enabled && cfg.Recording.OutputFile == "" {
		cfg.Recording.OutputFile = "recording-" +
			time.Now().UTC().Format("02-01-2006-150405") + ".wav"
	}
	return nil
}

// parseDim reads "WIDTH,HEIGHT". An "x" separator is accepted too.
func parseDim(s string) (int, int, error) {
	sep := ","
	if !strings.Contains(s, sep) {
		sep = "x"
	}
	ws, hs, ok := strings.Cut(s, sep)
	if !ok {
		return 0, 0, fmt.Errorf("--dim wants WIDTH,HEIGHT, got %q", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return 0, 0, fmt.Errorf("--dim width: %w", err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return 0, 0, fmt.Errorf("--dim height: %w", err)
	}
	return w, h, nil
}
