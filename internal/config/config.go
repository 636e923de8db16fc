// SPDX-License-Identifier: MIT
package config

import (
	"time"

	"spectrogen/internal/gradient"
)

// Defaults and limits for the spectrogram pipeline.
const (
	// Analysis window
	DefaultWindowType     = "gauss"
	DefaultWindowWidth    = 1536
	DefaultWindowVariance = 6.0

	// Display
	DefaultDisplayWidth    = 640
	DefaultDisplayHeight   = 480
	DefaultRefreshInterval = 40 * time.Millisecond
	DefaultRetryInterval   = time.Millisecond
	DefaultQueueCapacity   = 1

	// Colour gradient
	DefaultGradientPreset = "phosphor"
	DefaultInterpolation  = "linear"
	DefaultTerminal       = "nearest"

	// Audio capture
	DefaultDeviceID        = MinDeviceID // system default input
	DefaultSampleRate      = 48000
	DefaultFramesPerBuffer = 512
	DefaultBufferSamples   = 96000 // two seconds at the default rate
	DefaultLowLatency      = true

	DefaultFFTBackend = "gonum"

	// Transports
	DefaultWebSocketAddr       = ":8080"
	DefaultWebSocketMaxPending = 4
	DefaultUDPTargetAddress    = "127.0.0.1:9090"
	DefaultUDPSendInterval     = 33 * time.Millisecond

	// Hardware and processing limits
	MinDeviceID     = -1 // -1 represents system default device
	MinSampleRate   = 8000
	MaxSampleRate   = 192000
	MaxBufferFrames = 8192
	MaxDisplaySide  = 8192
)

// Config represents the application configuration, loaded from YAML and
// refined by environment variables and command line flags.
type Config struct {
	Debug     bool            `yaml:"debug"`
	LogLevel  string          `yaml:"log_level"`
	Command   string          `yaml:"-"` // one-off command from the CLI ("list", "devices")
	Window    WindowConfig    `yaml:"window"`
	Display   DisplayConfig   `yaml:"display"`
	Gradient  GradientConfig  `yaml:"gradient"`
	Audio     AudioConfig     `yaml:"audio"`
	FFT       FFTConfig       `yaml:"fft"`
	Source    SourceConfig    `yaml:"source"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`
}

// WindowConfig describes the analysis window.
type WindowConfig struct {
	Type     string  `yaml:"type"`     // rect, tri, gauss, expc, hann, ...
	Width    int     `yaml:"width"`    // samples per transform
	Variance float64 `yaml:"variance"` // gauss and expc only; larger is narrower
}

// DisplayConfig sizes the image and paces presentation.
type DisplayConfig struct {
	Width           int           `yaml:"width"`
	Height          int           `yaml:"height"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	RetryInterval   time.Duration `yaml:"retry_interval"`
	QueueCapacity   int           `yaml:"queue_capacity"`
	Headless        bool          `yaml:"headless"`
}

// GradientConfig selects the amplitude to colour mapping. Points, when
// present, replace the preset.
type GradientConfig struct {
	Preset        string          `yaml:"preset"`
	Interpolation string          `yaml:"interpolation"`
	Terminal      string          `yaml:"terminal"`
	Points        []gradient.Stop `yaml:"points,omitempty"`
}

// AudioConfig holds capture settings.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index (-1 for default)
	SampleRate      float64 `yaml:"sample_rate"`       // Hz
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // 0 lets PortAudio choose
	LowLatency      bool    `yaml:"low_latency"`
	BufferSamples   int     `yaml:"buffer_samples"` // sample history shown in one frame
	GateThreshold   float64 `yaml:"gate_threshold"` // 0 disables the noise gate
}

// FFTConfig selects the transform implementation.
type FFTConfig struct {
	Backend string `yaml:"backend"` // gonum or godsp
}

// SourceConfig names a static sample file. When set, one frame is rendered
// from the file instead of capturing. Demo renders the built-in test signal
// the same way.
type SourceConfig struct {
	File string `yaml:"file"`
	Demo bool   `yaml:"demo"`
}

// RecordingConfig controls WAV recording of the captured input.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	OutputFile string `yaml:"output_file"`
}

// TransportConfig holds settings for publishing frames and spectra.
type TransportConfig struct {
	WebSocketEnabled    bool          `yaml:"websocket_enabled"`
	WebSocketAddr       string        `yaml:"websocket_addr"`
	WebSocketMaxPending int           `yaml:"websocket_max_pending"`
	UDPEnabled          bool          `yaml:"udp_enabled"`
	UDPTargetAddress    string        `yaml:"udp_target_address"`
	UDPSendInterval     time.Duration `yaml:"udp_send_interval"`
}

// NewConfig returns a Config holding the built-in defaults.
func NewConfig() *Config {
	return &Config{
		LogLevel: "info",
		Window: WindowConfig{
			Type:     DefaultWindowType,
			Width:    DefaultWindowWidth,
			Variance: DefaultWindowVariance,
		},
		Display: DisplayConfig{
			Width:           DefaultDisplayWidth,
			Height:          DefaultDisplayHeight,
			RefreshInterval: DefaultRefreshInterval,
			RetryInterval:   DefaultRetryInterval,
			QueueCapacity:   DefaultQueueCapacity,
		},
		Gradient: GradientConfig{
			Preset:        DefaultGradientPreset,
			Interpolation: DefaultInterpolation,
			Terminal:      DefaultTerminal,
		},
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      DefaultLowLatency,
			BufferSamples:   DefaultBufferSamples,
		},
		FFT: FFTConfig{Backend: DefaultFFTBackend},
		Transport: TransportConfig{
			WebSocketAddr:       DefaultWebSocketAddr,
			WebSocketMaxPending: DefaultWebSocketMaxPending,
			UDPTargetAddress:    DefaultUDPTargetAddress,
			UDPSendInterval:     DefaultUDPSendInterval,
		},
	}
}
