// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"spectrogen/internal/fault"
	"spectrogen/internal/fourier"
	"spectrogen/internal/gradient"
	applog "spectrogen/internal/log"
	"spectrogen/internal/transport/udp"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from the YAML file at path. If path is
// empty it looks for "config.yaml" in the working directory and falls back
// to the built-in defaults when there is none. Environment overrides are
// applied after the file and the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		applog.Debugf("configuration: loaded %s", path)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks every section and reports all problems at once. Each
// problem wraps fault.ErrInvalidArgument.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{fault.ErrInvalidArgument}, args...)...))
	}
	check := func(field string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}

	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		bad("log_level %q is not a known level", c.LogLevel)
	}

	kind, err := fourier.ParseKind(c.Window.Type)
	check("window.type", err)
	if c.Window.Width <= 0 || c.Window.Width > fourier.MaxWindowWidth {
		bad("window.width %d outside [1, %d]", c.Window.Width, fourier.MaxWindowWidth)
	}
	if err == nil && kind.Shaped() && !(c.Window.Variance > 0) {
		bad("window.variance must be positive for %s, got %v", kind, c.Window.Variance)
	}

	if c.Display.Width <= 0 || c.Display.Width > MaxDisplaySide ||
		c.Display.Height <= 0 || c.Display.Height > MaxDisplaySide {
		bad("display size %dx%d outside [1, %d]", c.Display.Width, c.Display.Height, MaxDisplaySide)
	}
	if c.Display.QueueCapacity < 1 {
		bad("display.queue_capacity must be at least 1, got %d", c.Display.QueueCapacity)
	}
	if c.Display.RefreshInterval <= 0 || c.Display.RetryInterval <= 0 {
		bad("display intervals must be positive (refresh %v, retry %v)",
			c.Display.RefreshInterval, c.Display.RetryInterval)
	}

	_, err = c.Gradient.Build()
	check("gradient", err)

	_, err = fourier.ParseBackend(c.FFT.Backend)
	check("fft.backend", err)

	if c.Source.File == "" {
		if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
			bad("audio.sample_rate %v outside [%d, %d]", c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
		}
		if c.Audio.FramesPerBuffer < 0 || c.Audio.FramesPerBuffer > MaxBufferFrames {
			bad("audio.frames_per_buffer %d outside [0, %d]", c.Audio.FramesPerBuffer, MaxBufferFrames)
		}
		if c.Audio.BufferSamples < c.Window.Width {
			bad("audio.buffer_samples %d is smaller than window.width %d", c.Audio.BufferSamples, c.Window.Width)
		}
		if c.Audio.InputDevice < MinDeviceID {
			bad("audio.input_device %d is invalid", c.Audio.InputDevice)
		}
	}
	if c.Recording.Enabled && (c.Source.File != "" || c.Source.Demo) {
		bad("recording needs live capture but a static source is set")
	}
	if c.Audio.GateThreshold < 0 || c.Audio.GateThreshold > 1 {
		bad("audio.gate_threshold %v outside [0, 1]", c.Audio.GateThreshold)
	}

	if c.Transport.WebSocketEnabled {
		if c.Transport.WebSocketAddr == "" {
			bad("transport.websocket_addr must be set when the websocket is enabled")
		}
		if c.Transport.WebSocketMaxPending < 1 {
			bad("transport.websocket_max_pending must be at least 1, got %d", c.Transport.WebSocketMaxPending)
		}
	}
	if c.Transport.UDPEnabled {
		if !strings.Contains(c.Transport.UDPTargetAddress, ":") {
			bad("transport.udp_target_address %q appears invalid (missing port?)", c.Transport.UDPTargetAddress)
		}
		if c.Transport.UDPSendInterval <= 0 {
			bad("transport.udp_send_interval must be positive when UDP is enabled")
		}
		if bins := c.Window.Width/2 + 1; bins > udp.MaxBins {
			bad("window.width %d gives %d bins, more than the %d one UDP packet can carry",
				c.Window.Width, bins, udp.MaxBins)
		}
	}

	return errors.Join(errs...)
}

// Build returns the colour gradient the section describes: the configured
// points when present, otherwise the named preset.
func (g GradientConfig) Build() (*gradient.ColourGradient, error) {
	interp, err := gradient.ParseInterpolation(g.Interpolation)
	if err != nil {
		return nil, err
	}
	terminal, err := gradient.ParseInterpolation(g.Terminal)
	if err != nil {
		return nil, err
	}
	stops := g.Points
	if len(stops) == 0 {
		if stops, err = gradient.Preset(g.Preset); err != nil {
			return nil, err
		}
	}
	return gradient.FromStops(stops, interp, terminal)
}

// applyEnvOverrides applies ENV_* variables on top of the file values.
// Unparsable values are ignored with a warning.
func (c *Config) applyEnvOverrides() {
	boolEnv := func(name string, dst *bool) {
		if val, ok := os.LookupEnv(name); ok {
			b, err := strconv.ParseBool(val)
			if err != nil {
				applog.Warnf("configuration: ignoring %s=%q: %v", name, val, err)
				return
			}
			*dst = b
			applog.Infof("configuration: overriding from %s: %v", name, b)
		}
	}
	stringEnv := func(name string, dst *string) {
		if val, ok := os.LookupEnv(name); ok {
			*dst = val
			applog.Infof("configuration: overriding from %s: %s", name, val)
		}
	}

	boolEnv("ENV_DEBUG", &c.Debug)
	stringEnv("ENV_LOG_LEVEL", &c.LogLevel)

	boolEnv("ENV_WS_ENABLED", &c.Transport.WebSocketEnabled)
	stringEnv("ENV_WS_ADDRESS", &c.Transport.WebSocketAddr)

	boolEnv("ENV_UDP_ENABLED", &c.Transport.UDPEnabled)
	stringEnv("ENV_UDP_TARGET_ADDRESS", &c.Transport.UDPTargetAddress)
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		dur, err := time.ParseDuration(val)
		if err != nil {
			applog.Warnf("configuration: ignoring ENV_UDP_SEND_INTERVAL=%q: %v", val, err)
		} else {
			c.Transport.UDPSendInterval = dur
			applog.Infof("configuration: overriding from ENV_UDP_SEND_INTERVAL: %s", dur)
		}
	}
}
