// SPDX-License-Identifier: MIT
package audio

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gordonklaus/portaudio"
)

var mockInfos = []*portaudio.DeviceInfo{
	{Name: "Built-in Microphone", MaxInputChannels: 2, DefaultSampleRate: 48000,
		DefaultLowInputLatency: 3 * time.Millisecond, DefaultHighInputLatency: 12 * time.Millisecond},
	{Name: "Built-in Output", MaxOutputChannels: 2, DefaultSampleRate: 44100},
	{Name: "USB Interface", MaxInputChannels: 1, MaxOutputChannels: 2, DefaultSampleRate: 96000},
}

// mockPortAudio swaps the device seams for the duration of the test.
func mockPortAudio(t *testing.T, infos []*portaudio.DeviceInfo, err error) {
	t.Helper()
	origDevices, origDefault := paLibDevicesFunc, paLibDefaultInputDeviceFunc
	t.Cleanup(func() {
		paLibDevicesFunc, paLibDefaultInputDeviceFunc = origDevices, origDefault
	})
	paLibDevicesFunc = func() ([]*portaudio.DeviceInfo, error) { return infos, err }
	paLibDefaultInputDeviceFunc = func() (*portaudio.DeviceInfo, error) {
		if len(infos) == 0 {
			return nil, fmt.Errorf("no devices")
		}
		return infos[0], nil
	}
}

func TestGetDevices(t *testing.T) {
	mockPortAudio(t, mockInfos, nil)

	devices, err := GetDevices()
	if err != nil {
		t.Fatalf("GetDevices error: %v", err)
	}
	if len(devices) != len(mockInfos) {
		t.Fatalf("got %d devices, want %d", len(devices), len(mockInfos))
	}
	for i, d := range devices {
		if d.ID != i {
			t.Errorf("Device ID mismatch: got %d, want %d", d.ID, i)
		}
		if d.Name != mockInfos[i].Name {
			t.Errorf("Device %d name = %q, want %q", i, d.Name, mockInfos[i].Name)
		}
	}

	inputs := InputDevices(devices)
	if len(inputs) != 2 || inputs[0].ID != 0 || inputs[1].ID != 2 {
		t.Errorf("InputDevices() = %+v", inputs)
	}
}

func TestGetDevices_paDevicesError(t *testing.T) {
	mockPortAudio(t, nil, fmt.Errorf("mock error"))

	_, err := GetDevices()
	if err == nil || !strings.Contains(err.Error(), "mock error") {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestInputDevice(t *testing.T) {
	mockPortAudio(t, mockInfos, nil)

	dev, err := InputDevice(-1)
	if err != nil {
		t.Fatalf("InputDevice(-1) error: %v", err)
	}
	if dev.Name != "Built-in Microphone" {
		t.Errorf("default device = %q", dev.Name)
	}

	dev, err = InputDevice(2)
	if err != nil {
		t.Fatalf("InputDevice(2) error: %v", err)
	}
	if dev.Name != "USB Interface" {
		t.Errorf("device 2 = %q", dev.Name)
	}

	tests := []struct {
		name   string
		id     int
		substr string
	}{
		{"Negative ID", -2, "invalid device ID"},
		{"Too high ID", len(mockInfos) + 10, "invalid device ID"},
		{"Non-input device", 1, "does not support input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InputDevice(tt.id)
			if err == nil {
				t.Errorf("Expected error for ID %d", tt.id)
			} else if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("Error = %q, want substring %q", err.Error(), tt.substr)
			}
		})
	}
}

func TestInputDevice_paDevicesError(t *testing.T) {
	mockPortAudio(t, nil, fmt.Errorf("mock error"))

	_, err := InputDevice(-1)
	if err == nil || !strings.Contains(err.Error(), "mock error") {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestInputDevice_paDefaultInputDeviceError(t *testing.T) {
	mockPortAudio(t, mockInfos, nil)
	paLibDefaultInputDeviceFunc = func() (*portaudio.DeviceInfo, error) {
		return nil, fmt.Errorf("mock default input error")
	}

	_, err := InputDevice(-1)
	if err == nil || !strings.Contains(err.Error(), "mock default input error") {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestListDevices(t *testing.T) {
	mockPortAudio(t, mockInfos, nil)

	var buf bytes.Buffer
	if err := ListDevices(&buf); err != nil {
		t.Fatalf("ListDevices error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"[0] Built-in Microphone (Input)",
		"[1] Built-in Output (Output)",
		"[2] USB Interface (Input/Output)",
		"Latency: Low=3.00ms, High=12.00ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNewEngineRejectsBadDevice(t *testing.T) {
	mockPortAudio(t, mockInfos, nil)

	cfg := newTestConfig()
	cfg.Audio.InputDevice = 1
	if _, err := NewEngine(cfg, NewSampleRing(16)); err == nil {
		t.Error("expected error for output-only device")
	}
	if _, err := NewEngine(newTestConfig(), nil); err == nil {
		t.Error("expected error for nil ring")
	}

	cfg.Audio.InputDevice = 0
	engine, err := NewEngine(cfg, NewSampleRing(16))
	if err != nil {
		t.Fatalf("NewEngine error: %v", err)
	}
	if engine.inputLatency != 3*time.Millisecond {
		t.Errorf("inputLatency = %v, want low latency", engine.inputLatency)
	}
}

func TestErrorInitialize(t *testing.T) {
	orig := paLibInitialize
	defer func() { paLibInitialize = orig }()

	paLibInitialize = func() error { return nil }
	if err := Initialize(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	paLibInitialize = func() error { return fmt.Errorf("mock init error") }
	if err := Initialize(); err == nil || !strings.Contains(err.Error(), "mock init error") {
		t.Errorf("expected mock init error, got %v", err)
	}
}

func TestErrorTerminate(t *testing.T) {
	orig := paLibTerminate
	defer func() { paLibTerminate = orig }()

	paLibTerminate = func() error { return nil }
	if err := Terminate(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	paLibTerminate = func() error { return fmt.Errorf("mock term error") }
	if err := Terminate(); err == nil || !strings.Contains(err.Error(), "mock term error") {
		t.Errorf("expected mock term error, got %v", err)
	}
}

func TestNilDevices(t *testing.T) {
	mockPortAudio(t, nil, nil)

	devices, err := paDevices()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if devices == nil {
		t.Errorf("expected empty slice, got nil")
	}
	if len(devices) != 0 {
		t.Errorf("expected length 0, got %d", len(devices))
	}
}

func TestPortAudioNotInitialized(t *testing.T) {
	mockPortAudio(t, nil, fmt.Errorf("PortAudio not initialized"))

	devices, err := paDevices()
	if err == nil || !strings.Contains(err.Error(), "PortAudio not initialized") {
		t.Errorf("expected 'PortAudio not initialized' error, got %v", err)
	}
	if devices != nil {
		t.Errorf("expected devices to be nil on error, got %v", devices)
	}
}

func TestHostDevices(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Skipf("PortAudio unavailable: %v", err)
	}
	t.Cleanup(func() { _ = Terminate() })

	devices, err := GetDevices()
	if err != nil {
		t.Fatalf("GetDevices error: %v", err)
	}
	if len(devices) == 0 {
		t.Skip("No audio devices found on system")
	}
	for i, d := range devices {
		if d.ID != i {
			t.Errorf("Device ID mismatch: got %d, want %d", d.ID, i)
		}
		if d.DefaultSampleRate <= 0 {
			t.Errorf("Device %d has invalid sample rate: %f", i, d.DefaultSampleRate)
		}
	}
}
