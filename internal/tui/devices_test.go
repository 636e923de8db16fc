// SPDX-License-Identifier: MIT
package tui

import (
	"errors"
	"strings"
	"testing"

	"spectrogen/internal/audio"

	tea "github.com/charmbracelet/bubbletea"
)

var testDevices = []audio.Device{
	{ID: 0, Name: "Speakers", MaxOutputChannels: 2, DefaultSampleRate: 44100},
	{ID: 1, Name: "Microphone", MaxInputChannels: 1, DefaultSampleRate: 48000},
	{ID: 2, Name: "Interface", MaxInputChannels: 2, MaxOutputChannels: 2, DefaultSampleRate: 96000},
}

func send(t *testing.T, m Picker, msgs ...tea.Msg) (Picker, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Picker)
	}
	return m, cmd
}

func keyMsg(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func newTestPicker() Picker {
	return Picker{fetch: func() ([]audio.Device, error) { return testDevices, nil }}
}

func TestPickerInitFetches(t *testing.T) {
	msg := newTestPicker().Init()()
	got, ok := msg.(devicesMsg)
	if !ok || len(got.devices) != len(testDevices) {
		t.Fatalf("Init() produced %#v", msg)
	}

	failing := Picker{fetch: func() ([]audio.Device, error) { return nil, errors.New("no host") }}
	if _, ok := failing.Init()().(errMsg); !ok {
		t.Error("expected errMsg from a failing fetch")
	}
}

func TestPickerSelectsDeviceAndRate(t *testing.T) {
	m, _ := send(t, newTestPicker(),
		tea.WindowSizeMsg{Width: 80, Height: 30},
		devicesMsg{testDevices},
	)
	if !strings.Contains(m.View(), "Microphone") {
		t.Fatalf("device list missing from view:\n%s", m.View())
	}

	// The output-only device cannot be chosen.
	m, _ = send(t, m, keyMsg(tea.KeyEnter))
	if m.activeScreen != ListScreen {
		t.Fatal("entered the rate screen for an output device")
	}

	m, _ = send(t, m, keyMsg(tea.KeyDown), keyMsg(tea.KeyEnter))
	if m.activeScreen != RateScreen {
		t.Fatal("expected the rate screen")
	}
	if SampleRates[m.rateIndex] != 48000 {
		t.Errorf("rate preselected %v, want the device default", SampleRates[m.rateIndex])
	}

	m, cmd := send(t, m, keyMsg(tea.KeyDown), keyMsg(tea.KeyEnter))
	if !isQuit(cmd) {
		t.Error("confirming should quit")
	}
	want := Selection{DeviceID: 1, SampleRate: 88200}
	if sel := m.Selection(); sel == nil || *sel != want {
		t.Errorf("Selection() = %+v, want %+v", sel, want)
	}
}

func TestPickerNavigationBounds(t *testing.T) {
	m, _ := send(t, newTestPicker(), devicesMsg{testDevices},
		keyMsg(tea.KeyUp), keyMsg(tea.KeyUp))
	if m.selectedIndex != 0 {
		t.Errorf("selectedIndex = %d, want 0", m.selectedIndex)
	}
	for range 10 {
		m, _ = send(t, m, keyMsg(tea.KeyDown))
	}
	if m.selectedIndex != len(testDevices)-1 {
		t.Errorf("selectedIndex = %d, want %d", m.selectedIndex, len(testDevices)-1)
	}

	m, _ = send(t, m, keyMsg(tea.KeyEnter), keyMsg(tea.KeyEsc))
	if m.activeScreen != ListScreen {
		t.Error("esc should return to the list")
	}
}

func TestPickerQuit(t *testing.T) {
	m, cmd := send(t, newTestPicker(), devicesMsg{testDevices},
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !isQuit(cmd) {
		t.Error("q should quit")
	}
	if m.Selection() != nil {
		t.Error("quitting must not produce a selection")
	}
}

func TestPickerError(t *testing.T) {
	m, _ := send(t, newTestPicker(), errMsg{errors.New("boom")})
	if !strings.Contains(m.View(), "boom") {
		t.Errorf("View() = %q", m.View())
	}
	if _, cmd := send(t, m, keyMsg(tea.KeyEnter)); !isQuit(cmd) {
		t.Error("any key should quit after an error")
	}
}

func TestSelectionConfigSnippet(t *testing.T) {
	out, err := Selection{DeviceID: 3, SampleRate: 44100}.ConfigSnippet()
	if err != nil {
		t.Fatal(err)
	}
	want := "audio:\n    input_device: 3\n    sample_rate: 44100\n"
	if out != want {
		t.Errorf("ConfigSnippet() = %q, want %q", out, want)
	}
}
