// SPDX-License-Identifier: MIT

// Package tui is an interactive picker for the capture device and rate.
package tui

import (
	"fmt"
	"strings"

	"spectrogen/internal/audio"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))
)

// SampleRates offered on the rate screen.
var SampleRates = []float64{44100, 48000, 88200, 96000}

var (
	keyQuit  = key.NewBinding(key.WithKeys("q", "ctrl+c"))
	keyUp    = key.NewBinding(key.WithKeys("up", "k"))
	keyDown  = key.NewBinding(key.WithKeys("down", "j"))
	keyEnter = key.NewBinding(key.WithKeys("enter"))
	keyBack  = key.NewBinding(key.WithKeys("esc"))
)

// Screen is the active picker page.
type Screen int

const (
	ListScreen Screen = iota
	RateScreen
)

// Selection is what the user picked. Its YAML form is the audio section of
// a config file.
type Selection struct {
	DeviceID   int     `yaml:"input_device"`
	SampleRate float64 `yaml:"sample_rate"`
}

// ConfigSnippet renders the selection as a config file fragment.
func (s Selection) ConfigSnippet() (string, error) {
	out, err := yaml.Marshal(map[string]Selection{"audio": s})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

type devicesMsg struct {
	devices []audio.Device
}

type errMsg struct {
	err error
}

// Picker lists devices and, after a capture device is chosen, its
// sample rate.
type Picker struct {
	fetch         func() ([]audio.Device, error)
	devices       []audio.Device
	selectedIndex int
	rateIndex     int
	viewport      viewport.Model
	ready         bool
	err           error
	activeScreen  Screen
	selection     *Selection
}

// NewPicker returns a picker that lists audio.GetDevices.
func NewPicker() Picker {
	return Picker{fetch: audio.GetDevices}
}

// Init fetches the device list.
func (m Picker) Init() tea.Cmd {
	fetch := m.fetch
	return func() tea.Msg {
		devices, err := fetch()
		if err != nil {
			return errMsg{err}
		}
		return devicesMsg{devices}
	}
}

// Update handles input and updates the model.
func (m Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.refresh()

	case devicesMsg:
		m.devices = msg.devices
		m.refresh()

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		if key.Matches(msg, keyQuit) || m.err != nil {
			return m, tea.Quit
		}
		switch m.activeScreen {
		case ListScreen:
			if cmd := m.updateList(msg); cmd != nil {
				return m, cmd
			}
		case RateScreen:
			if cmd := m.updateRate(msg); cmd != nil {
				return m, cmd
			}
		}
		m.refresh()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Picker) updateList(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keyUp):
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}
	case key.Matches(msg, keyDown):
		if m.selectedIndex < len(m.devices)-1 {
			m.selectedIndex++
		}
	case key.Matches(msg, keyEnter):
		if len(m.devices) == 0 || !m.devices[m.selectedIndex].IsInput() {
			return nil
		}
		m.activeScreen = RateScreen
		m.rateIndex = 0
		for i, rate := range SampleRates {
			if rate == m.devices[m.selectedIndex].DefaultSampleRate {
				m.rateIndex = i
				break
			}
		}
	}
	return nil
}

func (m *Picker) updateRate(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keyBack):
		m.activeScreen = ListScreen
	case key.Matches(msg, keyUp):
		if m.rateIndex > 0 {
			m.rateIndex--
		}
	case key.Matches(msg, keyDown):
		if m.rateIndex < len(SampleRates)-1 {
			m.rateIndex++
		}
	case key.Matches(msg, keyEnter):
		m.selection = &Selection{
			DeviceID:   m.devices[m.selectedIndex].ID,
			SampleRate: SampleRates[m.rateIndex],
		}
		return tea.Quit
	}
	return nil
}

func (m *Picker) refresh() {
	if !m.ready {
		return
	}
	if m.activeScreen == RateScreen {
		m.viewport.SetContent(m.renderRates())
	} else {
		m.viewport.SetContent(m.renderDevices())
	}
}

// View renders the UI.
func (m Picker) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress any key to exit.", m.err)
	}
	if !m.ready {
		return "Initializing..."
	}

	var title, help string
	if m.activeScreen == ListScreen {
		title = titleStyle.Render("Audio Devices")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Choose input • q: Quit")
	} else {
		title = titleStyle.Render("Sample Rate")
		help = infoStyle.Render("↑/↓: Change • Enter: Confirm • Esc: Back • q: Quit")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

func (m Picker) renderDevices() string {
	if len(m.devices) == 0 {
		return "No audio devices found."
	}

	var sb strings.Builder
	for i, device := range m.devices {
		info := fmt.Sprintf("[%d] %s\n    Input channels: %d, Output channels: %d\n    Default sample rate: %.0f Hz\n",
			device.ID, device.Name, device.MaxInputChannels, device.MaxOutputChannels, device.DefaultSampleRate)

		switch {
		case i == m.selectedIndex:
			info = highlightStyle.Render(info)
		case !device.IsInput():
			info = dimStyle.Render(info)
		}
		sb.WriteString(info)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Picker) renderRates() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Capture from: %s\n\n", m.devices[m.selectedIndex].Name)

	for i, rate := range SampleRates {
		marker := " "
		if i == m.rateIndex {
			marker = "▶"
		}
		line := fmt.Sprintf("  %s %.0f Hz\n", marker, rate)
		if i == m.rateIndex {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// Selection returns the confirmed choice, or nil when the user quit.
func (m Picker) Selection() *Selection { return m.selection }

// Run shows the picker full screen and returns the confirmed choice, or
// nil when the user quit without choosing.
func Run() (*Selection, error) {
	final, err := tea.NewProgram(NewPicker(), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}
	return final.(Picker).Selection(), nil
}
