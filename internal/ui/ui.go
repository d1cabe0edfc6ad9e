package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-orrery/internal/anim"
	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/version"
)

// Rows taken by the title line and the HUD below the canvas.
const (
	headerLines = 1
	hudLines    = 3
)

// Camera steps per key press.
const (
	rotateStep = 0.15 // radians
	panStep    = 0.05 // fraction of camera distance
	zoomStep   = 1.15
)

// Msg types for Bubble Tea
type (
	// FrameMsg asks the model to advance the animation one frame.
	FrameMsg time.Time

	// ElementsMsg carries asteroid elements from a config reload. A
	// non-nil Err means the reload failed and the scene is unchanged.
	ElementsMsg struct {
		Elements astro.Elements
		Err      error
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	loop     *anim.Loop
	renderer *TermRenderer
	interval time.Duration

	width     int
	height    int
	ready     bool
	statusMsg string
	animTick  int
}

// New creates the root model. interval is the frame period.
func New(loop *anim.Loop, renderer *TermRenderer, interval time.Duration) Model {
	if interval <= 0 {
		interval = anim.DefaultInterval
	}
	return Model{loop: loop, renderer: renderer, interval: interval}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return frameCmd(m.interval)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		rows := max(m.height-headerLines-hudLines, 1)
		m.loop.Resize(m.width, 2*rows)
		return m, nil

	case FrameMsg:
		if m.loop.State() == anim.Halted {
			return m, nil
		}
		if !m.ready {
			return m, frameCmd(m.interval)
		}
		m.animTick++
		if err := m.loop.Tick(); err != nil {
			// Stop scheduling; the fault stays on screen.
			return m, nil
		}
		return m, frameCmd(m.interval)

	case ElementsMsg:
		if msg.Err != nil {
			m.statusMsg = "Config reload failed: " + msg.Err.Error()
			return m, nil
		}
		if err := m.loop.SetElements(msg.Elements); err != nil {
			m.statusMsg = "Rejected elements: " + err.Error()
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Elements updated: a=%.4f AU e=%.4f", msg.Elements.A, msg.Elements.E)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.loop.Scene()
	ctl := s.Controls

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left":
		ctl.Rotate(rotateStep, 0)
	case "right":
		ctl.Rotate(-rotateStep, 0)
	case "up":
		ctl.Rotate(0, rotateStep)
	case "down":
		ctl.Rotate(0, -rotateStep)
	case "w":
		ctl.Pan(0, panStep)
	case "s":
		ctl.Pan(0, -panStep)
	case "a":
		ctl.Pan(-panStep, 0)
	case "d":
		ctl.Pan(panStep, 0)
	case "+", "=":
		ctl.Dolly(1 / zoomStep)
	case "-", "_":
		ctl.Dolly(zoomStep)
	case "r":
		m.loop.ResetCamera()
		m.statusMsg = "Camera reset"
	case "l":
		s.Labels.SetVisible(!s.Labels.Visible())
	case "t":
		s.Stars.Visible = !s.Stars.Visible
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.width < 20 || m.height < headerLines+hudLines+2 {
		return "Terminal too small. Need at least 20x6."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderer.Frame())
	b.WriteString("\n")
	b.WriteString(m.renderHUD())
	return b.String()
}

func (m Model) renderHeader() string {
	title := []rune(fmt.Sprintf(" ls-orrery · %s · v%s", scene.AsteroidLabel, version.Version))
	var b strings.Builder
	for i, r := range title {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradientColor(i, len(title))))
		b.WriteString(style.Render(string(r)))
	}
	return b.String()
}

var (
	gradientFrom = colorful.Color{R: 59.0 / 255, G: 130.0 / 255, B: 246.0 / 255}
	gradientTo   = colorful.Color{R: 236.0 / 255, G: 72.0 / 255, B: 153.0 / 255}
)

// gradientColor blends blue to pink across the width.
func gradientColor(col, width int) string {
	if width <= 1 {
		return gradientFrom.Hex()
	}
	t := float64(col) / float64(width-1)
	return gradientFrom.BlendHcl(gradientTo, t).Clamped().Hex()
}

func (m Model) renderHUD() string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	r := m.loop.Readout()
	var lines []string

	if r.Time.IsZero() {
		lines = append(lines, labelStyle.Render(" Waiting for first frame..."))
	} else {
		lines = append(lines, " "+valueStyle.Render(r.DateLine())+dimStyle.Render("  |  ")+valueStyle.Render(r.DistanceLine()))
	}

	var status string
	switch {
	case m.loop.State() == anim.Halted:
		status = errorStyle.Render("Animation halted: " + m.loop.Err().Error())
	case m.statusMsg != "":
		status = labelStyle.Render(m.statusMsg)
	default:
		spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		status = accentStyle.Render(spinnerFrames[m.animTick%len(spinnerFrames)]) +
			dimStyle.Render(fmt.Sprintf(" frame %d", m.loop.Frames()))
	}
	lines = append(lines, " "+status)

	lines = append(lines, dimStyle.Render(" arrows: rotate | w/a/s/d: pan | +/-: zoom | r: reset | l: labels | t: stars | q: quit"))
	return strings.Join(lines, "\n")
}

func frameCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// SendElements creates a command that delivers reloaded elements.
func SendElements(el astro.Elements, err error) tea.Cmd {
	return func() tea.Msg {
		return ElementsMsg{Elements: el, Err: err}
	}
}
