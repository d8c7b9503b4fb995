// Package tui runs the career quiz in a terminal.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pavelanni/dreamroute/internal/flow"
	"github.com/pavelanni/dreamroute/internal/responselog"
)

type phase int

const (
	phaseName phase = iota
	phaseEmail
	phaseQuestion
	phaseSaving
	phaseDone
)

// SaveFunc persists a finished traversal.
type SaveFunc func(responselog.CompletedResponse) error

// Options configures the terminal quiz.
type Options struct {
	NoColor bool
	Now     func() time.Time
}

// Model is the Bubble Tea model of one quiz run.
type Model struct {
	def    flow.Definition
	save   SaveFunc
	now    func() time.Time
	styles styles

	input textinput.Model
	bar   progress.Model

	phase  phase
	name   string
	email  string
	state  flow.State
	cursor int
	field  string
	err    error
}

// savedMsg reports the outcome of SaveFunc.
type savedMsg struct{ err error }

// New builds a quiz model over def. save may be nil to skip persisting.
func New(def flow.Definition, save SaveFunc, opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	in := textinput.New()
	in.Placeholder = "Your name"
	in.CharLimit = 120
	in.Focus()

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	if opts.NoColor {
		bar = progress.New(progress.WithSolidFill("7"), progress.WithoutPercentage())
	}

	return Model{
		def:    def,
		save:   save,
		now:    now,
		styles: newStyles(opts.NoColor),
		input:  in,
		bar:    bar,
		phase:  phaseName,
	}
}

// Init starts the cursor blink of the name prompt.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses and the save result.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-4, 10), 60)
		return m, nil
	case savedMsg:
		m.err = msg.err
		m.phase = phaseDone
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}
		switch m.phase {
		case phaseName, phaseEmail:
			return m.updateInput(msg)
		case phaseQuestion:
			return m.updateQuestion(msg)
		case phaseDone:
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.KeyEnter {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	// Both answers may be left blank.
	value := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if m.phase == phaseName {
		if value == "" {
			value = responselog.AnonymousName
		}
		m.name = value
		m.input.Placeholder = "you@example.com"
		m.phase = phaseEmail
		return m, nil
	}
	m.email = value
	m.input.Blur()
	m.state = flow.Start(m.def.Table)
	m.phase = phaseQuestion
	return m, nil
}

func (m Model) updateQuestion(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	node, ok := m.def.Table.Node(m.state.Current)
	if !ok {
		m.err = fmt.Errorf("%w: %s", flow.ErrUnknownNode, m.state.Current)
		return m, tea.Quit
	}

	key := msg.String()
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(node.Options)-1 {
			m.cursor++
		}
		return m, nil
	case "enter", " ":
	default:
		if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(node.Options) {
			m.cursor = int(key[0] - '1')
			break
		}
		return m, nil
	}

	next, err := m.def.Table.Step(m.state, node.Options[m.cursor])
	if err != nil {
		m.err = err
		return m, tea.Quit
	}
	m.state = next
	m.cursor = 0
	if !next.Done() {
		return m, nil
	}

	m.field = m.def.Classifier.ClassifyState(next)
	if m.save == nil {
		m.phase = phaseDone
		return m, nil
	}
	m.phase = phaseSaving
	resp := responselog.CompletedResponse{
		Name:      m.name,
		Email:     m.email,
		Timestamp: m.now(),
		Steps:     next.Answers(),
		Field:     m.field,
	}
	save := m.save
	return m, func() tea.Msg { return savedMsg{err: save(resp)} }
}

// View renders the current phase.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Dream Route career quiz"))
	b.WriteString("\n\n")

	switch m.phase {
	case phaseName:
		b.WriteString("What is your name? (optional)\n")
		b.WriteString(m.input.View())
	case phaseEmail:
		fmt.Fprintf(&b, "Hi %s! What is your email? (optional)\n", m.name)
		b.WriteString(m.input.View())
	case phaseQuestion:
		b.WriteString(m.questionView())
	case phaseSaving:
		b.WriteString("Saving your answers...")
	case phaseDone:
		b.WriteString(m.resultView())
	}
	b.WriteString("\n\n")
	b.WriteString(m.styles.help.Render(m.help()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) questionView() string {
	node, ok := m.def.Table.Node(m.state.Current)
	if !ok {
		return m.styles.err.Render("unknown question " + string(m.state.Current))
	}
	var b strings.Builder
	step := len(m.state.Steps)
	depth := m.def.Table.MaxDepth()
	fmt.Fprintf(&b, "Question %d of up to %d\n", step+1, depth)
	b.WriteString(m.bar.ViewAs(float64(step) / float64(depth)))
	b.WriteString("\n\n")
	b.WriteString(m.styles.prompt.Render(node.Prompt))
	b.WriteString("\n\n")
	for i, opt := range node.Options {
		line := fmt.Sprintf("%d. %s", i+1, opt)
		if i == m.cursor {
			b.WriteString(m.styles.selected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) resultView() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you, %s!\n\n", m.name)
	b.WriteString("Suggested field: ")
	b.WriteString(m.styles.field.Render(m.field))
	b.WriteString("\n\n")
	for _, s := range m.state.Steps {
		fmt.Fprintf(&b, "  %-14s %s\n", s.Node, s.Answer)
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.err.Render("could not save answers: " + m.err.Error()))
	}
	return b.String()
}

func (m Model) help() string {
	switch m.phase {
	case phaseQuestion:
		return "↑/↓ or 1-9 choose • enter confirm • esc quit"
	case phaseDone:
		return "press any key to exit"
	default:
		return "enter confirm • esc quit"
	}
}

// Completed reports whether the participant reached the end of the flow.
func (m Model) Completed() bool { return m.phase == phaseDone }

// Field returns the predicted field after completion.
func (m Model) Field() string { return m.field }

// State returns the traversal so far.
func (m Model) State() flow.State { return m.state }

// Err returns the error that ended the run, if any.
func (m Model) Err() error { return m.err }

type styles struct {
	title, prompt, selected, field, help, err lipgloss.Style
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			title:    plain.Bold(true),
			prompt:   plain.Bold(true),
			selected: plain.Bold(true),
			field:    plain.Bold(true),
			help:     plain,
			err:      plain,
		}
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		prompt:   lipgloss.NewStyle().Bold(true),
		selected: lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
		field:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		err:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}
