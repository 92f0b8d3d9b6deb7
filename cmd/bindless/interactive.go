package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/spirv-bindless/bindless"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

var ops = []string{"both", storeFunc, loadFunc}

const (
	inputFields = iota
	inputIndex
	inputOffset
	inputValues
)

type modelState int

const (
	stateEdit modelState = iota
	stateShowResult
)

type interactiveModel struct {
	err      error
	disasm   string
	result   string
	inputs   []textinput.Model
	opts     buildOptions
	focusIdx int
	state    modelState
}

type generatedMsg struct {
	err    error
	disasm string
	result string
}

func newInteractiveModel(opts buildOptions) *interactiveModel {
	m := &interactiveModel{opts: opts, state: stateEdit}
	if m.opts.op == "" {
		m.opts.op = ops[0]
	}

	prompts := []struct{ prompt, value, placeholder string }{
		{"fields: ", opts.fields, "a:u32, b:s32"},
		{"index:  ", "0", "buffer index"},
		{"offset: ", "0", "byte offset"},
		{"values: ", "", "comma-separated words"},
	}
	m.inputs = make([]textinput.Model, len(prompts))
	for i, p := range prompts {
		ti := textinput.New()
		ti.Prompt = p.prompt
		ti.Placeholder = p.placeholder
		ti.SetValue(p.value)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	return m
}

func runInteractive(opts buildOptions) error {
	_, err := tea.NewProgram(newInteractiveModel(opts), tea.WithAltScreen()).Run()
	return err
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.state == stateShowResult {
				m.state = stateEdit
				return m, nil
			}
			return m, tea.Quit

		case "enter":
			if m.state == stateShowResult {
				m.state = stateEdit
				return m, nil
			}
			return m, m.generate

		case "tab", "down":
			m.focus((m.focusIdx + 1) % len(m.inputs))
			return m, nil

		case "shift+tab", "up":
			m.focus((m.focusIdx + len(m.inputs) - 1) % len(m.inputs))
			return m, nil

		case "ctrl+o":
			m.opts.op = nextOp(m.opts.op)
			return m, nil

		case "ctrl+p":
			m.opts.outPointer = !m.opts.outPointer
			return m, nil

		case "ctrl+n":
			m.opts.nested = !m.opts.nested
			return m, nil

		case "ctrl+t":
			if m.opts.misaligned == bindless.MisalignedReject {
				m.opts.misaligned = bindless.MisalignedTruncate
			} else {
				m.opts.misaligned = bindless.MisalignedReject
			}
			return m, nil
		}

	case generatedMsg:
		m.err = msg.err
		m.disasm = msg.disasm
		m.result = msg.result
		m.state = stateShowResult
		return m, nil
	}

	if m.state == stateEdit {
		var cmd tea.Cmd
		m.inputs[m.focusIdx], cmd = m.inputs[m.focusIdx].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) focus(idx int) {
	m.inputs[m.focusIdx].Blur()
	m.focusIdx = idx
	m.inputs[m.focusIdx].Focus()
}

func nextOp(op string) string {
	for i, o := range ops {
		if o == op {
			return ops[(i+1)%len(ops)]
		}
	}
	return ops[0]
}

func (m *interactiveModel) generate() tea.Msg {
	opts := m.opts
	opts.fields = m.inputs[inputFields].Value()

	a, err := buildModule(opts)
	if err != nil {
		return generatedMsg{err: err}
	}
	msg := generatedMsg{disasm: a.mod.Disassemble()}

	index, err := strconv.ParseUint(strings.TrimSpace(m.inputs[inputIndex].Value()), 0, 32)
	if err != nil {
		msg.err = fmt.Errorf("index: %w", err)
		return msg
	}
	offset, err := strconv.ParseInt(strings.TrimSpace(m.inputs[inputOffset].Value()), 0, 32)
	if err != nil {
		msg.err = fmt.Errorf("offset: %w", err)
		return msg
	}
	values, err := parseWords(m.inputs[inputValues].Value())
	if err != nil {
		msg.err = err
		return msg
	}
	if len(values) == 0 && opts.op != loadFunc {
		// nothing to store; show the module only
		return msg
	}

	res, err := execute(context.Background(), a, uint32(index), uint32(int32(offset)), values)
	if err != nil {
		msg.err = err
		return msg
	}
	msg.result = res.String()
	return msg
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Bindless Lowering"))
	b.WriteString(" ")
	b.WriteString(m.optionsLine())
	b.WriteString("\n\n")

	switch m.state {
	case stateEdit:
		for i, input := range m.inputs {
			line := input.View()
			if i == m.focusIdx {
				b.WriteString(selectedStyle.Render(">"))
				b.WriteString(" ")
			} else {
				b.WriteString("  ")
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter generate • ctrl+o op • ctrl+p out pointer • ctrl+n nested • ctrl+t misaligned • esc quit"))

	case stateShowResult:
		if m.disasm != "" {
			for _, line := range strings.Split(strings.TrimSuffix(m.disasm, "\n"), "\n") {
				if strings.Contains(line, "OpFunction ") {
					b.WriteString(funcStyle.Render(line))
				} else {
					b.WriteString(typeStyle.Render(line))
				}
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		} else if m.result != "" {
			b.WriteString(resultStyle.Render(strings.TrimSuffix(m.result, "\n")))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter edit • esc back • ctrl+c quit"))
	}

	return b.String()
}

func (m *interactiveModel) optionsLine() string {
	parts := []string{
		"op=" + m.opts.op,
		"misaligned=" + m.opts.misaligned.String(),
	}
	if m.opts.outPointer {
		parts = append(parts, "out-pointer")
	}
	if m.opts.nested {
		parts = append(parts, "nested")
	}
	return typeStyle.Render(strings.Join(parts, " "))
}
