// ABOUTME: Interactive TUI wizard for locating the model and the ONNX Runtime library.
// ABOUTME: 2-step bubbletea model collecting model directory and library path, then validating them.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/imgembed/internal/config"
)

// Step represents the current wizard step.
type Step int

const (
	StepModelPath Step = iota
	StepLibraryPath
	StepValidating
	StepDone
	StepFailed
)

// validationResultMsg carries the result of an async validation attempt.
type validationResultMsg struct {
	err error
}

// ValidateFn is the function signature for installation validation.
type ValidateFn func(ctx context.Context, modelPath, libraryPath string) error

// cancelHolder shares a cancel function across bubbletea model copies.
// This MUST be stored as a pointer field on SetupModel so that value-receiver
// methods (required by tea.Model) can store the cancel func and have it
// visible to all copies of the model.
type cancelHolder struct {
	cancel context.CancelFunc
}

// SetupModel is the bubbletea model for the setup wizard.
type SetupModel struct {
	step          Step
	inputs        [2]textinput.Model
	spinner       spinner.Model
	validateFn    ValidateFn
	cancelCtx     *cancelHolder
	validationErr error
	quitting      bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	brandStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// NewSetupModel creates a new setup wizard model, pre-filling with existing config values.
// graph is the configured ONNX graph path used during validation.
func NewSetupModel(modelPath, libraryPath, graph string) SetupModel {
	modelInput := textinput.New()
	modelInput.Placeholder = config.DefaultModelPath
	modelInput.Focus()
	modelInput.Width = 60
	if modelPath != "" {
		modelInput.SetValue(modelPath)
	}

	libInput := textinput.New()
	libInput.Placeholder = "/usr/local/lib/libonnxruntime.so"
	libInput.Width = 60
	if libraryPath != "" {
		libInput.SetValue(libraryPath)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	return SetupModel{
		step:    StepModelPath,
		inputs:  [2]textinput.Model{modelInput, libInput},
		spinner: s,
		validateFn: func(ctx context.Context, modelPath, libraryPath string) error {
			return ValidateInstallation(ctx, modelPath, graph, libraryPath)
		},
		cancelCtx: &cancelHolder{},
	}
}

// Init implements tea.Model.
func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEscape:
			m.quitting = true
			if m.cancelCtx.cancel != nil {
				m.cancelCtx.cancel()
			}
			return m, tea.Quit
		}

		switch m.step {
		case StepModelPath, StepLibraryPath:
			return m.updateInput(msg)
		case StepFailed:
			return m.updateFailed(msg)
		}

	case validationResultMsg:
		m.cancelCtx.cancel = nil
		if msg.err == nil {
			m.step = StepDone
			return m, tea.Quit
		}
		m.validationErr = msg.err
		m.step = StepFailed
		return m, nil

	case spinner.TickMsg:
		if m.step == StepValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m SetupModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		idx := int(m.step)

		// Apply default model path if empty, and drop trailing slashes
		if m.step == StepModelPath {
			val := strings.TrimSpace(m.inputs[0].Value())
			if val == "" {
				val = config.DefaultModelPath
			} else if len(val) > 1 {
				val = strings.TrimRight(val, "/")
			}
			m.inputs[0].SetValue(val)
		}

		// An empty library path is allowed: the runtime default is used
		if m.step == StepLibraryPath {
			m.inputs[1].SetValue(strings.TrimSpace(m.inputs[1].Value()))
		}

		m.inputs[idx].Blur()

		switch m.step {
		case StepModelPath:
			m.step = StepLibraryPath
			m.inputs[1].Focus()
			return m, textinput.Blink
		case StepLibraryPath:
			m.step = StepValidating
			return m, tea.Batch(m.startValidation(), m.spinner.Tick)
		}
	}

	// Forward to the active input
	idx := int(m.step)
	var cmd tea.Cmd
	m.inputs[idx], cmd = m.inputs[idx].Update(msg)
	return m, cmd
}

func (m SetupModel) updateFailed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyRunes {
		switch msg.Runes[0] {
		case 'r':
			m.step = StepValidating
			m.validationErr = nil
			return m, tea.Batch(m.startValidation(), m.spinner.Tick)
		case 'e':
			m.step = StepModelPath
			m.validationErr = nil
			m.inputs[0].Focus()
			return m, textinput.Blink
		case 's':
			m.step = StepDone
			return m, tea.Quit
		case 'q':
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m SetupModel) startValidation() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelCtx.cancel = cancel
	modelPath := m.inputs[0].Value()
	libraryPath := m.inputs[1].Value()
	fn := m.validateFn
	return func() tea.Msg {
		return validationResultMsg{err: fn(ctx, modelPath, libraryPath)}
	}
}

// View implements tea.Model.
func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(brandStyle.Render("   imgembed"))
	b.WriteString(titleStyle.Render(" - Setup"))
	b.WriteString("\n\n")
	b.WriteString("Point imgembed at a CLIP model and the ONNX Runtime library.\n\n")

	libDisplay := m.inputs[1].Value()
	if libDisplay == "" {
		libDisplay = "(runtime default)"
	}

	switch m.step {
	case StepModelPath:
		b.WriteString(stepStyle.Render("Step 1 of 2: Model directory"))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("(press Enter for default)"))
		b.WriteString("\n")
		b.WriteString(m.inputs[0].View())
		b.WriteString("\n")

	case StepLibraryPath:
		b.WriteString(fmt.Sprintf("  Model: %s\n\n", m.inputs[0].Value()))
		b.WriteString(stepStyle.Render("Step 2 of 2: ONNX Runtime library"))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("(leave empty to use the system library)"))
		b.WriteString("\n")
		b.WriteString(m.inputs[1].View())
		b.WriteString("\n")

	case StepValidating:
		b.WriteString(fmt.Sprintf("  Model:   %s\n", m.inputs[0].Value()))
		b.WriteString(fmt.Sprintf("  Runtime: %s\n\n", libDisplay))
		b.WriteString(m.spinner.View())
		b.WriteString(" Checking model artifacts...")
		b.WriteString("\n")

	case StepDone:
		b.WriteString(successStyle.Render("✓ Model found!"))
		b.WriteString("\n")

	case StepFailed:
		errMsg := "unknown error"
		if m.validationErr != nil {
			errMsg = m.validationErr.Error()
		}
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ Validation failed: %s", errMsg)))
		b.WriteString("\n\n")
		b.WriteString(promptStyle.Render("[r]etry  [e]dit  [s]ave anyway  [q]uit"))
		b.WriteString("\n")
	}

	return b.String()
}

// Result returns the entered values.
func (m SetupModel) Result() (modelPath, libraryPath string) {
	return m.inputs[0].Value(), m.inputs[1].Value()
}

// ShouldSave returns true if the wizard completed (via validation success or
// "save anyway") and the user did not cancel with Ctrl+C, Escape, or 'q'.
func (m SetupModel) ShouldSave() bool {
	return m.step == StepDone && !m.quitting
}
