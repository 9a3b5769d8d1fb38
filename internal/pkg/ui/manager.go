// Package ui provides terminal output and interactive components for autocommit.
package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/autocommit/autocommit/internal/pkg/errors"
	"github.com/autocommit/autocommit/internal/pkg/message"
)

// Action represents a user action in the interactive UI.
type Action int

const (
	ActionAccept Action = iota
	ActionEdit
	ActionRegenerate
	ActionCancel
)

// String returns the string representation of an Action.
func (a Action) String() string {
	switch a {
	case ActionAccept:
		return "accept"
	case ActionEdit:
		return "edit"
	case ActionRegenerate:
		return "regenerate"
	case ActionCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Spinner provides loading animation functionality.
type Spinner interface {
	Start()
	Stop()
	UpdateText(text string)
}

// Manager defines the interface for UI operations.
type Manager interface {
	// DisplayDescriptor shows the generated descriptor and its source.
	DisplayDescriptor(d *message.Descriptor, source string) error
	// PromptAction asks the user what to do with the descriptor.
	PromptAction() (Action, error)
	// EditDescriptor lets the user adjust the four descriptor fields.
	EditDescriptor(d *message.Descriptor) (*message.Descriptor, error)
	ShowSpinner(text string) Spinner
	ShowError(err error)
	ShowSuccess(msg string)
	// ShowNotice prints an advisory line to stderr.
	ShowNotice(msg string)
	PromptConfirm(msg string) (bool, error)
}

// DefaultManager implements the Manager interface using charmbracelet libraries.
type DefaultManager struct {
	colorEnabled bool
	spinnerStyle spinner.Spinner
	styles       *styles
}

// styles holds the lipgloss styles for UI rendering.
type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	field      lipgloss.Style
	source     lipgloss.Style
	success    lipgloss.Style
	errorStyle lipgloss.Style
	info       lipgloss.Style
	border     lipgloss.Style
}

// NewDefaultManager creates a new DefaultManager with the specified options.
func NewDefaultManager(colorEnabled bool, spinnerStyle string) *DefaultManager {
	m := &DefaultManager{
		colorEnabled: colorEnabled,
		spinnerStyle: spinnerByName(spinnerStyle),
	}
	m.initStyles()
	return m
}

// spinnerByName maps the configured spinner style to a bubbles spinner.
func spinnerByName(name string) spinner.Spinner {
	switch name {
	case "line":
		return spinner.Line
	case "minidot":
		return spinner.MiniDot
	case "points":
		return spinner.Points
	default:
		return spinner.Dot
	}
}

// initStyles initializes the lipgloss styles.
func (m *DefaultManager) initStyles() {
	if !m.colorEnabled {
		m.styles = &styles{
			title:      lipgloss.NewStyle(),
			header:     lipgloss.NewStyle(),
			field:      lipgloss.NewStyle(),
			source:     lipgloss.NewStyle(),
			success:    lipgloss.NewStyle(),
			errorStyle: lipgloss.NewStyle(),
			info:       lipgloss.NewStyle(),
			border:     lipgloss.NewStyle(),
		}
		return
	}

	m.styles = &styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220")),
		field: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		source: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true),
		success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")),
		errorStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		info: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")),
		border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Width(80),
	}
}

// DisplayDescriptor renders the descriptor panel.
func (m *DefaultManager) DisplayDescriptor(d *message.Descriptor, source string) error {
	if d == nil {
		return fmt.Errorf("descriptor cannot be nil")
	}

	var sb strings.Builder
	sb.WriteString(m.styles.title.Render("已生成提交描述:"))
	sb.WriteString("\n")
	sb.WriteString(m.styles.field.Render(fmt.Sprintf("类型: %s", d.Type)))
	sb.WriteString("\n")
	sb.WriteString(m.styles.field.Render(fmt.Sprintf("作用域: %s", d.Scope)))
	sb.WriteString("\n")
	sb.WriteString(m.styles.field.Render(fmt.Sprintf("主题: %s", d.Theme)))
	sb.WriteString("\n")
	sb.WriteString(m.styles.field.Render(fmt.Sprintf("简介: %s", d.Intro)))
	sb.WriteString("\n")
	sb.WriteString(m.styles.source.Render(fmt.Sprintf("来源: %s", source)))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.header.Render(fmt.Sprintf("commit: %s", d.Header())))

	fmt.Println()
	fmt.Println(m.styles.border.Render(sb.String()))
	fmt.Println()

	return nil
}

// PromptAction prompts the user to select an action using Bubble Tea.
func (m *DefaultManager) PromptAction() (Action, error) {
	model := newActionSelectModel()
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return ActionCancel, err
	}

	result := finalModel.(actionSelectModel)
	return result.selected, nil
}

// actionSelectModel is the Bubble Tea model for action selection.
type actionSelectModel struct {
	choices  []actionChoice
	cursor   int
	selected Action
	done     bool
}

type actionChoice struct {
	action Action
	label  string
	icon   string
	desc   string
}

func newActionSelectModel() actionSelectModel {
	return actionSelectModel{
		choices: []actionChoice{
			{ActionAccept, "提交", "›", "使用该描述执行 git commit"},
			{ActionEdit, "编辑", "•", "调整类型、作用域、主题或简介"},
			{ActionRegenerate, "重新生成", "↻", "重新调用 AI 生成描述"},
			{ActionCancel, "取消", "×", "退出且不提交"},
		},
		cursor:   0,
		selected: ActionCancel,
	}
}

func (m actionSelectModel) Init() tea.Cmd {
	return nil
}

func (m actionSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.selected = ActionCancel
			m.done = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case "enter", " ":
			m.selected = m.choices[m.cursor].action
			m.done = true
			return m, tea.Quit
		case "1":
			m.selected = ActionAccept
			m.done = true
			return m, tea.Quit
		case "2":
			m.selected = ActionEdit
			m.done = true
			return m, tea.Quit
		case "3":
			m.selected = ActionRegenerate
			m.done = true
			return m, tea.Quit
		case "4":
			m.selected = ActionCancel
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m actionSelectModel) View() string {
	if m.done {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39"))

	selectedStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("212"))

	normalStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("请选择操作"))
	sb.WriteString("\n\n")

	for i, choice := range m.choices {
		cursor := "  "
		style := normalStyle
		if m.cursor == i {
			cursor = "▸ "
			style = selectedStyle
		}

		line := fmt.Sprintf("%s%s %s", cursor, choice.icon, style.Render(choice.label))
		sb.WriteString(line)
		sb.WriteString(descStyle.Render(fmt.Sprintf(" - %s", choice.desc)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(descStyle.Render("↑/↓ 或 j/k 移动 • Enter 确认 • 1-4 快速选择 • q 取消"))

	return sb.String()
}

// EditDescriptor opens a form to adjust the four descriptor fields.
// Edited values are applied verbatim, like command line overrides.
func (m *DefaultManager) EditDescriptor(d *message.Descriptor) (*message.Descriptor, error) {
	if d == nil {
		return nil, fmt.Errorf("descriptor cannot be nil")
	}

	edited := *d

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("类型").
				Options(huh.NewOptions(message.ValidCommitTypes...)...).
				Value(&edited.Type),
			huh.NewInput().
				Title("作用域").
				Value(&edited.Scope).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("作用域不能为空")
					}
					return nil
				}),
			huh.NewInput().
				Title("主题").
				Value(&edited.Theme).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("主题不能为空")
					}
					return nil
				}),
			huh.NewText().
				Title("简介").
				Value(&edited.Intro).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("简介不能为空")
					}
					return nil
				}),
		),
	)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("failed to edit descriptor: %w", err)
	}

	edited.Type = strings.TrimSpace(edited.Type)
	edited.Scope = strings.TrimSpace(edited.Scope)
	edited.Theme = strings.TrimSpace(edited.Theme)
	edited.Intro = strings.TrimSpace(edited.Intro)

	return &edited, nil
}

// ShowSpinner creates and returns a spinner for loading states.
func (m *DefaultManager) ShowSpinner(text string) Spinner {
	return newBubbleSpinner(m.spinnerStyle, text)
}

// ShowError displays an error message to the user.
func (m *DefaultManager) ShowError(err error) {
	if err == nil {
		return
	}
	fmt.Println()
	fmt.Println(m.styles.errorStyle.Render(apperrors.FormatError(err)))
	fmt.Println()
}

// ShowSuccess displays a success message to the user.
func (m *DefaultManager) ShowSuccess(msg string) {
	fmt.Println()
	fmt.Println(m.styles.success.Render(msg))
	fmt.Println()
}

// ShowNotice prints an advisory line to stderr.
func (m *DefaultManager) ShowNotice(msg string) {
	fmt.Fprintln(os.Stderr, m.styles.info.Render(msg))
}

// PromptConfirm prompts the user for a yes/no confirmation using Bubble Tea.
func (m *DefaultManager) PromptConfirm(msg string) (bool, error) {
	model := newConfirmModel(msg)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	result := finalModel.(confirmModel)
	return result.confirmed, nil
}

// confirmModel is the Bubble Tea model for yes/no confirmation.
type confirmModel struct {
	message   string
	cursor    int // 0 = Yes, 1 = No
	confirmed bool
	done      bool
}

func newConfirmModel(message string) confirmModel {
	return confirmModel{
		message: message,
		cursor:  0,
	}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "n":
			m.confirmed = false
			m.done = true
			return m, tea.Quit
		case "y", "Y":
			m.confirmed = true
			m.done = true
			return m, tea.Quit
		case "left", "h":
			m.cursor = 0
		case "right", "l":
			m.cursor = 1
		case "enter", " ":
			m.confirmed = m.cursor == 0
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("220"))

	selectedStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("42"))

	normalStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.message))
	sb.WriteString(" ")

	yesStyle := normalStyle
	noStyle := normalStyle
	if m.cursor == 0 {
		yesStyle = selectedStyle
	} else {
		noStyle = selectedStyle
	}

	sb.WriteString(yesStyle.Render("[Y]es"))
	sb.WriteString(" / ")
	sb.WriteString(noStyle.Render("[N]o"))

	return sb.String()
}

// bubbleSpinner implements Spinner using Bubble Tea.
type bubbleSpinner struct {
	text    string
	program *tea.Program
	model   *spinnerModel
	mu      sync.Mutex
}

// spinnerModel is the Bubble Tea model for simple spinner.
type spinnerModel struct {
	spinner  spinner.Model
	text     string
	quitting bool
}

// spinnerTickMsg is sent to update spinner text from outside.
type spinnerTickMsg struct {
	text string
}

// spinnerQuitMsg signals the spinner to quit.
type spinnerQuitMsg struct{}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerTickMsg:
		m.text = msg.text
		return m, nil
	case spinnerQuitMsg:
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.text)
}

func newBubbleSpinner(style spinner.Spinner, text string) *bubbleSpinner {
	s := spinner.New()
	s.Spinner = style
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	model := &spinnerModel{
		spinner: s,
		text:    text,
	}

	return &bubbleSpinner{
		text:  text,
		model: model,
	}
}

func (s *bubbleSpinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.program = tea.NewProgram(s.model)
	go func() {
		_, _ = s.program.Run()
	}()
}

func (s *bubbleSpinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.program != nil {
		s.program.Send(spinnerQuitMsg{})
		time.Sleep(50 * time.Millisecond)
	}
}

func (s *bubbleSpinner) UpdateText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = text
	if s.program != nil {
		s.program.Send(spinnerTickMsg{text: text})
	}
}

// NonInteractiveManager implements Manager for the default plain output
// mode. The descriptor block prints line by line on stdout.
type NonInteractiveManager struct{}

// NewNonInteractiveManager creates a new NonInteractiveManager.
func NewNonInteractiveManager() *NonInteractiveManager {
	return &NonInteractiveManager{}
}

// DisplayDescriptor prints the descriptor block.
func (m *NonInteractiveManager) DisplayDescriptor(d *message.Descriptor, source string) error {
	if d == nil {
		return fmt.Errorf("descriptor cannot be nil")
	}

	fmt.Println("已生成提交描述:")
	fmt.Printf("类型: %s\n", d.Type)
	fmt.Printf("作用域: %s\n", d.Scope)
	fmt.Printf("主题: %s\n", d.Theme)
	fmt.Printf("简介: %s\n", d.Intro)
	fmt.Printf("来源: %s\n", source)
	fmt.Printf("commit: %s\n", d.Header())

	return nil
}

// PromptAction always returns ActionAccept in non-interactive mode.
func (m *NonInteractiveManager) PromptAction() (Action, error) {
	return ActionAccept, nil
}

// EditDescriptor returns the descriptor unchanged in non-interactive mode.
func (m *NonInteractiveManager) EditDescriptor(d *message.Descriptor) (*message.Descriptor, error) {
	return d, nil
}

// ShowSpinner returns a no-op spinner in non-interactive mode.
func (m *NonInteractiveManager) ShowSpinner(text string) Spinner {
	return &noopSpinner{}
}

// ShowError displays an error message.
func (m *NonInteractiveManager) ShowError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, apperrors.FormatError(err))
}

// ShowSuccess displays a success message.
func (m *NonInteractiveManager) ShowSuccess(msg string) {
	fmt.Println(msg)
}

// ShowNotice prints an advisory line to stderr.
func (m *NonInteractiveManager) ShowNotice(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

// PromptConfirm always returns true in non-interactive mode.
func (m *NonInteractiveManager) PromptConfirm(msg string) (bool, error) {
	return true, nil
}

// noopSpinner is a no-op implementation of Spinner.
type noopSpinner struct{}

func (s *noopSpinner) Start()            {}
func (s *noopSpinner) Stop()             {}
func (s *noopSpinner) UpdateText(string) {}
