package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/uringgen"
	"github.com/wippyai/uringgen/config"
	"github.com/wippyai/uringgen/header"
	"github.com/wippyai/uringgen/pipeline"
	"github.com/wippyai/uringgen/toolchain"
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

type stageView struct {
	err     error
	summary string
	elapsed time.Duration
	stage   pipeline.Stage
	state   pipeline.State
	seen    bool
}

type interactiveModel struct {
	err      error
	result   *pipeline.Result
	header   string
	stages   []stageView
	spinner  spinner.Model
	selected int
	done     bool
}

type stageMsg pipeline.Event

type doneMsg struct {
	err    error
	result *pipeline.Result
}

func newInteractiveModel(headerPath string) *interactiveModel {
	m := &interactiveModel{
		header:  headerPath,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(typeStyle)),
	}
	for _, s := range pipeline.Stages {
		m.stages = append(m.stages, stageView{stage: s})
	}
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.done && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.done && m.result != nil && m.selected < len(m.result.Source.Wrappers)-1 {
				m.selected++
			}
		}

	case stageMsg:
		sv := &m.stages[msg.Stage]
		sv.seen = true
		sv.state = msg.State
		sv.summary = msg.Summary
		sv.elapsed = msg.Elapsed
		sv.err = msg.Err

	case doneMsg:
		m.done = true
		m.err = msg.err
		m.result = msg.result

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("uringgen"))
	b.WriteString(" ")
	b.WriteString(m.header)
	b.WriteString("\n\n")

	for _, sv := range m.stages {
		b.WriteString(m.stageIcon(sv))
		b.WriteString(" ")
		b.WriteString(fmt.Sprintf("%-12s", sv.stage))
		if sv.summary != "" {
			b.WriteString(typeStyle.Render(sv.summary))
		}
		if sv.state == pipeline.StateFinished {
			b.WriteString(helpStyle.Render(fmt.Sprintf(" (%s)", sv.elapsed.Round(time.Millisecond))))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case !m.done:
		b.WriteString(helpStyle.Render("q quit"))

	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("q quit"))

	default:
		wrappers := m.result.Source.Wrappers
		if len(wrappers) == 0 {
			b.WriteString("No inline-only functions, nothing to wrap.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}
		b.WriteString(fmt.Sprintf("%d wrappers in %s:\n\n", len(wrappers), m.result.Archive.Path))
		for i, w := range wrappers {
			line := w.Symbol + " -> " + w.Name
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + funcStyle.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(resultStyle.Render(wrappers[m.selected].Text))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) stageIcon(sv stageView) string {
	if !sv.seen {
		return helpStyle.Render("·")
	}
	switch sv.state {
	case pipeline.StateStarted:
		return m.spinner.View()
	case pipeline.StateFinished:
		return resultStyle.Render("✓")
	case pipeline.StateFailed:
		return errorStyle.Render("✗")
	}
	return helpStyle.Render("-")
}

// errInterrupted is returned when the view is closed before the pipeline
// finished. No directives are printed in that case.
var errInterrupted = errors.New("interrupted before completion")

// runInteractive runs the pipeline behind a stage view. Directives are
// buffered while the view owns the terminal and written to stdout once it
// exits. Quitting early cancels the pipeline and waits for it to stop.
func runInteractive(ctx context.Context, cfg *config.Config, runner toolchain.Runner, stdout io.Writer, opts ...tea.ProgramOption) error {
	// log lines would tear the alternate screen
	pipeline.SetLogger(zap.NewNop())
	toolchain.SetLogger(zap.NewNop())
	header.SetLogger(zap.NewNop())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var directives bytes.Buffer
	m := newInteractiveModel(cfg.Header)
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)...)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		res, err := uringgen.Generate(runCtx, cfg,
			pipeline.WithRunner(runner),
			pipeline.WithStdout(&directives),
			pipeline.WithObserver(func(ev pipeline.Event) {
				p.Send(stageMsg(ev))
			}))
		p.Send(doneMsg{err: err, result: res})
	}()

	_, err := p.Run()
	if !m.done {
		cancel()
	}
	<-finished

	switch {
	case err != nil:
		return err
	case !m.done:
		return errInterrupted
	case m.err != nil:
		return m.err
	}
	_, err = stdout.Write(directives.Bytes())
	return err
}
