package main

import (
	"flag"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oxionics/entangler-core/entangler"
	"github.com/oxionics/entangler-core/hostbus"
	"github.com/oxionics/entangler-core/regfile"
)

type tickMsg struct{}

func doTick() tea.Cmd {
	return tea.Tick(20*time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	boxStyle    = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).Padding(1).Width(40)
	successText = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	timeoutText = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimText     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// mon is the bubbletea model: it free-runs the core's clock and lets the
// user trigger attempts interactively, the way monitor/main.go free-runs the
// CPU and lets the user single-step it. All core stepping, idle or running,
// happens synchronously inside Update on the bubbletea event-loop goroutine,
// the same way monitor/main.go's doStep() never leaves that goroutine --
// there is no background goroutine touching the core.
type mon struct {
	core   *entangler.Core
	bus    *hostbus.Bus
	client *hostbus.Client

	cycleLen uint32
	timeout  uint32

	running bool
	lastMsg string
	err     error
}

func newMon(cycleLen, timeout uint32) *mon {
	core := entangler.NewCore()
	bus := hostbus.NewBus(core, nil)
	client := hostbus.NewClient(bus)
	return &mon{core: core, bus: bus, client: client, cycleLen: cycleLen, timeout: timeout}
}

func (m *mon) Init() tea.Cmd {
	if err := m.client.Configure(true, false, true); err != nil {
		m.err = err
	}
	if err := m.client.SetCycleLength(m.cycleLen); err != nil {
		m.err = err
	}
	return doTick()
}

func (m *mon) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.running {
			events, err := m.bus.RF.Submit(nil, 0, entangler.Inputs{})
			if err != nil {
				m.err = err
				m.running = false
			} else {
				m.handleEvents(events)
			}
		} else {
			m.bus.RF.Submit(nil, 0, entangler.Inputs{})
		}
		return m, doTick()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if !m.running {
				m.startRun()
			}
		}
	}
	return m, nil
}

// startRun strobes the RUN register and evaluates the completion event, if
// any, on the same clock -- the run itself then advances one clock per
// tickMsg until it completes.
func (m *mon) startRun() {
	m.running = true
	m.lastMsg = ""
	addr := regfile.AddrRun
	events, err := m.bus.RF.Submit(&addr, m.timeout, entangler.Inputs{})
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.handleEvents(events)
}

func (m *mon) handleEvents(events []regfile.InputEvent) {
	for _, e := range events {
		if !e.Done {
			continue
		}
		m.running = false
		if e.Data == regfile.TimeoutSentinel {
			m.lastMsg = "timeout"
		} else {
			m.lastMsg = fmt.Sprintf("success, matches=%04b", e.Data)
		}
	}
}

func (m *mon) View() string {
	status := fmt.Sprintf(
		"state: %s\nM: %d / %d\nrunning: %v\ncycles completed: %d\ntriggers received: %d",
		m.core.SM.State, m.core.SM.M, m.core.SM.MEnd, m.core.SM.Running,
		m.core.SM.CyclesCompleted, m.core.SM.TriggersReceived,
	)

	result := dimText.Render("no run yet")
	switch {
	case m.err != nil:
		result = timeoutText.Render(m.err.Error())
	case m.running:
		result = dimText.Render("running...")
	case m.lastMsg != "":
		if m.lastMsg == "timeout" {
			result = timeoutText.Render(m.lastMsg)
		} else {
			result = successText.Render(m.lastMsg)
		}
	}

	return titleStyle.Render("entangler monitor") + "\n" +
		boxStyle.Render(status) + "\n" +
		result + "\n" +
		dimText.Render("r: run   q: quit")
}

func main() {
	cycleLen := flag.Uint("cycle", 20, "attempt length, in coarse clocks")
	timeout := flag.Uint("timeout", 200, "run timeout, in coarse clocks")
	flag.Parse()

	p := tea.NewProgram(newMon(uint32(*cycleLen), uint32(*timeout)))
	if _, err := p.Run(); err != nil {
		fmt.Println("entanglermon:", err)
	}
}
