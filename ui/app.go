// Package ui provides the terminal interface for VPN Demo. The model
// observes the session controller through snapshots and never mutates
// session state directly; every command goes through the controller.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stojanovic-vukas/vpn-demo/auth"
	"github.com/stojanovic-vukas/vpn-demo/common"
	"github.com/stojanovic-vukas/vpn-demo/vpn"
)

const maxLogLines = 100

type snapshotMsg vpn.Snapshot

type logMsg string

type actionResultMsg struct {
	err error
}

type model struct {
	controller *vpn.Controller
	snapshot   vpn.Snapshot

	githubMode bool
	focusIdx   int
	login      textinput.Model
	password   textinput.Model
	otp        textinput.Model

	otpReply   chan otpAnswer
	countryIdx int
	logLines   []string
	actionErr  string
	width      int
}

func newModel(controller *vpn.Controller) model {
	login := textinput.New()
	login.Placeholder = "GitHub login"
	login.CharLimit = 64

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 128

	otp := textinput.New()
	otp.Placeholder = "One-time code"
	otp.CharLimit = 16

	return model{
		controller: controller,
		snapshot:   controller.Snapshot(),
		login:      login,
		password:   password,
		otp:        otp,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case snapshotMsg:
		m.snapshot = vpn.Snapshot(msg)
		if m.countryIdx >= len(m.snapshot.Countries) {
			m.countryIdx = 0
		}
		return m, nil

	case logMsg:
		m.logLines = append(m.logLines, string(msg))
		if len(m.logLines) > maxLogLines {
			m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
		}
		return m, nil

	case otpRequestMsg:
		m.otpReply = msg.reply
		m.otp.SetValue("")
		return m, m.otp.Focus()

	case actionResultMsg:
		if msg.err != nil {
			m.actionErr = msg.err.Error()
		} else {
			m.actionErr = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.cancelChallenge()
		return m, tea.Quit
	}

	if m.otpReply != nil {
		return m.handleChallengeKey(msg)
	}

	if m.snapshot.UI.ShowLoginButton {
		return m.handleLoginKey(msg)
	}

	return m.handleSessionKey(msg)
}

// handleChallengeKey drives the modal two-factor overlay. The login
// goroutine is blocked on the reply until the user answers.
func (m model) handleChallengeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.otpReply <- otpAnswer{code: strings.TrimSpace(m.otp.Value()), ok: true}
		m.otpReply = nil
		m.otp.Blur()
		return m, nil
	case "esc":
		m.otpReply <- otpAnswer{ok: false}
		m.otpReply = nil
		m.otp.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.otp, cmd = m.otp.Update(msg)
	return m, cmd
}

func (m model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		if !m.githubMode || m.focusIdx < 0 {
			return m, tea.Quit
		}
	case "ctrl+g":
		m.githubMode = !m.githubMode
		if m.githubMode {
			m.focusIdx = 0
			return m, m.login.Focus()
		}
		m.focusIdx = -1
		m.login.Blur()
		m.password.Blur()
		return m, nil
	case "tab", "shift+tab":
		if !m.githubMode {
			return m, nil
		}
		if m.focusIdx == 0 {
			m.focusIdx = 1
			m.login.Blur()
			return m, m.password.Focus()
		}
		m.focusIdx = 0
		m.password.Blur()
		return m, m.login.Focus()
	case "enter":
		return m, m.loginCmd()
	}

	if m.githubMode {
		var cmd tea.Cmd
		if m.focusIdx == 0 {
			m.login, cmd = m.login.Update(msg)
		} else {
			m.password, cmd = m.password.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m model) handleSessionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.snapshot
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		if snap.UI.ShowConnectButton && m.countryIdx > 0 {
			m.countryIdx--
		}
		return m, nil
	case "right", "l":
		if snap.UI.ShowConnectButton && m.countryIdx < len(snap.Countries)-1 {
			m.countryIdx++
		}
		return m, nil
	case "c":
		if snap.UI.ShowConnectButton {
			return m, m.connectCmd(snap.Countries[m.countryIdx])
		}
		return m, nil
	case "d":
		if snap.UI.ShowDisconnectButton {
			return m, m.disconnectCmd()
		}
		return m, nil
	case "o":
		if snap.UI.ShowLogoutButton {
			return m, m.logoutCmd()
		}
		return m, nil
	case "ctrl+l":
		m.logLines = nil
		return m, nil
	}
	return m, nil
}

func (m *model) cancelChallenge() {
	if m.otpReply != nil {
		m.otpReply <- otpAnswer{ok: false}
		m.otpReply = nil
	}
}

func (m model) loginCmd() tea.Cmd {
	creds := auth.Credentials{Mode: auth.ModeAnonymous}
	if m.githubMode {
		creds = auth.Credentials{
			Mode:     auth.ModeGithub,
			Login:    strings.TrimSpace(m.login.Value()),
			Password: m.password.Value(),
		}
	}
	controller := m.controller
	return func() tea.Msg {
		return actionResultMsg{err: controller.Login(context.Background(), creds)}
	}
}

func (m model) connectCmd(country string) tea.Cmd {
	controller := m.controller
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), common.BackendCallTimeout)
		defer cancel()
		return actionResultMsg{err: controller.Connect(ctx, country)}
	}
}

func (m model) disconnectCmd() tea.Cmd {
	controller := m.controller
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), common.BackendCallTimeout)
		defer cancel()
		return actionResultMsg{err: controller.Disconnect(ctx)}
	}
}

func (m model) logoutCmd() tea.Cmd {
	controller := m.controller
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), common.BackendCallTimeout)
		defer cancel()
		return actionResultMsg{err: controller.Logout(ctx)}
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(common.AppName))
	b.WriteString("\n")

	if m.otpReply != nil {
		b.WriteString(m.viewChallenge())
	} else if m.snapshot.UI.ShowLoginButton {
		b.WriteString(m.viewLogin())
	} else {
		b.WriteString(m.viewSession())
	}

	if m.actionErr != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.actionErr))
	}
	if m.snapshot.ErrorVisible && m.snapshot.ErrorText != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.snapshot.ErrorText))
	}

	b.WriteString(m.viewLog())
	return b.String()
}

func (m model) viewChallenge() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		"Two-factor authentication required",
		m.otp.View(),
	)
	return sectionStyle.Render(content) +
		helpStyle.Render("\nenter: submit · esc: cancel")
}

func (m model) viewLogin() string {
	var lines []string
	if m.githubMode {
		lines = append(lines,
			"Sign in with GitHub",
			m.login.View(),
			m.password.View(),
		)
	} else {
		lines = append(lines, "Sign in anonymously")
	}
	lines = append(lines, labelStyle.Render("Device: ")+m.snapshot.DeviceID)

	help := "enter: login · ctrl+g: toggle GitHub mode · ctrl+c: quit"
	if m.githubMode {
		help = "enter: login · tab: next field · ctrl+g: anonymous mode · ctrl+c: quit"
	}

	return sectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)) +
		helpStyle.Render("\n"+help)
}

func (m model) viewSession() string {
	snap := m.snapshot

	connected := snap.ConnState == vpn.Connected
	transitioning := snap.ConnState == vpn.Connecting || snap.ConnState == vpn.Disconnecting ||
		snap.AuthState == vpn.LoggingIn || snap.AuthState == vpn.LoggingOut

	lines := []string{
		labelStyle.Render("Session:    ") + snap.AuthState.String(),
		labelStyle.Render("Tunnel:     ") + statusStyle(connected, transitioning).Render(snap.ConnState.String()),
		labelStyle.Render("Country:    ") + m.viewCountries(),
		labelStyle.Render("Sent:       ") + snap.BytesSent,
		labelStyle.Render("Received:   ") + snap.BytesReceived,
	}
	if snap.RemainingTraffic != "" {
		lines = append(lines, labelStyle.Render("Quota:      ")+
			strings.ReplaceAll(snap.RemainingTraffic, "\n", ", "))
	}

	var actions []string
	if snap.UI.ShowConnectButton {
		actions = append(actions, "c: connect", "←/→: country")
	}
	if snap.UI.ShowDisconnectButton {
		actions = append(actions, "d: disconnect")
	}
	if snap.UI.ShowLogoutButton {
		actions = append(actions, "o: logout")
	}
	actions = append(actions, "ctrl+l: clear log", "q: quit")

	return sectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)) +
		helpStyle.Render("\n"+strings.Join(actions, " · "))
}

// viewCountries renders the selectable country row. The empty entry is
// presented as automatic server selection.
func (m model) viewCountries() string {
	snap := m.snapshot
	if !snap.UI.ShowConnectButton {
		if snap.SelectedCountry == "" {
			return "Best available"
		}
		return snap.SelectedCountry
	}

	parts := make([]string, 0, len(snap.Countries))
	for i, country := range snap.Countries {
		label := country
		if label == "" {
			label = "Best available"
		}
		if i == m.countryIdx {
			label = selectedStyle.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ")
}

func (m model) viewLog() string {
	if len(m.logLines) == 0 {
		return ""
	}

	shown := m.logLines
	if len(shown) > 8 {
		shown = shown[len(shown)-8:]
	}

	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Log"))
	for _, line := range shown {
		b.WriteString("\n")
		b.WriteString(logStyle.Render(line))
	}
	return b.String()
}

// Run starts the terminal interface and blocks until it exits. The
// controller's change stream and the log sink feed the program; both
// subscriptions are released on exit.
func Run(controller *vpn.Controller, prompter *Prompter) error {
	program := tea.NewProgram(newModel(controller), tea.WithAltScreen())

	prompter.attach(program)
	controller.SetOnChange(func(snap vpn.Snapshot) {
		program.Send(snapshotMsg(snap))
	})

	logger := common.GetLogger()
	handle := logger.Subscribe(func(entry string) {
		program.Send(logMsg(entry))
	})
	defer logger.Unsubscribe(handle)

	controller.Start()
	defer controller.Close()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal interface failed: %w", err)
	}
	return nil
}
