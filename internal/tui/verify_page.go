package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pulseinbox/inbox-cli/internal/api"
	"github.com/pulseinbox/inbox-cli/internal/authflow"
)

// VerifyPageModel is the phone-number verification screen: first the
// number (plus provider credentials on first-time setup), then the
// one-time code.
type VerifyPageModel struct {
	deps Deps

	user *api.User

	number       textinput.Model
	accountSID   textinput.Model
	authToken    textinput.Model
	smsFrom      textinput.Model
	whatsappFrom textinput.Model
	code         textinput.Model
	focus        int

	submitting bool
	err        string
	status     string

	width  int
	height int
}

// NewVerifyPage creates the verification screen.
func NewVerifyPage(deps Deps) VerifyPageModel {
	number := textinput.New()
	number.Placeholder = "+15551234567"
	number.Width = 40
	number.Focus()

	accountSID := textinput.New()
	accountSID.Placeholder = "Twilio Account SID"
	accountSID.Width = 40

	authToken := textinput.New()
	authToken.Placeholder = "Twilio Auth Token"
	authToken.Width = 40
	authToken.EchoMode = textinput.EchoPassword

	smsFrom := textinput.New()
	smsFrom.Placeholder = "SMS from number"
	smsFrom.Width = 40

	whatsappFrom := textinput.New()
	whatsappFrom.Placeholder = "WhatsApp from number"
	whatsappFrom.Width = 40

	code := textinput.New()
	code.Placeholder = "one-time code"
	code.Width = 40

	return VerifyPageModel{
		deps:         deps,
		number:       number,
		accountSID:   accountSID,
		authToken:    authToken,
		smsFrom:      smsFrom,
		whatsappFrom: whatsappFrom,
		code:         code,
	}
}

// Init initializes the verification screen.
func (m VerifyPageModel) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize stores the window dimensions.
func (m *VerifyPageModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetUser prefills the form from the profile being verified.
func (m *VerifyPageModel) SetUser(user *api.User) {
	m.user = user
	if user != nil && user.TwilioNumber != "" {
		m.number.SetValue(user.TwilioNumber)
	}
}

// credentialsVisible reports whether the provider credential fields are
// part of the form: only on first-time setup, and only when the
// deployment requires them.
func (m VerifyPageModel) credentialsVisible() bool {
	if !m.deps.Config.Auth.ProviderCredentialsRequired {
		return false
	}
	return m.user == nil || m.user.TwilioNumber == ""
}

func (m VerifyPageModel) credentials() *api.TwilioCredentials {
	if !m.credentialsVisible() {
		return nil
	}
	return &api.TwilioCredentials{
		AccountSID:   strings.TrimSpace(m.accountSID.Value()),
		AuthToken:    strings.TrimSpace(m.authToken.Value()),
		SMSFrom:      strings.TrimSpace(m.smsFrom.Value()),
		WhatsAppFrom: strings.TrimSpace(m.whatsappFrom.Value()),
	}
}

func (m VerifyPageModel) requestCode() (VerifyPageModel, tea.Cmd) {
	number := strings.TrimSpace(m.number.Value())
	creds := m.credentials()

	m.err = ""
	m.status = ""
	m.submitting = true
	deps := m.deps
	return m, func() tea.Msg {
		res := deps.OTP.RequestCode(context.Background(), number, creds)
		return otpRequestedMsg{res: res}
	}
}

func (m VerifyPageModel) verifyCode() (VerifyPageModel, tea.Cmd) {
	code := strings.TrimSpace(m.code.Value())

	m.err = ""
	m.status = ""
	m.submitting = true
	deps := m.deps
	return m, func() tea.Msg {
		res := deps.OTP.VerifyCode(context.Background(), code)
		return otpVerifiedMsg{res: res}
	}
}

func (m VerifyPageModel) cycleFocus(delta int) (VerifyPageModel, tea.Cmd) {
	fields := []*textinput.Model{&m.number}
	if m.credentialsVisible() {
		fields = append(fields, &m.accountSID, &m.authToken, &m.smsFrom, &m.whatsappFrom)
	}
	m.focus = (m.focus + delta + len(fields)) % len(fields)
	var cmd tea.Cmd
	for i, field := range fields {
		if i == m.focus {
			cmd = field.Focus()
		} else {
			field.Blur()
		}
	}
	return m, cmd
}

// Update handles messages for the verification screen.
func (m VerifyPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case otpRequestedMsg:
		m.submitting = false
		if !msg.res.OK {
			m.err = msg.res.Message
			return m, nil
		}
		m.err = ""
		m.status = msg.res.Message
		m.code.SetValue("")
		return m, m.code.Focus()

	case otpVerifiedMsg:
		m.submitting = false
		if !msg.res.OK {
			m.err = msg.res.Message
			return m, nil
		}
		m.err = ""
		m.status = msg.res.Message
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch m.deps.OTP.Step() {
		case authflow.StepNumber:
			switch msg.String() {
			case "tab":
				return m.cycleFocus(1)
			case "shift+tab":
				return m.cycleFocus(-1)
			case "enter":
				return m.requestCode()
			case "ctrl+l":
				return m, func() tea.Msg { return logoutMsg{} }
			}
		case authflow.StepCode:
			switch msg.String() {
			case "enter":
				return m.verifyCode()
			case "ctrl+n":
				m.deps.OTP.ChangeNumber()
				m.err = ""
				m.status = ""
				m.code.Blur()
				return m, m.number.Focus()
			case "ctrl+l":
				return m, func() tea.Msg { return logoutMsg{} }
			}
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if m.deps.OTP.Step() == authflow.StepCode {
		m.code, cmd = m.code.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		m.number, cmd = m.number.Update(msg)
		cmds = append(cmds, cmd)
		if m.credentialsVisible() {
			m.accountSID, cmd = m.accountSID.Update(msg)
			cmds = append(cmds, cmd)
			m.authToken, cmd = m.authToken.Update(msg)
			cmds = append(cmds, cmd)
			m.smsFrom, cmd = m.smsFrom.Update(msg)
			cmds = append(cmds, cmd)
			m.whatsappFrom, cmd = m.whatsappFrom.Update(msg)
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

// View renders the verification screen.
func (m VerifyPageModel) View() string {
	var sb strings.Builder

	sb.WriteString(centerText(titleStyle.Render("Verify Twilio Number"), m.width))
	sb.WriteString("\n\n")

	if m.deps.OTP.Step() == authflow.StepCode {
		sb.WriteString(centerText("OTP sent to "+m.deps.OTP.Number(), m.width))
		sb.WriteString("\n\n")
		sb.WriteString(centerText(labelStyle.Render("OTP"), m.width))
		sb.WriteString("\n")
		sb.WriteString(centerText(m.code.View(), m.width))
		sb.WriteString("\n\n")
	} else {
		sb.WriteString(centerText(labelStyle.Render("Twilio Number (e.g., +1234567890)"), m.width))
		sb.WriteString("\n")
		sb.WriteString(centerText(m.number.View(), m.width))
		sb.WriteString("\n\n")
		if m.credentialsVisible() {
			for _, field := range []textinput.Model{m.accountSID, m.authToken, m.smsFrom, m.whatsappFrom} {
				sb.WriteString(centerText(field.View(), m.width))
				sb.WriteString("\n")
			}
			sb.WriteString("\n")
		}
	}

	if m.err != "" {
		sb.WriteString(centerText(errorMessageStyle(m.err), m.width))
		sb.WriteString("\n")
	}
	if m.status != "" {
		sb.WriteString(centerText(statusMessageStyle(m.status), m.width))
		sb.WriteString("\n")
	}
	if m.submitting {
		sb.WriteString(centerText("Working...", m.width))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	if m.deps.OTP.Step() == authflow.StepCode {
		sb.WriteString(centerText(hintStyle("(enter) Verify OTP | (ctrl+n) Change number | (ctrl+l) Logout | (ctrl+c) Quit"), m.width))
	} else {
		sb.WriteString(centerText(hintStyle("(enter) Request OTP via WhatsApp | (ctrl+l) Logout | (ctrl+c) Quit"), m.width))
	}

	return docStyle.Render(sb.String())
}
