package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pulseinbox/inbox-cli/internal/api"
	"github.com/pulseinbox/inbox-cli/internal/authflow"
)

// SignupPageModel is the account creation screen.
type SignupPageModel struct {
	deps Deps

	name     textinput.Model
	email    textinput.Model
	password textinput.Model
	number   textinput.Model
	focus    int

	submitting bool
	err        string

	width  int
	height int
}

// NewSignupPage creates the signup screen.
func NewSignupPage(deps Deps) SignupPageModel {
	name := textinput.New()
	name.Placeholder = "Ada Lovelace"
	name.Width = 40
	name.Focus()

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Width = 40

	password := textinput.New()
	password.Placeholder = "password"
	password.Width = 40
	password.EchoMode = textinput.EchoPassword

	number := textinput.New()
	number.Placeholder = "+15551234567"
	number.Width = 40

	return SignupPageModel{
		deps:     deps,
		name:     name,
		email:    email,
		password: password,
		number:   number,
	}
}

// Init initializes the signup screen.
func (m SignupPageModel) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize stores the window dimensions.
func (m *SignupPageModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetError surfaces a failure and unlocks the form.
func (m *SignupPageModel) SetError(err string) {
	m.err = err
	m.submitting = false
}

func (m SignupPageModel) submit() (SignupPageModel, tea.Cmd) {
	params := api.SignupParams{
		Name:         strings.TrimSpace(m.name.Value()),
		Email:        strings.TrimSpace(m.email.Value()),
		Password:     m.password.Value(),
		TwilioNumber: strings.TrimSpace(m.number.Value()),
	}
	if params.Name == "" || params.Email == "" || params.Password == "" {
		m.err = "Please fill in all fields."
		return m, nil
	}

	m.err = ""
	m.submitting = true
	deps := m.deps
	return m, func() tea.Msg {
		grant, err := deps.API.Signup(context.Background(), params)
		if err != nil {
			return signupResultMsg{errMsg: api.FailureMessage(err, "Signup failed")}
		}
		return signupResultMsg{grant: grant}
	}
}

// Update handles messages for the signup screen.
func (m SignupPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab":
			return m.cycleFocus(1)
		case "shift+tab":
			return m.cycleFocus(-1)
		case "enter":
			return m.submit()
		case "esc":
			return m, func() tea.Msg { return navigateMsg{screen: authflow.ScreenLogin} }
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	cmds = append(cmds, cmd)
	m.email, cmd = m.email.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	m.number, cmd = m.number.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m SignupPageModel) cycleFocus(delta int) (SignupPageModel, tea.Cmd) {
	fields := []*textinput.Model{&m.name, &m.email, &m.password, &m.number}
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

// View renders the signup screen.
func (m SignupPageModel) View() string {
	var sb strings.Builder

	sb.WriteString(centerText(titleStyle.Render("Create an Account"), m.width))
	sb.WriteString("\n\n")
	sb.WriteString(centerText(labelStyle.Render("Name"), m.width))
	sb.WriteString("\n")
	sb.WriteString(centerText(m.name.View(), m.width))
	sb.WriteString("\n\n")
	sb.WriteString(centerText(labelStyle.Render("Email"), m.width))
	sb.WriteString("\n")
	sb.WriteString(centerText(m.email.View(), m.width))
	sb.WriteString("\n\n")
	sb.WriteString(centerText(labelStyle.Render("Password"), m.width))
	sb.WriteString("\n")
	sb.WriteString(centerText(m.password.View(), m.width))
	sb.WriteString("\n\n")
	sb.WriteString(centerText(labelStyle.Render("Twilio Number (optional)"), m.width))
	sb.WriteString("\n")
	sb.WriteString(centerText(m.number.View(), m.width))
	sb.WriteString("\n\n")

	if m.err != "" {
		sb.WriteString(centerText(errorMessageStyle(m.err), m.width))
		sb.WriteString("\n")
	}
	if m.submitting {
		sb.WriteString(centerText("Signing up...", m.width))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(centerText(hintStyle("(enter) Sign up | (esc) Back to login | (ctrl+c) Quit"), m.width))

	return docStyle.Render(sb.String())
}
