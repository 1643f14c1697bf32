package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pulseinbox/inbox-cli/internal/api"
	"github.com/pulseinbox/inbox-cli/internal/authflow"
)

// LoginPageModel is the email/password sign-in screen, with a shortcut
// into the browser-based Google flow.
type LoginPageModel struct {
	deps Deps

	email    textinput.Model
	password textinput.Model
	focus    int

	submitting bool
	err        string

	width  int
	height int
}

// NewLoginPage creates the login screen.
func NewLoginPage(deps Deps) LoginPageModel {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Width = 40
	password.EchoMode = textinput.EchoPassword

	return LoginPageModel{
		deps:     deps,
		email:    email,
		password: password,
	}
}

// Init initializes the login screen.
func (m LoginPageModel) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize stores the window dimensions.
func (m *LoginPageModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetError surfaces a failure and unlocks the form.
func (m *LoginPageModel) SetError(err string) {
	m.err = err
	m.submitting = false
}

func (m LoginPageModel) submit() (LoginPageModel, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	if email == "" || password == "" {
		m.err = "Please enter your email and password."
		return m, nil
	}

	m.err = ""
	m.submitting = true
	deps := m.deps
	return m, func() tea.Msg {
		grant, err := deps.API.Login(context.Background(), email, password)
		if err != nil {
			return loginResultMsg{errMsg: api.FailureMessage(err, "Login failed")}
		}
		return loginResultMsg{grant: grant}
	}
}

func (m LoginPageModel) googleSignIn() (LoginPageModel, tea.Cmd) {
	m.err = ""
	m.submitting = true
	deps := m.deps
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), googleSignInTimeout)
		defer cancel()
		token, err := deps.Callback.Run(ctx, deps.API.GoogleAuthURL())
		if err != nil {
			return googleResultMsg{errMsg: "Google sign-in failed. Please try again."}
		}
		deps.Store.AdoptCredential(token)
		snap := deps.Resolver.Resolve(ctx)
		return googleResultMsg{snap: snap}
	}
}

// Update handles messages for the login screen.
func (m LoginPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab", "shift+tab":
			m.focus = (m.focus + 1) % 2
			if m.focus == 0 {
				m.password.Blur()
				return m, m.email.Focus()
			}
			m.email.Blur()
			return m, m.password.Focus()
		case "enter":
			return m.submit()
		case "ctrl+g":
			return m.googleSignIn()
		case "ctrl+s":
			return m, func() tea.Msg { return navigateMsg{screen: authflow.ScreenSignup} }
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.email, cmd = m.email.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View renders the login screen.
func (m LoginPageModel) View() string {
	var sb strings.Builder

	sb.WriteString(centerText(titleStyle.Render("Welcome Back"), m.width))
	sb.WriteString("\n\n")
	sb.WriteString(centerText(labelStyle.Render("Email"), m.width))
	sb.WriteString("\n")
	sb.WriteString(centerText(m.email.View(), m.width))
	sb.WriteString("\n\n")
	sb.WriteString(centerText(labelStyle.Render("Password"), m.width))
	sb.WriteString("\n")
	sb.WriteString(centerText(m.password.View(), m.width))
	sb.WriteString("\n\n")

	if m.err != "" {
		sb.WriteString(centerText(errorMessageStyle(m.err), m.width))
		sb.WriteString("\n")
	}
	if m.submitting {
		sb.WriteString(centerText("Signing in...", m.width))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(centerText(hintStyle("(enter) Sign in | (ctrl+g) Sign in with Google | (ctrl+s) Sign up | (ctrl+c) Quit"), m.width))

	return docStyle.Render(sb.String())
}
