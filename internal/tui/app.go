package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pulseinbox/inbox-cli/internal/api"
	"github.com/pulseinbox/inbox-cli/internal/authflow"
	"github.com/pulseinbox/inbox-cli/internal/callback"
	"github.com/pulseinbox/inbox-cli/internal/config"
	"github.com/pulseinbox/inbox-cli/internal/inbox"
	"github.com/pulseinbox/inbox-cli/internal/session"
)

// googleSignInTimeout bounds the browser round trip.
const googleSignInTimeout = 3 * time.Minute

// Deps are the collaborators the TUI observes and drives.
type Deps struct {
	Config   *config.Config
	Store    *session.Store
	Resolver *session.Resolver
	Gate     authflow.Gate
	OTP      *authflow.Workflow
	Inbox    *inbox.Service
	API      *api.Client
	Callback *callback.Flow
}

// AppModel is the root model: it owns screen switching and runs the route
// guard on every session change before anything renders, so a protected
// screen never flashes while a redirect is pending.
type AppModel struct {
	deps Deps

	snap   session.Snapshot
	screen authflow.Screen

	login   LoginPageModel
	signup  SignupPageModel
	verify  VerifyPageModel
	inbox   InboxPageModel
	spinner spinner.Model

	width  int
	height int
}

// NewAppModel creates the root model. The session starts unresolved, so
// the first frames show the loading placeholder.
func NewAppModel(deps Deps) AppModel {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	return AppModel{
		deps:    deps,
		snap:    deps.Store.Snapshot(),
		screen:  authflow.ScreenLogin,
		login:   NewLoginPage(deps),
		signup:  NewSignupPage(deps),
		verify:  NewVerifyPage(deps),
		inbox:   NewInboxPage(deps),
		spinner: sp,
	}
}

// Init kicks off session resolution and the loading spinner.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		resolveSessionCmd(m.deps),
	)
}

func resolveSessionCmd(deps Deps) tea.Cmd {
	return func() tea.Msg {
		snap := deps.Resolver.Resolve(context.Background())
		return sessionResolvedMsg{snap: snap}
	}
}

// Update handles app-level messages and delegates to the active page.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.login.SetSize(msg.Width, msg.Height)
		m.signup.SetSize(msg.Width, msg.Height)
		m.verify.SetSize(msg.Width, msg.Height)
		m.inbox.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sessionResolvedMsg:
		m.snap = msg.snap
		return m.reroute()

	case loginResultMsg:
		if msg.errMsg != "" {
			m.login.SetError(msg.errMsg)
			return m, nil
		}
		m.deps.Store.SetSession(msg.grant.Token, msg.grant.User)
		m.snap = m.deps.Store.Snapshot()
		return m.reroute()

	case signupResultMsg:
		if msg.errMsg != "" {
			m.signup.SetError(msg.errMsg)
			return m, nil
		}
		m.deps.Store.SetSession(msg.grant.Token, msg.grant.User)
		m.snap = m.deps.Store.Snapshot()
		return m.reroute()

	case googleResultMsg:
		if msg.errMsg != "" {
			m.login.SetError(msg.errMsg)
			return m, nil
		}
		m.snap = msg.snap
		if !m.snap.Authenticated {
			// The redirected token did not survive resolution.
			m.login.SetError("Google sign-in failed. Please try again.")
			return m, nil
		}
		return m.reroute()

	case otpVerifiedMsg:
		if msg.res.OK {
			// The workflow already re-resolved the session.
			m.snap = m.deps.Store.Snapshot()
			var cmd tea.Cmd
			var model tea.Model
			model, cmd = m.verify.Update(msg)
			m.verify = model.(VerifyPageModel)
			next, rerouteCmd := m.reroute()
			return next, tea.Batch(cmd, rerouteCmd)
		}

	case numberUpdatedMsg:
		if msg.res.OK {
			m.snap = m.deps.Store.Snapshot()
			var cmd tea.Cmd
			var model tea.Model
			model, cmd = m.inbox.Update(msg)
			m.inbox = model.(InboxPageModel)
			m.inbox.SetUser(m.snap.User)
			next, rerouteCmd := m.reroute()
			return next, tea.Batch(cmd, rerouteCmd)
		}

	case numberRemovedMsg:
		if msg.res.OK {
			m.snap = m.deps.Store.Snapshot()
			var cmd tea.Cmd
			var model tea.Model
			model, cmd = m.inbox.Update(msg)
			m.inbox = model.(InboxPageModel)
			next, rerouteCmd := m.reroute()
			return next, tea.Batch(cmd, rerouteCmd)
		}

	case navigateMsg:
		m.screen = msg.screen
		return m.reroute()

	case logoutMsg:
		m.deps.Store.ClearSession()
		m.deps.Inbox.Flush()
		m.deps.OTP.Reset()
		m.snap = m.deps.Store.Snapshot()
		return m.reroute()
	}

	// Delegate to the active page.
	var cmd tea.Cmd
	var model tea.Model
	switch m.screen {
	case authflow.ScreenLogin:
		model, cmd = m.login.Update(msg)
		m.login = model.(LoginPageModel)
	case authflow.ScreenSignup:
		model, cmd = m.signup.Update(msg)
		m.signup = model.(SignupPageModel)
	case authflow.ScreenVerify:
		model, cmd = m.verify.Update(msg)
		m.verify = model.(VerifyPageModel)
	case authflow.ScreenInbox, authflow.ScreenNotes:
		model, cmd = m.inbox.Update(msg)
		m.inbox = model.(InboxPageModel)
	}
	return m, cmd
}

// reroute re-evaluates the redirect policy for the current phase and
// screen. It runs synchronously on every session change, before the next
// render.
func (m AppModel) reroute() (tea.Model, tea.Cmd) {
	phase := m.deps.Gate.PhaseOf(m.snap)
	screen, verdict := authflow.Route(phase, m.screen)
	if verdict.Wait {
		return m, nil
	}
	if screen == m.screen {
		return m, nil
	}
	m.screen = screen
	return m, m.enterScreen(screen)
}

// enterScreen prepares a page that was just routed to.
func (m *AppModel) enterScreen(screen authflow.Screen) tea.Cmd {
	switch screen {
	case authflow.ScreenLogin:
		m.login = NewLoginPage(m.deps)
		m.login.SetSize(m.width, m.height)
		return m.login.Init()
	case authflow.ScreenSignup:
		m.signup = NewSignupPage(m.deps)
		m.signup.SetSize(m.width, m.height)
		return m.signup.Init()
	case authflow.ScreenVerify:
		m.deps.OTP.Reset()
		m.verify = NewVerifyPage(m.deps)
		m.verify.SetUser(m.snap.User)
		m.verify.SetSize(m.width, m.height)
		return m.verify.Init()
	case authflow.ScreenInbox:
		m.inbox = NewInboxPage(m.deps)
		m.inbox.SetUser(m.snap.User)
		m.inbox.SetSize(m.width, m.height)
		return m.inbox.Init()
	}
	return nil
}

// View renders the active page, or the loading placeholder while the
// first resolution is outstanding.
func (m AppModel) View() string {
	if m.snap.Loading {
		return docStyle.Render(m.spinner.View() + " Loading application...")
	}

	switch m.screen {
	case authflow.ScreenLogin:
		return m.login.View()
	case authflow.ScreenSignup:
		return m.signup.View()
	case authflow.ScreenVerify:
		return m.verify.View()
	case authflow.ScreenInbox, authflow.ScreenNotes:
		return m.inbox.View()
	default:
		return ""
	}
}

// Screen exposes the active screen, mostly for tests.
func (m AppModel) Screen() authflow.Screen {
	return m.screen
}
