package tui

import (
	"github.com/pulseinbox/inbox-cli/internal/api"
	"github.com/pulseinbox/inbox-cli/internal/authflow"
	"github.com/pulseinbox/inbox-cli/internal/session"
)

// sessionResolvedMsg is sent when the session resolver completed, either
// at startup or after a mutation that re-resolves the profile.
type sessionResolvedMsg struct {
	snap session.Snapshot
}

// loginResultMsg carries the outcome of a password login.
type loginResultMsg struct {
	grant  *api.SessionGrant
	errMsg string
}

// signupResultMsg carries the outcome of account creation.
type signupResultMsg struct {
	grant  *api.SessionGrant
	errMsg string
}

// googleResultMsg carries the outcome of the browser sign-in round trip.
// The token was already persisted and resolved by the time this arrives.
type googleResultMsg struct {
	snap   session.Snapshot
	errMsg string
}

// navigateMsg asks the app to switch screens (subject to the route guard).
type navigateMsg struct {
	screen authflow.Screen
}

// logoutMsg asks the app to clear the session.
type logoutMsg struct{}

// otpRequestedMsg carries the outcome of RequestCode.
type otpRequestedMsg struct {
	res authflow.Result
}

// otpVerifiedMsg carries the outcome of VerifyCode. On success the session
// was already re-resolved.
type otpVerifiedMsg struct {
	res authflow.Result
}

// numberUpdatedMsg carries the outcome of UpdateNumber. On success the
// session was already re-resolved.
type numberUpdatedMsg struct {
	res authflow.Result
}

// numberRemovedMsg carries the outcome of RemoveNumber.
type numberRemovedMsg struct {
	res authflow.Result
}

// threadsLoadedMsg delivers the conversation list to the inbox page.
type threadsLoadedMsg struct {
	threads []api.Thread
	errMsg  string
}

// messagesLoadedMsg delivers one thread's history to the inbox page.
type messagesLoadedMsg struct {
	threadID string
	messages []api.Message
	errMsg   string
}

// messageSentMsg reports the composer's send outcome.
type messageSentMsg struct {
	threadID string
	errMsg   string
}

// notesLoadedMsg delivers the shared notes to the inbox page.
type notesLoadedMsg struct {
	notes  []api.Note
	errMsg string
}

// noteSavedMsg reports the outcome of creating a note.
type noteSavedMsg struct {
	errMsg string
}
