package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pulseinbox/inbox-cli/internal/api"
)

// inbox page focus targets
const (
	focusThreads = iota
	focusComposer
)

// threadItem adapts an api.Thread to the bubbles list.
type threadItem struct {
	thread api.Thread
}

func (i threadItem) Title() string {
	name := i.thread.ContactName
	if name == "" {
		name = i.thread.ID
	}
	if i.thread.Unread > 0 {
		name = fmt.Sprintf("%s (%d)", name, i.thread.Unread)
	}
	return name
}

func (i threadItem) Description() string {
	desc := i.thread.Snippet
	if i.thread.Channel != "" {
		desc = fmt.Sprintf("[%s] %s", i.thread.Channel, desc)
	}
	return desc
}

func (i threadItem) FilterValue() string {
	return i.thread.ContactName
}

// InboxPageModel is the unified inbox: thread list, message history,
// composer, and the shared notes view.
type InboxPageModel struct {
	deps Deps

	user *api.User

	threads  list.Model
	messages []api.Message
	threadID string
	composer textarea.Model
	focus    int

	notesMode bool
	notes     []api.Note
	noteInput textarea.Model

	editMode   bool
	editNumber textinput.Model

	err    string
	status string

	width  int
	height int
}

// NewInboxPage creates the inbox screen.
func NewInboxPage(deps Deps) InboxPageModel {
	threads := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	threads.Title = "Threads"
	threads.SetShowHelp(false)

	composer := textarea.New()
	composer.Placeholder = "Type a message..."
	composer.SetHeight(3)

	noteInput := textarea.New()
	noteInput.Placeholder = "Write a note..."
	noteInput.SetHeight(3)

	editNumber := textinput.New()
	editNumber.Placeholder = "+15551234567"
	editNumber.Width = 40

	return InboxPageModel{
		deps:       deps,
		threads:    threads,
		composer:   composer,
		noteInput:  noteInput,
		editNumber: editNumber,
	}
}

// Init loads the thread list.
func (m InboxPageModel) Init() tea.Cmd {
	return m.loadThreads()
}

// SetSize stores the window dimensions and resizes the panes.
func (m *InboxPageModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	listWidth := width / 3
	if listWidth < 24 {
		listWidth = 24
	}
	listHeight := height - 8
	if listHeight < 4 {
		listHeight = 4
	}
	m.threads.SetSize(listWidth, listHeight)
	m.composer.SetWidth(width - listWidth - 6)
	m.noteInput.SetWidth(width - 8)
}

// SetUser stores the profile shown in the header.
func (m *InboxPageModel) SetUser(user *api.User) {
	m.user = user
}

func (m InboxPageModel) loadThreads() tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		threads, err := deps.Inbox.Threads(context.Background())
		if err != nil {
			return threadsLoadedMsg{errMsg: api.FailureMessage(err, "Failed to load threads.")}
		}
		return threadsLoadedMsg{threads: threads}
	}
}

func (m InboxPageModel) loadMessages(threadID string) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		messages, err := deps.Inbox.Messages(context.Background(), threadID)
		if err != nil {
			return messagesLoadedMsg{threadID: threadID, errMsg: api.FailureMessage(err, "Failed to load messages.")}
		}
		return messagesLoadedMsg{threadID: threadID, messages: messages}
	}
}

func (m InboxPageModel) sendMessage() (InboxPageModel, tea.Cmd) {
	body := strings.TrimSpace(m.composer.Value())
	if body == "" || m.threadID == "" {
		return m, nil
	}
	m.err = ""
	m.status = "Sending..."
	deps := m.deps
	threadID := m.threadID
	return m, func() tea.Msg {
		_, err := deps.Inbox.Send(context.Background(), api.SendMessageParams{
			ThreadID: threadID,
			Body:     body,
		})
		if err != nil {
			return messageSentMsg{threadID: threadID, errMsg: api.FailureMessage(err, "Failed to send message.")}
		}
		return messageSentMsg{threadID: threadID}
	}
}

func (m InboxPageModel) loadNotes() tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		notes, err := deps.Inbox.Notes(context.Background())
		if err != nil {
			return notesLoadedMsg{errMsg: api.FailureMessage(err, "Failed to load notes.")}
		}
		return notesLoadedMsg{notes: notes}
	}
}

func (m InboxPageModel) saveNote() (InboxPageModel, tea.Cmd) {
	content := strings.TrimSpace(m.noteInput.Value())
	if content == "" {
		return m, nil
	}
	m.err = ""
	deps := m.deps
	return m, func() tea.Msg {
		if _, err := deps.Inbox.SaveNote(context.Background(), content); err != nil {
			return noteSavedMsg{errMsg: api.FailureMessage(err, "Failed to save note.")}
		}
		return noteSavedMsg{}
	}
}

func (m InboxPageModel) updateNumber() (InboxPageModel, tea.Cmd) {
	number := strings.TrimSpace(m.editNumber.Value())
	m.err = ""
	m.status = "Updating number..."
	deps := m.deps
	return m, func() tea.Msg {
		res := deps.OTP.UpdateNumber(context.Background(), number, nil)
		return numberUpdatedMsg{res: res}
	}
}

func (m InboxPageModel) removeNumber() (InboxPageModel, tea.Cmd) {
	m.err = ""
	m.status = "Removing number..."
	deps := m.deps
	return m, func() tea.Msg {
		res := deps.OTP.RemoveNumber(context.Background())
		return numberRemovedMsg{res: res}
	}
}

// Update handles messages for the inbox screen.
func (m InboxPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case threadsLoadedMsg:
		if msg.errMsg != "" {
			m.err = msg.errMsg
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.threads))
		for _, t := range msg.threads {
			items = append(items, threadItem{thread: t})
		}
		m.err = ""
		return m, m.threads.SetItems(items)

	case messagesLoadedMsg:
		if msg.errMsg != "" {
			m.err = msg.errMsg
			return m, nil
		}
		m.err = ""
		m.threadID = msg.threadID
		m.messages = msg.messages
		return m, nil

	case messageSentMsg:
		if msg.errMsg != "" {
			m.err = msg.errMsg
			m.status = ""
			return m, nil
		}
		m.status = "Message sent."
		m.composer.Reset()
		return m, tea.Batch(m.loadMessages(msg.threadID), m.loadThreads())

	case notesLoadedMsg:
		if msg.errMsg != "" {
			m.err = msg.errMsg
			return m, nil
		}
		m.err = ""
		m.notes = msg.notes
		return m, nil

	case noteSavedMsg:
		if msg.errMsg != "" {
			m.err = msg.errMsg
			return m, nil
		}
		m.noteInput.Reset()
		return m, m.loadNotes()

	case numberUpdatedMsg:
		m.status = ""
		if !msg.res.OK {
			m.err = msg.res.Message
			return m, nil
		}
		m.editMode = false
		m.editNumber.Blur()
		m.err = ""
		m.status = msg.res.Message
		return m, nil

	case numberRemovedMsg:
		m.status = ""
		if msg.res.Message != "" {
			m.status = msg.res.Message
		}
		if !msg.res.OK {
			m.err = msg.res.Message
		}
		return m, nil

	case tea.KeyMsg:
		if m.editMode {
			switch msg.String() {
			case "enter":
				return m.updateNumber()
			case "esc":
				m.editMode = false
				m.editNumber.Blur()
				m.err = ""
				return m, nil
			}
			var cmd tea.Cmd
			m.editNumber, cmd = m.editNumber.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+l":
			return m, func() tea.Msg { return logoutMsg{} }
		case "ctrl+d":
			if m.user != nil && m.user.IsTwilioVerified && m.user.TwilioNumber != "" {
				return m.removeNumber()
			}
			return m, nil
		case "ctrl+e":
			if m.user != nil && m.user.IsTwilioVerified && m.user.TwilioNumber != "" {
				m.editMode = true
				m.editNumber.SetValue(m.user.TwilioNumber)
				m.err = ""
				return m, m.editNumber.Focus()
			}
			return m, nil
		case "ctrl+o":
			m.notesMode = !m.notesMode
			if m.notesMode {
				m.noteInput.Focus()
				return m, m.loadNotes()
			}
			m.noteInput.Blur()
			return m, nil
		}

		if m.notesMode {
			if msg.String() == "ctrl+s" {
				return m.saveNote()
			}
			var cmd tea.Cmd
			m.noteInput, cmd = m.noteInput.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "tab":
			if m.focus == focusThreads {
				m.focus = focusComposer
				m.composer.Focus()
			} else {
				m.focus = focusThreads
				m.composer.Blur()
			}
			return m, nil
		case "ctrl+s":
			return m.sendMessage()
		}

		if m.focus == focusThreads {
			switch msg.String() {
			case "enter":
				if item, ok := m.threads.SelectedItem().(threadItem); ok {
					return m, m.loadMessages(item.thread.ID)
				}
				return m, nil
			case "r":
				return m, m.loadThreads()
			}
			var cmd tea.Cmd
			m.threads, cmd = m.threads.Update(msg)
			return m, cmd
		}

		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m InboxPageModel) header() string {
	if m.user == nil {
		return ""
	}
	who := m.user.Name
	if who == "" {
		who = m.user.Email
	}
	parts := []string{headerStyle.Render(who)}
	if m.user.IsTwilioVerified && m.user.TwilioNumber != "" {
		parts = append(parts, statusMessageStyle(m.user.TwilioNumber))
	}
	return strings.Join(parts, "  ")
}

func (m InboxPageModel) renderMessages() string {
	if m.threadID == "" {
		return hintStyle("Select a thread and press enter to load messages.")
	}
	if len(m.messages) == 0 {
		return hintStyle("No messages in this thread yet.")
	}
	var sb strings.Builder
	for _, msg := range m.messages {
		line := fmt.Sprintf("%s  %s", msg.CreatedAt, msg.Body)
		if msg.Direction == api.DirectionOutbound {
			sb.WriteString(outboundStyle.Render("> " + line))
		} else {
			sb.WriteString(inboundStyle.Render("< " + line))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m InboxPageModel) renderNotes() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Notes"))
	sb.WriteString("\n\n")
	if len(m.notes) == 0 {
		sb.WriteString(hintStyle("No notes yet."))
		sb.WriteString("\n")
	}
	for _, note := range m.notes {
		sb.WriteString(headerStyle.Render(note.Author.Name))
		sb.WriteString(hintStyle("  " + note.CreatedAt))
		sb.WriteString("\n")
		sb.WriteString(note.Content)
		sb.WriteString("\n\n")
	}
	sb.WriteString(m.noteInput.View())
	sb.WriteString("\n")
	sb.WriteString(hintStyle("(ctrl+s) Save note | (ctrl+o) Back to inbox | (ctrl+l) Logout"))
	return sb.String()
}

// View renders the inbox screen.
func (m InboxPageModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.header())
	sb.WriteString("\n\n")

	if m.editMode {
		sb.WriteString(titleStyle.Render("Update Twilio Number"))
		sb.WriteString("\n\n")
		sb.WriteString(labelStyle.Render("Twilio Number (e.g., +1234567890)"))
		sb.WriteString("\n")
		sb.WriteString(m.editNumber.View())
		sb.WriteString("\n\n")
		if m.err != "" {
			sb.WriteString(errorMessageStyle(m.err))
			sb.WriteString("\n")
		} else if m.status != "" {
			sb.WriteString(statusMessageStyle(m.status))
			sb.WriteString("\n")
		}
		sb.WriteString(hintStyle("(enter) Update number | (esc) Cancel | (ctrl+c) Quit"))
		return docStyle.Render(sb.String())
	}

	if m.notesMode {
		sb.WriteString(m.renderNotes())
		return docStyle.Render(sb.String())
	}

	left := m.threads.View()
	right := m.renderMessages() + "\n" + m.composer.View()
	sb.WriteString(joinColumns(left, right, m.threads.Width()))
	sb.WriteString("\n")

	if m.err != "" {
		sb.WriteString(errorMessageStyle(m.err))
		sb.WriteString("\n")
	} else if m.status != "" {
		sb.WriteString(statusMessageStyle(m.status))
		sb.WriteString("\n")
	}

	sb.WriteString(hintStyle("(tab) Switch pane | (enter) Open thread | (r) Refresh | (ctrl+s) Send | (ctrl+o) Notes | (ctrl+e) Edit number | (ctrl+d) Remove number | (ctrl+l) Logout | (ctrl+c) Quit"))
	return docStyle.Render(sb.String())
}

// joinColumns lays the two panes side by side.
func joinColumns(left, right string, leftWidth int) string {
	leftLines := strings.Split(left, "\n")
	rightLines := strings.Split(right, "\n")
	n := len(leftLines)
	if len(rightLines) > n {
		n = len(rightLines)
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		var l, r string
		if i < len(leftLines) {
			l = leftLines[i]
		}
		if i < len(rightLines) {
			r = rightLines[i]
		}
		sb.WriteString(padRight(l, leftWidth+2))
		sb.WriteString(r)
		if i < n-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
