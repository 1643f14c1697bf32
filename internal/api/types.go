package api

// User is the backend's record of the authenticated principal.
type User struct {
	ID                string             `json:"id"`
	Email             string             `json:"email"`
	Name              string             `json:"name,omitempty"`
	AvatarURL         string             `json:"avatarUrl,omitempty"`
	TwilioNumber      string             `json:"twilioNumber,omitempty"`
	IsTwilioVerified  bool               `json:"isTwilioVerified"`
	TwilioCredentials *TwilioCredentials `json:"twilioCredentials,omitempty"`
	Teams             []string           `json:"teams,omitempty"`
}

// TwilioCredentials are the provider credentials supplied on first-time
// number setup: the account pair plus one "from" address per channel.
type TwilioCredentials struct {
	AccountSID   string `json:"accountSid"`
	AuthToken    string `json:"authToken"`
	SMSFrom      string `json:"smsFrom"`
	WhatsAppFrom string `json:"whatsappFrom"`
}

// Complete reports whether all four provider fields are filled in.
func (c *TwilioCredentials) Complete() bool {
	if c == nil {
		return false
	}
	return c.AccountSID != "" && c.AuthToken != "" && c.SMSFrom != "" && c.WhatsAppFrom != ""
}

// SessionGrant is returned by login and signup: a fresh bearer token plus
// the profile it authenticates.
type SessionGrant struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// SignupParams is the request body for account creation.
type SignupParams struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	TwilioNumber string `json:"twilioNumber,omitempty"`
}

// Thread is one conversation in the unified inbox.
type Thread struct {
	ID          string `json:"id"`
	ContactName string `json:"contactName,omitempty"`
	Snippet     string `json:"snippet,omitempty"`
	Unread      int    `json:"unread,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
	Channel     string `json:"channel,omitempty"`
}

// Message is a single inbound or outbound message within a thread.
type Message struct {
	ID        string   `json:"id"`
	ContactID string   `json:"contactId,omitempty"`
	Direction string   `json:"direction"`
	Body      string   `json:"body,omitempty"`
	Media     []string `json:"media,omitempty"`
	CreatedAt string   `json:"createdAt"`
}

// Message direction values.
const (
	DirectionInbound  = "INBOUND"
	DirectionOutbound = "OUTBOUND"
)

// SendMessageParams is the request body for sending a message.
type SendMessageParams struct {
	ThreadID   string `json:"threadId"`
	Body       string `json:"body"`
	ScheduleAt string `json:"scheduleAt,omitempty"`
	Channel    string `json:"channel,omitempty"`
}

// Note is a shared team note.
type Note struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Author    NoteAuthor `json:"author"`
	CreatedAt string     `json:"createdAt"`
	UpdatedAt string     `json:"updatedAt"`
}

// NoteAuthor identifies who wrote a note.
type NoteAuthor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
