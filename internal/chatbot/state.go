package chatbot

// Context is the engine's short-term memory of what follow-up
// information the last bot message asked for.
type Context int

const (
	ContextNone Context = iota
	ContextAwaitingPhone
	ContextAwaitingTimeSlot
)

func (c Context) String() string {
	switch c {
	case ContextAwaitingPhone:
		return "AWAITING_PHONE"
	case ContextAwaitingTimeSlot:
		return "AWAITING_TIME_SLOT"
	default:
		return "NONE"
	}
}

// Message is one entry of a conversation transcript. Immutable once appended.
type Message struct {
	Text    string `json:"text"`
	FromBot bool   `json:"fromBot"`
}

// State is the running state of one chat-widget session. Each session owns
// its own State; nothing is shared across sessions.
type State struct {
	Transcript []Message `json:"transcript"`
	Pending    Context   `json:"pending"`
	ActiveMenu MenuID    `json:"activeMenu"`
}

// TurnKind discriminates the two ways a user can act on a turn.
type TurnKind int

const (
	TurnFreeText TurnKind = iota + 1
	TurnMenuSelection
)

// Turn is one user action: a free-text submission or a quick-reply click.
type Turn struct {
	Kind     TurnKind
	Text     string
	OptionID string
}

// Result is the engine's answer for one turn.
type Result struct {
	BotText string
	State   State
	// Options are the quick replies to render beneath the bot message.
	Options []Option
	Menu    MenuID
	// ShowServiceMenu tells the UI to swap in the service-catalog menu
	// instead of a fixed one.
	ShowServiceMenu bool
}
