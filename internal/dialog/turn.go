// Package dialog implements the conversation state machine that walks a
// chat through the four mortgage questions and produces the final report.
package dialog

// Command classifies the administrative trigger carried by a turn, if any.
type Command int

const (
	// CommandNone marks a turn whose text is a step answer.
	CommandNone Command = iota
	// CommandStart begins a new calculation, discarding any prior session.
	CommandStart
	// CommandCancel abandons the current calculation.
	CommandCancel
	// CommandHelp asks for usage instructions without touching the session.
	CommandHelp
	// CommandUnknown is a slash command the bot does not recognize.
	CommandUnknown
)

// String returns a stable name for logging and transcripts.
func (c Command) String() string {
	switch c {
	case CommandStart:
		return "start"
	case CommandCancel:
		return "cancel"
	case CommandHelp:
		return "help"
	case CommandUnknown:
		return "unknown"
	default:
		return "none"
	}
}

// Turn is one inbound message from a conversation: the chat it belongs
// to, the raw text, and the command classification done by the channel.
type Turn struct {
	ChatID  int64
	Text    string
	Command Command
}
