package constant

const (
	ChatMessageRoleHuman     = "human"
	ChatMessageRoleAssistant = "assistant"

	DefaultChatTitle = "New Chat"

	// Session titles derived from the first question are clipped to this.
	MaxChatTitleLength = 60
)
