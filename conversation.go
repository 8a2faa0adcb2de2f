package agent

import "github.com/relaydev/mcp-chat-client/pkg/llm"

// Conversation is the append-only message history of a single query. Every
// completion round-trip sends a snapshot of the full history; entries are
// never reordered or removed once appended.
type Conversation struct {
	messages []llm.Message
}

// NewConversation starts a history with the system preamble and the user's
// query.
func NewConversation(preamble, query string) *Conversation {
	return &Conversation{messages: []llm.Message{
		llm.SystemMessage(preamble),
		llm.UserMessage(query),
	}}
}

// Append adds a message to the end of the history.
func (c *Conversation) Append(msg llm.Message) {
	c.messages = append(c.messages, msg)
}

// Messages returns a snapshot of the history. The snapshot does not alias
// the conversation's backing slice.
func (c *Conversation) Messages() []llm.Message {
	return append([]llm.Message(nil), c.messages...)
}

// Len reports the number of messages in the history.
func (c *Conversation) Len() int { return len(c.messages) }

// Last returns the most recent message, or a zero Message when empty.
func (c *Conversation) Last() llm.Message {
	if len(c.messages) == 0 {
		return llm.Message{}
	}
	return c.messages[len(c.messages)-1]
}
