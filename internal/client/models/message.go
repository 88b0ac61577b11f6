// Package models defines client-side data models used by the barbot CLI.
package models

import "sync"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DisplayName returns the label shown above a chat bubble.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Barbot"
	default:
		return string(r)
	}
}

// Message is a single conversation turn. It is a value type and is never
// modified after it has been appended to a MessageLog.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// MessageLog is the append-only, ordered record of a conversation.
// Turns are kept in append order and are never reordered or edited.
// The log lives for the lifetime of the process; there is no Clear.
//
// MessageLog is safe for concurrent use.
type MessageLog struct {
	mu       sync.RWMutex
	messages []Message
}

// NewMessageLog returns an empty log.
func NewMessageLog() *MessageLog {
	return &MessageLog{}
}

// Append adds m to the end of the log and returns the new length.
func (l *MessageLog) Append(m Message) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, m)
	return len(l.messages)
}

// Len returns the number of turns in the log.
func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Snapshot returns a copy of all turns in order. Callers may modify the
// returned slice freely.
func (l *MessageLog) Snapshot() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Last returns the most recent turn, if any.
func (l *MessageLog) Last() (Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.messages) == 0 {
		return Message{}, false
	}
	return l.messages[len(l.messages)-1], true
}
