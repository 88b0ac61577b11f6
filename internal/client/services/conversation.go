package services

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/barbot/internal/client/models"
	"github.com/dmitrijs2005/barbot/internal/logging"
)

// ApologyPayload is stored as the assistant turn when a chat call fails.
const ApologyPayload = `{"response": "Sorry, I encountered an error. Please try again later."}`

// Chatter is the chat half of client.Client.
type Chatter interface {
	Chat(ctx context.Context, messages []models.Message) (json.RawMessage, error)
}

// ConversationService drives the message log for one chat session.
//
// Send appends the user turn, calls the backend with the whole log and
// appends the assistant turn. Stored assistant content is the raw payload;
// classification happens when a turn is rendered. Failures never reach the
// caller; they become an apology turn.
type ConversationService interface {
	// Send reports whether text was accepted. Blank text and calls made while
	// another Send is in flight are rejected without touching the log.
	Send(ctx context.Context, text string) bool
	Messages() []models.Message
	Busy() bool
	// OnAppend registers fn to run after every append, in append order.
	OnAppend(fn func(models.Message))
}

type conversationService struct {
	api    Chatter
	log    *models.MessageLog
	logger logging.Logger

	inFlight atomic.Bool

	mu        sync.Mutex
	listeners []func(models.Message)
}

// NewConversationService builds a conversation over an empty log.
func NewConversationService(api Chatter, logger logging.Logger) ConversationService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &conversationService{api: api, log: models.NewMessageLog(), logger: logger}
}

func (c *conversationService) Send(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		c.logger.Debug(ctx, "send rejected, a request is in flight")
		return false
	}
	defer c.inFlight.Store(false)

	c.append(models.Message{Role: models.RoleUser, Content: text})

	payload, err := c.api.Chat(ctx, c.log.Snapshot())
	if err != nil {
		c.logger.Warn(ctx, "chat call failed", "error", err)
		c.append(models.Message{Role: models.RoleAssistant, Content: ApologyPayload})
		return true
	}

	c.append(models.Message{Role: models.RoleAssistant, Content: storedContent(payload)})
	return true
}

func (c *conversationService) Messages() []models.Message {
	return c.log.Snapshot()
}

func (c *conversationService) Busy() bool {
	return c.inFlight.Load()
}

func (c *conversationService) OnAppend(fn func(models.Message)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *conversationService) append(m models.Message) {
	c.log.Append(m)

	c.mu.Lock()
	listeners := append([]func(models.Message){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(m)
	}
}

// storedContent serializes payload the way it is kept in the log: JSON is
// indented by two spaces, a bare string is put back into a response envelope
// so it reads as a plain answer, and anything else is kept verbatim.
func storedContent(payload json.RawMessage) string {
	trimmed := bytes.TrimSpace(payload)

	var s string
	if len(trimmed) > 0 && trimmed[0] == '"' && json.Unmarshal(trimmed, &s) == nil {
		wrapped, err := json.MarshalIndent(map[string]string{"response": s}, "", "  ")
		if err == nil {
			return string(wrapped)
		}
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return string(payload)
	}
	return buf.String()
}
