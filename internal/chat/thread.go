package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"cropwise/internal/errors"
	"cropwise/models"
)

// ErrSendInFlight is returned when a second send is attempted on a thread
// while one is still awaiting its reply. Sends are serialized per thread.
var ErrSendInFlight = errors.New(errors.CodeSendInFlight, "a message is already awaiting its reply")

// fallbackReply substitutes for the assistant turn when the transport fails,
// so the thread is never left with a trailing unanswered user message
const fallbackReply = "Sorry, I could not process your message right now. Please try again."

// Transport performs the remote round-trip for one conversational turn
type Transport func(ctx context.Context, text string) (string, error)

// entry pairs a message with its insertion sequence for stable ordering
type entry struct {
	msg models.ChatMessage
	seq int
}

// Thread is an append-only, time-ordered message log scoped to one context
// (crop chat or per-detection chat). Messages are immutable once appended.
type Thread struct {
	mu        sync.Mutex
	contextID string
	entries   []entry
	nextSeq   int
	inFlight  bool
}

// NewThread creates an empty thread for the given context id
func NewThread(contextID string) *Thread {
	return &Thread{contextID: contextID}
}

// ContextID returns the crop or detection id this thread is scoped to
func (t *Thread) ContextID() string {
	return t.contextID
}

// Append adds a message stamped with the current time
func (t *Thread) Append(role models.MessageRole, text string) models.ChatMessage {
	return t.AppendAt(role, text, time.Now())
}

// AppendAt adds a message with an explicit timestamp, used when loading
// persisted history
func (t *Thread) AppendAt(role models.MessageRole, text string, at time.Time) models.ChatMessage {
	msg := models.NewChatMessage(role, text)
	msg.CreatedAt = at

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry{msg: msg, seq: t.nextSeq})
	t.nextSeq++
	return msg
}

// Messages returns a copy of the log ordered by CreatedAt ascending, ties
// broken by insertion order
func (t *Thread) Messages() []models.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()

	sorted := make([]entry, len(t.entries))
	copy(sorted, t.entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].msg.CreatedAt.Equal(sorted[j].msg.CreatedAt) {
			return sorted[i].seq < sorted[j].seq
		}
		return sorted[i].msg.CreatedAt.Before(sorted[j].msg.CreatedAt)
	})

	out := make([]models.ChatMessage, len(sorted))
	for i, e := range sorted {
		out[i] = e.msg
	}
	return out
}

// Len returns the number of messages in the thread
func (t *Thread) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// SendAndAwaitReply appends the user message immediately, then awaits the
// transport. On success the assistant reply is appended; on failure a
// locally-generated fallback is appended instead and the transport error is
// returned alongside it. Either way the thread gains exactly two messages
// once the call settles.
func (t *Thread) SendAndAwaitReply(ctx context.Context, text string, transport Transport) (models.ChatMessage, error) {
	t.mu.Lock()
	if t.inFlight {
		t.mu.Unlock()
		return models.ChatMessage{}, ErrSendInFlight
	}
	t.inFlight = true
	t.mu.Unlock()

	t.Append(models.RoleUser, text)

	reply, err := transport(ctx, text)

	t.mu.Lock()
	t.inFlight = false
	t.mu.Unlock()

	if err != nil {
		msg := t.Append(models.RoleAssistant, fallbackReply)
		return msg, errors.Wrap(err, "chat round-trip failed")
	}
	return t.Append(models.RoleAssistant, reply), nil
}
