// Package notify delivers intake reminders to users over external push
// channels (Telegram, Pushover) and accepts taken/skipped commands back over
// Telegram.
//
// Delivery is at-least-once: the reminder dispatcher may offer the same
// intake on consecutive polls until its status changes, and there is no
// dedup store. Consumers must treat duplicate reminders as harmless.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ChannelKind identifies the delivery transport of a channel.
type ChannelKind string

const (
	KindTelegram ChannelKind = "telegram"
	KindPushover ChannelKind = "pushover"
)

// Channel is one configured delivery destination: a Telegram chat id or a
// Pushover user key.
type Channel struct {
	Kind    ChannelKind
	Address string
}

// Common errors returned by senders.
var (
	ErrUnknownChannelKind = errors.New("unknown channel kind")
	ErrEmptyAddress       = errors.New("channel address is empty")
)

// Sender delivers one message to one channel. The correlation id is the
// intake id the message refers to; it is echoed in the message so the inbound
// command path can map a reply back to the intake.
type Sender interface {
	Send(ctx context.Context, ch Channel, text string, correlationID uuid.UUID) error
}

// Router fans a Send out to the sender registered for the channel's kind.
type Router struct {
	senders map[ChannelKind]Sender
}

func NewRouter() *Router {
	return &Router{senders: make(map[ChannelKind]Sender)}
}

// Register adds a sender for a channel kind, replacing any previous one.
func (r *Router) Register(kind ChannelKind, s Sender) {
	r.senders[kind] = s
}

// Supports reports whether a sender is registered for the kind.
func (r *Router) Supports(kind ChannelKind) bool {
	_, ok := r.senders[kind]
	return ok
}

func (r *Router) Send(ctx context.Context, ch Channel, text string, correlationID uuid.UUID) error {
	if ch.Address == "" {
		return ErrEmptyAddress
	}
	s, ok := r.senders[ch.Kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChannelKind, ch.Kind)
	}
	return s.Send(ctx, ch, text, correlationID)
}

// SendCall records a single call to MockSender.Send.
type SendCall struct {
	Channel       Channel
	Text          string
	CorrelationID uuid.UUID
}

// MockSender is a test double for Sender.
type MockSender struct {
	mu         sync.Mutex
	calls      []SendCall
	ShouldFail bool
	FailError  string
}

func (m *MockSender) Send(_ context.Context, ch Channel, text string, correlationID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SendCall{Channel: ch, Text: text, CorrelationID: correlationID})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded calls.
func (m *MockSender) Calls() []SendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SendCall, len(m.calls))
	copy(out, m.calls)
	return out
}
