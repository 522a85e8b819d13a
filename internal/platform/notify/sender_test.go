package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestRouter_RoutesByKind(t *testing.T) {
	tg := &MockSender{}
	po := &MockSender{}
	r := NewRouter()
	r.Register(KindTelegram, tg)
	r.Register(KindPushover, po)

	id := uuid.New()
	err := r.Send(context.Background(), Channel{Kind: KindTelegram, Address: "42"}, "hi", id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tg.Calls()) != 1 {
		t.Errorf("expected 1 telegram call, got %d", len(tg.Calls()))
	}
	if len(po.Calls()) != 0 {
		t.Errorf("expected 0 pushover calls, got %d", len(po.Calls()))
	}
	if got := tg.Calls()[0]; got.CorrelationID != id || got.Text != "hi" {
		t.Errorf("unexpected call %+v", got)
	}
}

func TestRouter_UnknownKind(t *testing.T) {
	r := NewRouter()
	err := r.Send(context.Background(), Channel{Kind: "smoke-signal", Address: "x"}, "hi", uuid.New())
	if !errors.Is(err, ErrUnknownChannelKind) {
		t.Errorf("expected ErrUnknownChannelKind, got %v", err)
	}
}

func TestRouter_EmptyAddress(t *testing.T) {
	r := NewRouter()
	r.Register(KindTelegram, &MockSender{})
	err := r.Send(context.Background(), Channel{Kind: KindTelegram}, "hi", uuid.New())
	if !errors.Is(err, ErrEmptyAddress) {
		t.Errorf("expected ErrEmptyAddress, got %v", err)
	}
}

func TestMockSender_Failure(t *testing.T) {
	m := &MockSender{ShouldFail: true, FailError: "down"}
	err := m.Send(context.Background(), Channel{Kind: KindPushover, Address: "k"}, "hi", uuid.New())
	if err == nil || err.Error() != "down" {
		t.Errorf("expected failure 'down', got %v", err)
	}
	if len(m.Calls()) != 1 {
		t.Errorf("failed send should still be recorded")
	}
}

func TestParseCommand_Message(t *testing.T) {
	id := uuid.New()
	cmd, err := ParseCommand("/taken " + id.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Action != "taken" || cmd.IntakeID != id {
		t.Errorf("unexpected command %+v", cmd)
	}
}

func TestParseCommand_SkipWithReason(t *testing.T) {
	id := uuid.New()
	cmd, err := ParseCommand("/skip " + id.String() + " felt nauseous")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Action != "skip" || cmd.Reason != "felt nauseous" {
		t.Errorf("unexpected command %+v", cmd)
	}
}

func TestParseCommand_Callback(t *testing.T) {
	id := uuid.New()
	cmd, err := ParseCommand("skip:" + id.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Action != "skip" || cmd.IntakeID != id {
		t.Errorf("unexpected command %+v", cmd)
	}
}

func TestParseCommand_Garbage(t *testing.T) {
	for _, text := range []string{"", "hello", "/taken", "/taken not-a-uuid", "/eat " + uuid.New().String(), "poke:" + uuid.New().String()} {
		if _, err := ParseCommand(text); err == nil {
			t.Errorf("expected error for %q", text)
		}
	}
}
