package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gregdel/pushover"
)

// pushoverApp is the slice of the Pushover client Send uses.
type pushoverApp interface {
	SendMessage(message *pushover.Message, recipient *pushover.Recipient) (*pushover.Response, error)
}

// PushoverSender delivers reminders through the Pushover push service. The
// channel address is the recipient's Pushover user key.
type PushoverSender struct {
	app pushoverApp
}

func NewPushoverSender(appToken string) *PushoverSender {
	return &PushoverSender{app: pushover.New(appToken)}
}

// Send delivers one message. The Pushover client has no context support and
// no transport timeout of its own, so the call runs in a goroutine and Send
// returns with the context's error once the deadline passes, abandoning the
// in-flight request.
func (s *PushoverSender) Send(ctx context.Context, ch Channel, text string, correlationID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	recipient := pushover.NewRecipient(ch.Address)
	msg := pushover.NewMessageWithTitle(text, "Medication reminder")

	done := make(chan error, 1)
	go func() {
		_, err := s.app.SendMessage(msg, recipient)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send pushover message %s: %w", correlationID, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send pushover message %s: %w", correlationID, ctx.Err())
	}
}
