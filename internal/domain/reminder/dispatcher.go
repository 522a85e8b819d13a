package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medtrack/medtrack/internal/platform/notify"
)

const (
	// DefaultLookahead bounds how far ahead of the poll instant an intake may
	// be and still get a reminder.
	DefaultLookahead = 10 * time.Minute

	// DefaultSendTimeout caps a single delivery attempt so one slow channel
	// cannot stall the whole poll cycle.
	DefaultSendTimeout = 10 * time.Second
)

// ChannelResolver picks the delivery channel for a user. ok is false when the
// user has no channel configured.
type ChannelResolver interface {
	ChannelForUser(ctx context.Context, id uuid.UUID) (notify.Channel, bool, error)
}

// Dispatcher polls for scheduled intakes inside the lookahead window and
// pushes one reminder per intake. Delivery is at-least-once: nothing marks an
// intake as reminded, so an intake still scheduled on the next poll is
// offered again. Failures are logged per item and never abort the cycle.
type Dispatcher struct {
	due         DueLister
	channels    ChannelResolver
	sender      notify.Sender
	logger      zerolog.Logger
	lookahead   time.Duration
	sendTimeout time.Duration

	clock func() time.Time
}

func NewDispatcher(due DueLister, channels ChannelResolver, sender notify.Sender, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		due:         due,
		channels:    channels,
		sender:      sender,
		logger:      logger.With().Str("job", "reminder-dispatch").Logger(),
		lookahead:   DefaultLookahead,
		sendTimeout: DefaultSendTimeout,
		clock:       time.Now,
	}
}

// WithLookahead overrides the reminder window.
func (d *Dispatcher) WithLookahead(w time.Duration) *Dispatcher {
	d.lookahead = w
	return d
}

// WithSendTimeout overrides the per-delivery timeout.
func (d *Dispatcher) WithSendTimeout(t time.Duration) *Dispatcher {
	d.sendTimeout = t
	return d
}

func (d *Dispatcher) Name() string { return "reminder-dispatch" }

func (d *Dispatcher) Run(ctx context.Context) error {
	now := d.clock().UTC()
	due, err := d.due.ListDue(ctx, now, now.Add(d.lookahead))
	if err != nil {
		return fmt.Errorf("list due intakes: %w", err)
	}
	for _, item := range due {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.dispatch(ctx, item)
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, item *DueIntake) {
	ch, ok, err := d.channels.ChannelForUser(ctx, item.UserID)
	if err != nil {
		d.logger.Error().Err(err).
			Str("intake_id", item.IntakeID.String()).
			Str("user_id", item.UserID.String()).
			Msg("resolve notification channel")
		return
	}
	if !ok {
		return
	}

	text := fmt.Sprintf("Time to take %s (%s) at %s",
		item.MedicineName, item.CourseName, item.ScheduledTime.UTC().Format("15:04"))

	cctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()
	if err := d.sender.Send(cctx, ch, text, item.IntakeID); err != nil {
		d.logger.Error().Err(err).
			Str("intake_id", item.IntakeID.String()).
			Str("channel", string(ch.Kind)).
			Msg("send reminder")
		return
	}
	d.logger.Debug().
		Str("intake_id", item.IntakeID.String()).
		Str("channel", string(ch.Kind)).
		Msg("reminder sent")
}
