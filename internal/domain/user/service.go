package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medtrack/medtrack/internal/platform/notify"
	"github.com/medtrack/medtrack/internal/platform/timezone"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type Service struct {
	repo  Repository
	zones *timezone.Resolver
}

func NewService(repo Repository, zones *timezone.Resolver) *Service {
	return &Service{repo: repo, zones: zones}
}

func (s *Service) Create(ctx context.Context, u *User) error {
	if err := s.validate(u); err != nil {
		return err
	}
	if existing, err := s.repo.GetByEmail(ctx, u.Email); err == nil && existing != nil {
		return ErrEmailTaken
	}
	return s.repo.Create(ctx, u)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, u *User) error {
	if err := s.validate(u); err != nil {
		return err
	}
	return s.repo.Update(ctx, u)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) validate(u *User) error {
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return fmt.Errorf("valid email is required")
	}
	if u.Name == "" {
		return fmt.Errorf("name is required")
	}
	if u.ZoneID != nil && *u.ZoneID != "" {
		if _, ok := s.zones.Load(*u.ZoneID); !ok {
			return fmt.Errorf("unknown time zone: %s", *u.ZoneID)
		}
	}
	return nil
}

// LocationByID resolves the user's time zone for schedule expansion.
func (s *Service) LocationByID(ctx context.Context, id uuid.UUID) (*time.Location, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Location(s.zones), nil
}

// UserIDByTelegramChat resolves an inbound Telegram chat to the internal
// user id.
func (s *Service) UserIDByTelegramChat(ctx context.Context, chatID int64) (uuid.UUID, error) {
	u, err := s.repo.GetByTelegramChatID(ctx, chatID)
	if err != nil {
		return uuid.Nil, err
	}
	return u.ID, nil
}

// ChannelForUser picks the user's notification channel. Telegram wins over
// Pushover; ok is false when neither is configured.
func (s *Service) ChannelForUser(ctx context.Context, id uuid.UUID) (notify.Channel, bool, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notify.Channel{}, false, err
	}
	if u.TelegramChatID != nil {
		return notify.Channel{Kind: notify.KindTelegram, Address: fmt.Sprintf("%d", *u.TelegramChatID)}, true, nil
	}
	if u.PushoverKey != nil && *u.PushoverKey != "" {
		return notify.Channel{Kind: notify.KindPushover, Address: *u.PushoverKey}, true, nil
	}
	return notify.Channel{}, false, nil
}
