package medicine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("medicine not found")
	ErrNotOwner = errors.New("medicine belongs to another user")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, m *Medicine) error {
	if m.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.Dose < 0 {
		return fmt.Errorf("dose must not be negative")
	}
	return s.repo.Create(ctx, m)
}

// GetOwned returns the medicine after verifying ownership.
func (s *Service) GetOwned(ctx context.Context, id, userID uuid.UUID) (*Medicine, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.UserID != userID {
		return nil, ErrNotOwner
	}
	return m, nil
}

func (s *Service) Update(ctx context.Context, m *Medicine, actorID uuid.UUID) error {
	existing, err := s.GetOwned(ctx, m.ID, actorID)
	if err != nil {
		return err
	}
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.Dose < 0 {
		return fmt.Errorf("dose must not be negative")
	}
	m.UserID = existing.UserID
	return s.repo.Update(ctx, m)
}

func (s *Service) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	if _, err := s.GetOwned(ctx, id, actorID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Medicine, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// Exists reports whether the medicine exists and belongs to the user.
func (s *Service) Exists(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	_, err := s.GetOwned(ctx, id, userID)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotOwner) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
