package club

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goslug "github.com/gosimple/slug"
)

const (
	maxNameLength    = 100
	maxMessageLength = 2000
)

// Notifier records workflow events. Implemented by the notification service.
// Club-addressed events fan out to the club's current admins at read time.
type Notifier interface {
	MembershipRequested(ctx context.Context, sourceReaderID, clubID string) error
	MembershipAccepted(ctx context.Context, sourceReaderID, targetReaderID, clubID string) error
	MembershipDeclined(ctx context.Context, sourceReaderID, targetReaderID, clubID string) error
	NewMember(ctx context.Context, sourceReaderID, clubID string) error
}

type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

type CreateInput struct {
	Name        string
	Description string
	ImageURL    string
	Visibility  Visibility
}

// Create persists the club and the creator's admin membership in one
// transaction; a club with zero memberships must never be observable.
func (s *Service) Create(ctx context.Context, creatorID string, input CreateInput) (*Club, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" || len(input.Name) > maxNameLength {
		return nil, fmt.Errorf("%w: name is required and at most %d characters", ErrValidation, maxNameLength)
	}
	if !input.Visibility.Valid() {
		return nil, fmt.Errorf("%w: unknown visibility %q", ErrValidation, input.Visibility)
	}

	slug := goslug.Make(input.Name)
	if slug == "" {
		return nil, fmt.Errorf("%w: name does not produce a usable slug", ErrValidation)
	}

	result := &Club{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		ImageURL:    strings.TrimSpace(input.ImageURL),
		Visibility:  input.Visibility,
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.CreateClub(ctx, result); err != nil {
			return err
		}
		return tx.CreateMembership(ctx, &Membership{
			ID:        uuid.NewString(),
			ClubID:    result.ID,
			ReaderID:  creatorID,
			Role:      RoleAdmin,
			IsCreator: true,
			JoinedAt:  time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ResolveForReader applies the visibility gate: a club is visible when it is
// not disbanded and is public, observable, or the reader holds an active
// membership. Private clubs look identical to missing ones for outsiders.
func (s *Service) ResolveForReader(ctx context.Context, slug, readerID string) (*ClubView, error) {
	c, err := s.repo.GetClubBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	view := &ClubView{Club: *c, Role: RoleNone}

	m, err := s.repo.GetActiveMembership(ctx, c.ID, readerID)
	switch {
	case err == nil:
		view.Role = m.Role
	case errors.Is(err, ErrMemberNotFound):
		if c.Visibility == VisibilityPrivate {
			return nil, ErrClubNotFound
		}
	default:
		return nil, err
	}

	if view.Role == RoleNone {
		pending, err := s.repo.HasPendingRequest(ctx, c.ID, readerID)
		if err != nil {
			return nil, err
		}
		view.RequestPending = pending
	}

	return view, nil
}

func (s *Service) HomeClubs(ctx context.Context, readerID string) ([]Club, error) {
	return s.repo.ListClubsByReader(ctx, readerID)
}

// Search matches non-private, non-disbanded clubs by case-insensitive
// substring on the name. Blank input returns nothing.
func (s *Service) Search(ctx context.Context, text string) ([]Club, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []Club{}, nil
	}
	return s.repo.SearchClubs(ctx, text)
}

// Leave ends the reader's own active membership. The creator cannot leave;
// they disband the club instead.
func (s *Service) Leave(ctx context.Context, slug, readerID string) error {
	c, err := s.repo.GetClubBySlug(ctx, slug)
	if err != nil {
		return err
	}

	m, err := s.repo.GetActiveMembership(ctx, c.ID, readerID)
	if err != nil {
		return err
	}
	if m.IsCreator {
		return ErrCannotRemoveCreator
	}

	return s.repo.EndMembership(ctx, c.ID, readerID, time.Now().UTC())
}
