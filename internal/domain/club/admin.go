package club

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ResolveAdmin is the single authorization gate for every administrative
// operation. Missing club, disbanded club, and insufficient role all fail
// the same way.
func (s *Service) ResolveAdmin(ctx context.Context, slug, readerID string) (*Club, error) {
	return s.repo.GetAdminClub(ctx, slug, readerID)
}

func (s *Service) ListMembers(ctx context.Context, slug, adminID string) ([]Membership, error) {
	c, err := s.ResolveAdmin(ctx, slug, adminID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListActiveMembers(ctx, c.ID)
}

// UpdateMemberRole changes a member's role. IsCreator is untouched; the
// creator keeps that flag regardless of role.
func (s *Service) UpdateMemberRole(ctx context.Context, slug, adminID, readerID string, role Role) error {
	if !role.Assignable() {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	c, err := s.ResolveAdmin(ctx, slug, adminID)
	if err != nil {
		return err
	}

	if _, err := s.repo.GetActiveMembership(ctx, c.ID, readerID); err != nil {
		return err
	}

	return s.repo.UpdateMembershipRole(ctx, c.ID, readerID, role)
}

func (s *Service) RemoveMember(ctx context.Context, slug, adminID, readerID string) error {
	c, err := s.ResolveAdmin(ctx, slug, adminID)
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

type PrefsInput struct {
	Description string
	ImageURL    string
	Visibility  Visibility
}

// UpdatePrefs changes a club's description, image, and visibility. Name and
// slug are immutable once set.
func (s *Service) UpdatePrefs(ctx context.Context, slug, adminID string, input PrefsInput) error {
	if !input.Visibility.Valid() {
		return fmt.Errorf("%w: unknown visibility %q", ErrValidation, input.Visibility)
	}

	c, err := s.ResolveAdmin(ctx, slug, adminID)
	if err != nil {
		return err
	}

	return s.repo.UpdateClubPrefs(ctx, c.ID, strings.TrimSpace(input.Description), strings.TrimSpace(input.ImageURL), input.Visibility)
}

// Disband soft-deletes the club. Memberships and requests are retained;
// visibility and authorization checks treat the club as absent from here on.
// There is no un-disband.
func (s *Service) Disband(ctx context.Context, slug, adminID string) error {
	c, err := s.ResolveAdmin(ctx, slug, adminID)
	if err != nil {
		return err
	}
	return s.repo.DisbandClub(ctx, c.ID, time.Now().UTC())
}
