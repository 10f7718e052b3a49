package club

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SubmitRequest opens (or reopens) the reader's membership request for a
// joinable club. The insert path races with itself across workers: the unique
// (club, reader) constraint decides the winner and the loser falls back to
// resetting the existing row.
func (s *Service) SubmitRequest(ctx context.Context, slug, readerID, message string) error {
	c, err := s.repo.GetClubBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if c.Visibility == VisibilityPrivate {
		return ErrClubPrivate
	}

	_, err = s.repo.GetActiveMembership(ctx, c.ID, readerID)
	switch {
	case err == nil:
		return ErrAlreadyMember
	case errors.Is(err, ErrMemberNotFound):
	default:
		return err
	}

	message = strings.TrimSpace(message)
	if len(message) > maxMessageLength {
		return fmt.Errorf("%w: message is at most %d characters", ErrValidation, maxMessageLength)
	}

	now := time.Now().UTC()
	err = s.repo.CreateRequest(ctx, &MembershipRequest{
		ID:          uuid.NewString(),
		ClubID:      c.ID,
		ReaderID:    readerID,
		Message:     message,
		Status:      RequestOpen,
		RequestedAt: now,
	})
	if errors.Is(err, ErrDuplicateRequest) {
		err = s.repo.ResetRequest(ctx, c.ID, readerID, message, now)
	}
	if err != nil {
		return err
	}

	return s.notifier.MembershipRequested(ctx, readerID, c.ID)
}

// ListRequests returns the club's membership requests newest-first and then
// flips open ones to viewed, so the returned snapshot still shows which were
// new to the reviewing admin.
func (s *Service) ListRequests(ctx context.Context, slug, adminID string) ([]MembershipRequest, error) {
	c, err := s.ResolveAdmin(ctx, slug, adminID)
	if err != nil {
		return nil, err
	}

	requests, err := s.repo.ListRequests(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkRequestsViewed(ctx, c.ID); err != nil {
		return nil, err
	}

	return requests, nil
}

// ApproveRequest accepts the request and grants the membership in one
// transaction. The status flip is a conditional update, so of two concurrent
// approvals exactly one wins and the other observes ErrAlreadyEvaluated.
func (s *Service) ApproveRequest(ctx context.Context, slug, adminID, requestID string, role Role) error {
	if !role.Assignable() {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	c, err := s.ResolveAdmin(ctx, slug, adminID)
	if err != nil {
		return err
	}

	var requesterID string
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		request, err := s.clubRequest(ctx, tx, c.ID, requestID)
		if err != nil {
			return err
		}
		requesterID = request.ReaderID

		now := time.Now().UTC()
		evaluated, err := tx.EvaluateRequest(ctx, requestID, RequestAccepted, adminID, now)
		if err != nil {
			return err
		}
		if !evaluated {
			return ErrAlreadyEvaluated
		}

		return s.grantMembership(ctx, tx, c.ID, request.ReaderID, role, now)
	})
	if err != nil {
		return err
	}

	if err := s.notifier.MembershipAccepted(ctx, adminID, requesterID, c.ID); err != nil {
		return err
	}
	return s.notifier.NewMember(ctx, requesterID, c.ID)
}

// DenyRequest rejects the request. No membership row is ever created or
// touched on this path.
func (s *Service) DenyRequest(ctx context.Context, slug, adminID, requestID string) error {
	c, err := s.ResolveAdmin(ctx, slug, adminID)
	if err != nil {
		return err
	}

	var requesterID string
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		request, err := s.clubRequest(ctx, tx, c.ID, requestID)
		if err != nil {
			return err
		}
		requesterID = request.ReaderID

		evaluated, err := tx.EvaluateRequest(ctx, requestID, RequestRejected, adminID, time.Now().UTC())
		if err != nil {
			return err
		}
		if !evaluated {
			return ErrAlreadyEvaluated
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.notifier.MembershipDeclined(ctx, adminID, requesterID, c.ID)
}

func (s *Service) clubRequest(ctx context.Context, tx Repository, clubID, requestID string) (*MembershipRequest, error) {
	request, err := tx.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.ClubID != clubID {
		return nil, ErrRequestNotFound
	}
	return request, nil
}

// grantMembership creates the membership or reactivates the pair's historical
// row, per the single-row-per-pair model.
func (s *Service) grantMembership(ctx context.Context, tx Repository, clubID, readerID string, role Role, now time.Time) error {
	existing, err := tx.GetMembership(ctx, clubID, readerID)
	switch {
	case errors.Is(err, ErrMemberNotFound):
		return tx.CreateMembership(ctx, &Membership{
			ID:       uuid.NewString(),
			ClubID:   clubID,
			ReaderID: readerID,
			Role:     role,
			JoinedAt: now,
		})
	case err != nil:
		return err
	case existing.LeftAt != nil:
		return tx.ReactivateMembership(ctx, existing.ID, role, now)
	default:
		// Already an active member; nothing to grant.
		return nil
	}
}
