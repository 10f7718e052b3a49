package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Emit records a notification. target and clubID may be empty depending on
// the addressing mode.
func (s *Service) Emit(ctx context.Context, t Type, sourceReaderID, targetReaderID, clubID string) (*Notification, error) {
	result := &Notification{
		ID:             uuid.NewString(),
		SourceReaderID: sourceReaderID,
		Type:           t,
		GeneratedAt:    time.Now().UTC(),
	}
	if targetReaderID != "" {
		result.TargetReaderID = &targetReaderID
	}
	if clubID != "" {
		result.ClubID = &clubID
	}

	if err := s.repo.Create(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Registered implements reader.Notifier: a welcome notification addressed to
// the new reader themselves.
func (s *Service) Registered(ctx context.Context, readerID string) error {
	_, err := s.Emit(ctx, TypeRegistered, readerID, readerID, "")
	return err
}

// MembershipRequested fans out to the club's admins.
func (s *Service) MembershipRequested(ctx context.Context, sourceReaderID, clubID string) error {
	_, err := s.Emit(ctx, TypeMembershipRequested, sourceReaderID, "", clubID)
	return err
}

// MembershipAccepted is addressed to the accepted reader. The club is also
// recorded, so the club's admins see the outcome in their feeds.
func (s *Service) MembershipAccepted(ctx context.Context, sourceReaderID, targetReaderID, clubID string) error {
	_, err := s.Emit(ctx, TypeMembershipAccepted, sourceReaderID, targetReaderID, clubID)
	return err
}

func (s *Service) MembershipDeclined(ctx context.Context, sourceReaderID, targetReaderID, clubID string) error {
	_, err := s.Emit(ctx, TypeMembershipDeclined, sourceReaderID, targetReaderID, clubID)
	return err
}

// NewMember fans out to the club's admins; the source is the member who
// just joined.
func (s *Service) NewMember(ctx context.Context, sourceReaderID, clubID string) error {
	_, err := s.Emit(ctx, TypeNewMember, sourceReaderID, "", clubID)
	return err
}

func (s *Service) ListFor(ctx context.Context, readerID string) ([]Item, error) {
	return s.repo.ListFor(ctx, readerID)
}

// ToggleViewed flips the reader's read state on a notification. Other
// recipients' receipts are untouched.
func (s *Service) ToggleViewed(ctx context.Context, notificationID, readerID string) error {
	if _, err := s.repo.Get(ctx, notificationID); err != nil {
		return err
	}

	viewed, err := s.repo.HasReceipt(ctx, notificationID, readerID)
	if err != nil {
		return err
	}
	if viewed {
		return s.repo.RemoveReceipt(ctx, notificationID, readerID)
	}
	return s.repo.AddReceipt(ctx, notificationID, readerID, time.Now().UTC())
}

// FollowLink marks the notification viewed for the reader (idempotently) and
// returns its action link for the caller to redirect to.
func (s *Service) FollowLink(ctx context.Context, notificationID, readerID string) (string, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return "", err
	}

	if err := s.repo.AddReceipt(ctx, notificationID, readerID, time.Now().UTC()); err != nil {
		return "", err
	}

	return n.ActionLink, nil
}
