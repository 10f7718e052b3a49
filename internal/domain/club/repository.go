package club

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	CreateClub(ctx context.Context, c *Club) error
	// GetClubBySlug returns ErrClubNotFound for missing or disbanded clubs.
	GetClubBySlug(ctx context.Context, slug string) (*Club, error)
	// GetAdminClub resolves the club only when the reader holds an active
	// admin membership in a non-disbanded club with that slug.
	GetAdminClub(ctx context.Context, slug, readerID string) (*Club, error)
	SearchClubs(ctx context.Context, text string) ([]Club, error)
	ListClubsByReader(ctx context.Context, readerID string) ([]Club, error)
	UpdateClubPrefs(ctx context.Context, clubID, description, imageURL string, visibility Visibility) error
	DisbandClub(ctx context.Context, clubID string, at time.Time) error

	CreateMembership(ctx context.Context, m *Membership) error
	// GetMembership returns the pair's row whether active or left.
	GetMembership(ctx context.Context, clubID, readerID string) (*Membership, error)
	GetActiveMembership(ctx context.Context, clubID, readerID string) (*Membership, error)
	ListActiveMembers(ctx context.Context, clubID string) ([]Membership, error)
	ReactivateMembership(ctx context.Context, membershipID string, role Role, joinedAt time.Time) error
	UpdateMembershipRole(ctx context.Context, clubID, readerID string, role Role) error
	EndMembership(ctx context.Context, clubID, readerID string, at time.Time) error

	// CreateRequest returns ErrDuplicateRequest when the (club, reader) pair
	// already has a row.
	CreateRequest(ctx context.Context, r *MembershipRequest) error
	// ResetRequest reopens the pair's existing row: message replaced, status
	// back to open, evaluator and evaluated cleared.
	ResetRequest(ctx context.Context, clubID, readerID, message string, at time.Time) error
	GetRequest(ctx context.Context, requestID string) (*MembershipRequest, error)
	ListRequests(ctx context.Context, clubID string) ([]MembershipRequest, error)
	MarkRequestsViewed(ctx context.Context, clubID string) error
	HasPendingRequest(ctx context.Context, clubID, readerID string) (bool, error)
	// EvaluateRequest conditionally moves an open or viewed request to a
	// terminal status. Returns false when zero rows matched, i.e. the request
	// was already evaluated by a concurrent admin.
	EvaluateRequest(ctx context.Context, requestID string, status RequestStatus, evaluatorID string, at time.Time) (bool, error)
}
