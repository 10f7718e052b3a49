package club

import "time"

type Visibility string

const (
	VisibilityPublic     Visibility = "public"
	VisibilityObservable Visibility = "observable"
	VisibilityPrivate    Visibility = "private"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityObservable, VisibilityPrivate:
		return true
	}
	return false
}

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleParticipant Role = "participant"
	RoleReader      Role = "reader"
	RoleObserver    Role = "observer"

	// RoleNone marks a reader viewing a public or observable club without a
	// membership.
	RoleNone Role = ""
)

func (r Role) Assignable() bool {
	switch r {
	case RoleAdmin, RoleParticipant, RoleReader, RoleObserver:
		return true
	}
	return false
}

// Club is a discussion group. Disbanding is a soft delete: DisbandedAt is set
// and every discovery, home, and admin query treats the club as absent.
// Memberships and requests are retained for history.
type Club struct {
	ID          string     `gorm:"type:uuid;primaryKey"`
	Name        string     `gorm:"size:100;not null;uniqueIndex"`
	Slug        string     `gorm:"size:120;not null;uniqueIndex"`
	Description string     `gorm:"type:text"`
	ImageURL    string     `gorm:"type:text"`
	Visibility  Visibility `gorm:"type:varchar(16);not null;default:'public'"`
	DisbandedAt *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Club) TableName() string {
	return "clubs"
}

// Membership links a reader to a club. The (club, reader) pair is unique; a
// reader who leaves keeps the row with LeftAt set, and rejoining reactivates it
// (LeftAt cleared, JoinedAt refreshed). Exactly one membership per club carries
// IsCreator, set at club creation and never reassigned.
type Membership struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	ClubID    string `gorm:"type:uuid;not null;index;uniqueIndex:uq_memberships_club_reader"`
	ReaderID  string `gorm:"type:uuid;not null;index;uniqueIndex:uq_memberships_club_reader"`
	Role      Role   `gorm:"type:varchar(16);not null"`
	IsCreator bool   `gorm:"not null;default:false"`
	JoinedAt  time.Time
	LeftAt    *time.Time
}

func (Membership) TableName() string {
	return "memberships"
}

type RequestStatus string

const (
	RequestOpen     RequestStatus = "open"
	RequestViewed   RequestStatus = "viewed"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// MembershipRequest is a reader's ask to join a club. One row per
// (club, reader) pair: resubmitting replaces the message and resets the
// status to open instead of inserting a duplicate. Evaluator and Evaluated
// are set only when the request reaches a terminal status.
type MembershipRequest struct {
	ID          string        `gorm:"type:uuid;primaryKey"`
	ClubID      string        `gorm:"type:uuid;not null;index;uniqueIndex:uq_requests_club_reader"`
	ReaderID    string        `gorm:"type:uuid;not null;index;uniqueIndex:uq_requests_club_reader"`
	Message     string        `gorm:"type:text"`
	Status      RequestStatus `gorm:"type:varchar(16);not null;default:'open'"`
	RequestedAt time.Time
	EvaluatorID *string `gorm:"type:uuid"`
	EvaluatedAt *time.Time
}

func (MembershipRequest) TableName() string {
	return "membership_requests"
}

// ClubView is what a reader sees when resolving a club by slug.
type ClubView struct {
	Club           Club
	Role           Role
	RequestPending bool
}
