package notification

import "time"

type Type string

const (
	TypeRegistered          Type = "registered"
	TypeInvited             Type = "invited"
	TypeMembershipRequested Type = "membership_requested"
	TypeMembershipDeclined  Type = "membership_declined"
	TypeMembershipAccepted  Type = "membership_accepted"
	TypeNewMember           Type = "new_member"
)

// Notification is an immutable record of a workflow event. Addressing is
// either direct (TargetReaderID set) or club fan-out (ClubID set, no target):
// fan-out recipients are the club's current admins, resolved at read time, so
// a reader promoted to admin later sees older club notifications and a
// demoted one stops seeing them.
type Notification struct {
	ID             string  `gorm:"type:uuid;primaryKey"`
	SourceReaderID string  `gorm:"type:uuid;not null"`
	TargetReaderID *string `gorm:"type:uuid;index"`
	ClubID         *string `gorm:"type:uuid;index"`
	Type           Type    `gorm:"type:varchar(32);not null"`
	ActionLink     string  `gorm:"type:text"`
	GeneratedAt    time.Time
}

func (Notification) TableName() string {
	return "notifications"
}

// Receipt marks that one reader viewed one notification. Read state is
// per-reader; receipts on shared fan-out notifications are independent.
type Receipt struct {
	NotificationID string `gorm:"type:uuid;primaryKey"`
	ReaderID       string `gorm:"type:uuid;primaryKey;index"`
	ViewedAt       time.Time
}

func (Receipt) TableName() string {
	return "notification_receipts"
}

// Item is a notification as one reader sees it.
type Item struct {
	Notification
	Viewed bool
}
