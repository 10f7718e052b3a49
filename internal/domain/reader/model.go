package reader

import "time"

// Reader is an account holder. Deactivation is a soft delete: LeftAt is set and
// IsActive cleared, the row is never removed.
type Reader struct {
	ID           string     `gorm:"type:uuid;primaryKey"`
	Username     string     `gorm:"size:50;not null;uniqueIndex"`
	Email        string     `gorm:"size:254;not null;uniqueIndex"`
	PasswordHash string     `gorm:"not null"`
	GivenName    string     `gorm:"size:50;not null"`
	MiddleName   *string    `gorm:"size:100"`
	Surname      string     `gorm:"size:50;not null"`
	Suffix       *string    `gorm:"size:15"`
	Title        *string    `gorm:"size:15"`
	IsActive     bool       `gorm:"not null;default:true"`
	JoinedAt     time.Time  `gorm:"autoCreateTime"`
	LeftAt       *time.Time
}

func (Reader) TableName() string {
	return "readers"
}
