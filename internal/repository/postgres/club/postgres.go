package club

import (
	"context"
	"errors"
	"time"

	clubdomain "bookclub-go/internal/domain/club"

	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(clubdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateClub(ctx context.Context, c *clubdomain.Club) error {
	err := r.db.WithContext(ctx).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return clubdomain.ErrDuplicateName
	}
	return err
}

func (r *PostgresRepository) GetClubBySlug(ctx context.Context, slug string) (*clubdomain.Club, error) {
	var result clubdomain.Club
	err := r.db.WithContext(ctx).
		Where("slug = ? AND disbanded_at IS NULL", slug).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, clubdomain.ErrClubNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *PostgresRepository) GetAdminClub(ctx context.Context, slug, readerID string) (*clubdomain.Club, error) {
	var result clubdomain.Club
	err := r.db.WithContext(ctx).
		Table("clubs").
		Select("clubs.*").
		Joins("join memberships on memberships.club_id = clubs.id").
		Where("clubs.slug = ? AND clubs.disbanded_at IS NULL", slug).
		Where("memberships.reader_id = ? AND memberships.role = ? AND memberships.left_at IS NULL", readerID, clubdomain.RoleAdmin).
		Limit(1).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, clubdomain.ErrClubNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *PostgresRepository) SearchClubs(ctx context.Context, text string) ([]clubdomain.Club, error) {
	var results []clubdomain.Club
	err := r.db.WithContext(ctx).
		Where("disbanded_at IS NULL AND visibility <> ?", clubdomain.VisibilityPrivate).
		Where("name ILIKE ?", "%"+text+"%").
		Order("name asc").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *PostgresRepository) ListClubsByReader(ctx context.Context, readerID string) ([]clubdomain.Club, error) {
	var results []clubdomain.Club
	err := r.db.WithContext(ctx).
		Table("clubs").
		Select("clubs.*").
		Joins("join memberships on memberships.club_id = clubs.id").
		Where("memberships.reader_id = ? AND memberships.left_at IS NULL", readerID).
		Where("clubs.disbanded_at IS NULL").
		Order("clubs.name asc").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *PostgresRepository) UpdateClubPrefs(ctx context.Context, clubID, description, imageURL string, visibility clubdomain.Visibility) error {
	return r.db.WithContext(ctx).
		Model(&clubdomain.Club{}).
		Where("id = ?", clubID).
		Updates(map[string]any{
			"description": description,
			"image_url":   imageURL,
			"visibility":  visibility,
		}).Error
}

func (r *PostgresRepository) DisbandClub(ctx context.Context, clubID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&clubdomain.Club{}).
		Where("id = ?", clubID).
		Update("disbanded_at", at).Error
}

func (r *PostgresRepository) CreateMembership(ctx context.Context, m *clubdomain.Membership) error {
	err := r.db.WithContext(ctx).Create(m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return clubdomain.ErrAlreadyMember
	}
	return err
}

func (r *PostgresRepository) GetMembership(ctx context.Context, clubID, readerID string) (*clubdomain.Membership, error) {
	var result clubdomain.Membership
	err := r.db.WithContext(ctx).
		Where("club_id = ? AND reader_id = ?", clubID, readerID).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, clubdomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *PostgresRepository) GetActiveMembership(ctx context.Context, clubID, readerID string) (*clubdomain.Membership, error) {
	var result clubdomain.Membership
	err := r.db.WithContext(ctx).
		Where("club_id = ? AND reader_id = ? AND left_at IS NULL", clubID, readerID).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, clubdomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *PostgresRepository) ListActiveMembers(ctx context.Context, clubID string) ([]clubdomain.Membership, error) {
	var results []clubdomain.Membership
	err := r.db.WithContext(ctx).
		Where("club_id = ? AND left_at IS NULL", clubID).
		Order("joined_at asc").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *PostgresRepository) ReactivateMembership(ctx context.Context, membershipID string, role clubdomain.Role, joinedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&clubdomain.Membership{}).
		Where("id = ?", membershipID).
		Updates(map[string]any{
			"role":      role,
			"joined_at": joinedAt,
			"left_at":   nil,
		}).Error
}

func (r *PostgresRepository) UpdateMembershipRole(ctx context.Context, clubID, readerID string, role clubdomain.Role) error {
	return r.db.WithContext(ctx).
		Model(&clubdomain.Membership{}).
		Where("club_id = ? AND reader_id = ? AND left_at IS NULL", clubID, readerID).
		Update("role", role).Error
}

func (r *PostgresRepository) EndMembership(ctx context.Context, clubID, readerID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&clubdomain.Membership{}).
		Where("club_id = ? AND reader_id = ? AND left_at IS NULL", clubID, readerID).
		Update("left_at", at).Error
}

func (r *PostgresRepository) CreateRequest(ctx context.Context, request *clubdomain.MembershipRequest) error {
	err := r.db.WithContext(ctx).Create(request).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return clubdomain.ErrDuplicateRequest
	}
	return err
}

func (r *PostgresRepository) ResetRequest(ctx context.Context, clubID, readerID, message string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&clubdomain.MembershipRequest{}).
		Where("club_id = ? AND reader_id = ?", clubID, readerID).
		Updates(map[string]any{
			"message":      message,
			"status":       clubdomain.RequestOpen,
			"requested_at": at,
			"evaluator_id": nil,
			"evaluated_at": nil,
		}).Error
}

func (r *PostgresRepository) GetRequest(ctx context.Context, requestID string) (*clubdomain.MembershipRequest, error) {
	var result clubdomain.MembershipRequest
	if err := r.db.WithContext(ctx).Where("id = ?", requestID).First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, clubdomain.ErrRequestNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *PostgresRepository) ListRequests(ctx context.Context, clubID string) ([]clubdomain.MembershipRequest, error) {
	var results []clubdomain.MembershipRequest
	err := r.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Order("requested_at desc").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *PostgresRepository) MarkRequestsViewed(ctx context.Context, clubID string) error {
	return r.db.WithContext(ctx).
		Model(&clubdomain.MembershipRequest{}).
		Where("club_id = ? AND status = ?", clubID, clubdomain.RequestOpen).
		Update("status", clubdomain.RequestViewed).Error
}

func (r *PostgresRepository) HasPendingRequest(ctx context.Context, clubID, readerID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&clubdomain.MembershipRequest{}).
		Where("club_id = ? AND reader_id = ? AND status IN ?", clubID, readerID,
			[]clubdomain.RequestStatus{clubdomain.RequestOpen, clubdomain.RequestViewed}).
		Count(&count).Error
	return count > 0, err
}

// EvaluateRequest is the concurrency guard for approve/deny: the status flip
// only matches rows still open or viewed, so a second evaluator sees zero
// rows affected.
func (r *PostgresRepository) EvaluateRequest(ctx context.Context, requestID string, status clubdomain.RequestStatus, evaluatorID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&clubdomain.MembershipRequest{}).
		Where("id = ? AND status IN ?", requestID,
			[]clubdomain.RequestStatus{clubdomain.RequestOpen, clubdomain.RequestViewed}).
		Updates(map[string]any{
			"status":       status,
			"evaluator_id": evaluatorID,
			"evaluated_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
