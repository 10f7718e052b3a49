package notification

import (
	"context"
	"errors"
	"time"

	clubdomain "bookclub-go/internal/domain/club"
	notificationdomain "bookclub-go/internal/domain/notification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, n *notificationdomain.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*notificationdomain.Notification, error) {
	var result notificationdomain.Notification
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notificationdomain.ErrNotificationNotFound
		}
		return nil, err
	}
	return &result, nil
}

// ListFor resolves fan-out recipients at read time: club notifications are
// visible to whoever holds an active admin membership in that club right now,
// not to whoever was an admin when the notification was written.
func (r *PostgresRepository) ListFor(ctx context.Context, readerID string) ([]notificationdomain.Item, error) {
	adminClubs := r.db.
		Model(&clubdomain.Membership{}).
		Select("club_id").
		Where("reader_id = ? AND role = ? AND left_at IS NULL", readerID, clubdomain.RoleAdmin)

	var rows []notificationdomain.Item
	err := r.db.WithContext(ctx).
		Table("notifications").
		Select("notifications.*, notification_receipts.reader_id IS NOT NULL AS viewed").
		Joins("left join notification_receipts on notification_receipts.notification_id = notifications.id AND notification_receipts.reader_id = ?", readerID).
		Where("notifications.target_reader_id = ? OR notifications.club_id IN (?)", readerID, adminClubs).
		Order("notifications.generated_at desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) HasReceipt(ctx context.Context, notificationID, readerID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&notificationdomain.Receipt{}).
		Where("notification_id = ? AND reader_id = ?", notificationID, readerID).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresRepository) AddReceipt(ctx context.Context, notificationID, readerID string, at time.Time) error {
	receipt := notificationdomain.Receipt{
		NotificationID: notificationID,
		ReaderID:       readerID,
		ViewedAt:       at,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&receipt).Error
}

func (r *PostgresRepository) RemoveReceipt(ctx context.Context, notificationID, readerID string) error {
	return r.db.WithContext(ctx).
		Where("notification_id = ? AND reader_id = ?", notificationID, readerID).
		Delete(&notificationdomain.Receipt{}).Error
}
