package reader

import (
	"context"
	"errors"
	"time"

	readerdomain "bookclub-go/internal/domain/reader"

	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, reader *readerdomain.Reader) error {
	err := r.db.WithContext(ctx).Create(reader).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return readerdomain.ErrTaken
	}
	return err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*readerdomain.Reader, error) {
	var result readerdomain.Reader
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, readerdomain.ErrReaderNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*readerdomain.Reader, error) {
	var result readerdomain.Reader
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, readerdomain.ErrReaderNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *PostgresRepository) Deactivate(ctx context.Context, id string, leftAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&readerdomain.Reader{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": false, "left_at": leftAt}).Error
}
