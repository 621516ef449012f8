package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agroMarket/domain"

	"gorm.io/gorm"
)

const (
	deletedEmailPrefix = "deleted-"
	deletedEmailDomain = "@users.invalid"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		DB: db,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.DB.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	var user domain.User

	err := r.DB.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User

	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// FindNonAdmins lists every farmer and customer for the admin overview.
func (r *UserRepository) FindNonAdmins(ctx context.Context) ([]domain.User, error) {
	var users []domain.User

	err := r.DB.WithContext(ctx).
		Where("role <> ?", domain.RoleAdmin).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}

	return users, nil
}

// DeleteNonAdmin soft deletes a user unless it is an admin. The email is replaced by a
// per-id tombstone so the unique index lets the address register again. It returns the
// number of rows removed so callers can tell a protected or missing id from a deletion.
func (r *UserRepository) DeleteNonAdmin(ctx context.Context, id uint) (int64, error) {
	result := r.DB.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ? AND role <> ?", id, domain.RoleAdmin).
		Updates(map[string]interface{}{
			"email":      gorm.Expr("CONCAT(?, id, ?)", deletedEmailPrefix, deletedEmailDomain),
			"deleted_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete user: %w", result.Error)
	}

	return result.RowsAffected, nil
}
