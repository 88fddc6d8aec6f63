package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yamdb/internal/http-api/apperror"
	"yamdb/internal/http-api/models"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// CreatePending inserts a new inactive user and runs deliver in the same
	// transaction; an error from deliver rolls the insert back.
	CreatePending(ctx context.Context, user *models.User, deliver func() error) error
	// IssueCode stores the first code hash of an existing user under the
	// same rollback rule as CreatePending. A code is never replaced; a second
	// call fails with a validation error.
	IssueCode(ctx context.Context, userID int64, codeHash string, deliver func() error) error
	Activate(ctx context.Context, userID int64) error

	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, username string, page Pagination) ([]models.User, int64, error)
	Update(ctx context.Context, userID int64, changes map[string]any) (*models.User, error)
	Delete(ctx context.Context, username string) error
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreatePending(ctx context.Context, user *models.User, deliver func() error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return translateError(err, "user")
		}
		return deliver()
	})
}

func (r *userRepository) IssueCode(ctx context.Context, userID int64, codeHash string, deliver func() error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND confirmation_code = ?", userID, "").
			Update("confirmation_code", codeHash)
		if res.Error != nil {
			return translateError(res.Error, "user")
		}
		if res.RowsAffected == 0 {
			// either the user is gone or a concurrent signup issued first
			var n int64
			if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return translateError(gorm.ErrRecordNotFound, "user")
			}
			return apperror.NewValidation("non_field_errors", "this email and username are already registered")
		}
		return deliver()
	})
}

func (r *userRepository) Activate(ctx context.Context, userID int64) error {
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND is_active = ?", userID, false).
		Update("is_active", true).Error
	return translateError(err, "user")
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error, "user")
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	// return nil on error so a zero-value user is never mistaken for a hit
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "user")
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateError(err, "user")
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err, "user")
	}
	return &user, nil
}

// List returns users ordered by id; a non-empty username matches exactly.
func (r *userRepository) List(ctx context.Context, username string, page Pagination) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := r.db.WithContext(ctx).Model(&models.User{})
	if username != "" {
		query = query.Where("username = ?", username)
	}

	// share the conditions between count and page queries
	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := page.apply(query.Order("id")).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, userID int64, changes map[string]any) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", userID).Error; err != nil {
			return translateError(err, "user")
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&user).Updates(changes).Error; err != nil {
			return translateError(err, "user")
		}
		return translateError(tx.First(&user, "id = ?", userID).Error, "user")
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Delete(ctx context.Context, username string) error {
	res := r.db.WithContext(ctx).Where("username = ?", username).Delete(&models.User{})
	if res.Error != nil {
		return translateError(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "user")
	}
	return nil
}
