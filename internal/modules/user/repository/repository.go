package repository

import (
	"context"
	"time"

	"reelmate/internal/entity"
	"reelmate/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	CreateWithAccount(ctx context.Context, user *entity.User, account *entity.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindAccount(ctx context.Context, userID uuid.UUID, provider string) (*entity.Account, error)
	Update(ctx context.Context, user *entity.User) error
	FindInBatches(ctx context.Context, batchSize int, fn func(users []entity.User) error) error

	Follow(ctx context.Context, follower, target *entity.User) error
	Unfollow(ctx context.Context, follower, target *entity.User) error
	IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	CountFollowers(ctx context.Context, user *entity.User) (int64, error)
	CountFollowing(ctx context.Context, user *entity.User) (int64, error)
	FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	CreateSession(ctx context.Context, session *entity.Session) error
	FindSession(ctx context.Context, token string) (*entity.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateWithAccount(ctx context.Context, user *entity.User, account *entity.Account) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		if account != nil {
			account.UserID = user.ID
			if err := tx.Create(account).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *userRepository) findOne(ctx context.Context, query string, args ...any) (*entity.User, error) {
	var users []entity.User
	if err := r.db.WithContext(ctx).Where(query, args...).Limit(1).Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperror.ErrNotFound
	}
	return &users[0], nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *userRepository) FindAccount(ctx context.Context, userID uuid.UUID, provider string) (*entity.Account, error) {
	var accounts []entity.Account
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		Limit(1).
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, apperror.ErrNotFound
	}
	return &accounts[0], nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).
		Model(user).
		Select("name", "username", "bio", "image").
		Updates(user).Error
}

func (r *userRepository) FindInBatches(ctx context.Context, batchSize int, fn func(users []entity.User) error) error {
	var batch []entity.User
	return r.db.WithContext(ctx).
		Order("id").
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		}).Error
}

// Follow appends follower to target's followers. The join insert ignores existing edges.
func (r *userRepository) Follow(ctx context.Context, follower, target *entity.User) error {
	return r.db.WithContext(ctx).
		Model(target).
		Association("Followers").
		Append(follower)
}

func (r *userRepository) Unfollow(ctx context.Context, follower, target *entity.User) error {
	return r.db.WithContext(ctx).
		Model(target).
		Association("Followers").
		Delete(follower)
}

func (r *userRepository) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) CountFollowers(ctx context.Context, user *entity.User) (int64, error) {
	return r.countAssociation(ctx, user, "Followers")
}

func (r *userRepository) CountFollowing(ctx context.Context, user *entity.User) (int64, error) {
	return r.countAssociation(ctx, user, "Following")
}

func (r *userRepository) countAssociation(ctx context.Context, user *entity.User, name string) (int64, error) {
	assoc := r.db.WithContext(ctx).Model(user).Association(name)
	if assoc.Error != nil {
		return 0, assoc.Error
	}
	count := assoc.Count()
	return count, assoc.Error
}

func (r *userRepository) FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entity.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	return ids, err
}

func (r *userRepository) CreateSession(ctx context.Context, session *entity.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *userRepository) FindSession(ctx context.Context, token string) (*entity.Session, error) {
	var sessions []entity.Session
	err := r.db.WithContext(ctx).
		Where("session_token = ? AND expires > ?", token, time.Now()).
		Limit(1).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, apperror.ErrUnauthorized
	}
	return &sessions[0], nil
}

func (r *userRepository) DeleteSession(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Where("session_token = ?", token).
		Delete(&entity.Session{}).Error
}
