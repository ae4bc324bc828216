package user

import (
	"context"
	"io"
	"sync"

	"reelmate/internal/entity"
	search "reelmate/internal/modules/search/service"
	"reelmate/internal/modules/user/repository"
	"reelmate/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type fakeUserRepository struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*entity.User
	accounts []*entity.Account
	sessions map[string]*entity.Session
	follows  map[[2]uuid.UUID]bool
}

var _ repository.UserRepository = (*fakeUserRepository)(nil)

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		users:    map[uuid.UUID]*entity.User{},
		sessions: map[string]*entity.Session{},
		follows:  map[[2]uuid.UUID]bool{},
	}
}

func (f *fakeUserRepository) addUser(username string) *entity.User {
	u := &entity.User{ID: uuid.New(), Username: &username}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepository) CreateWithAccount(ctx context.Context, user *entity.User, account *entity.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	if account != nil {
		account.UserID = user.ID
		f.accounts = append(f.accounts, account)
	}
	return nil
}

func (f *fakeUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email != nil && *u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Username != nil && *u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeUserRepository) FindAccount(ctx context.Context, userID uuid.UUID, provider string) (*entity.Account, error) {
	for _, a := range f.accounts {
		if a.UserID == userID && a.Provider == provider {
			return a, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeUserRepository) Update(ctx context.Context, user *entity.User) error {
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepository) FindInBatches(ctx context.Context, batchSize int, fn func(users []entity.User) error) error {
	var batch []entity.User
	for _, u := range f.users {
		batch = append(batch, *u)
	}
	return fn(batch)
}

func (f *fakeUserRepository) Follow(ctx context.Context, follower, target *entity.User) error {
	f.follows[[2]uuid.UUID{follower.ID, target.ID}] = true
	return nil
}

func (f *fakeUserRepository) Unfollow(ctx context.Context, follower, target *entity.User) error {
	delete(f.follows, [2]uuid.UUID{follower.ID, target.ID})
	return nil
}

func (f *fakeUserRepository) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	return f.follows[[2]uuid.UUID{followerID, followingID}], nil
}

func (f *fakeUserRepository) CountFollowers(ctx context.Context, user *entity.User) (int64, error) {
	var n int64
	for k := range f.follows {
		if k[1] == user.ID {
			n++
		}
	}
	return n, nil
}

func (f *fakeUserRepository) CountFollowing(ctx context.Context, user *entity.User) (int64, error) {
	var n int64
	for k := range f.follows {
		if k[0] == user.ID {
			n++
		}
	}
	return n, nil
}

func (f *fakeUserRepository) FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for k := range f.follows {
		if k[0] == userID {
			ids = append(ids, k[1])
		}
	}
	return ids, nil
}

func (f *fakeUserRepository) CreateSession(ctx context.Context, session *entity.Session) error {
	f.sessions[session.SessionToken] = session
	return nil
}

func (f *fakeUserRepository) FindSession(ctx context.Context, token string) (*entity.Session, error) {
	if s, ok := f.sessions[token]; ok {
		return s, nil
	}
	return nil, apperror.ErrUnauthorized
}

func (f *fakeUserRepository) DeleteSession(ctx context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

type fakeIndex struct {
	indexed []string
	docs    []search.UserDocument
	err     error
}

var _ search.UserSearchService = (*fakeIndex)(nil)

func (f *fakeIndex) IndexUser(user *entity.User) error {
	f.indexed = append(f.indexed, user.ID.String())
	return nil
}
func (f *fakeIndex) IndexUsers(users []entity.User) error { return nil }
func (f *fakeIndex) DeleteUser(id string) error           { return nil }
func (f *fakeIndex) SearchUsers(query string, limit int) ([]search.UserDocument, error) {
	return f.docs, f.err
}

type fakeStorage struct {
	uploaded []string
	deleted  []string
}

func (f *fakeStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	url := "https://res.cloudinary.com/demo/image/upload/v1/reelmate/" + folder + "/" + fileName
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeStorage) DeleteImage(ctx context.Context, fileURL string) error {
	f.deleted = append(f.deleted, fileURL)
	return nil
}

type fakeActivities struct {
	items []entity.Activity
}

func (f *fakeActivities) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Activity, error) {
	return f.items, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
