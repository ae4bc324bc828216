package user

import (
	"context"
	"errors"
	"strings"
	"testing"

	"reelmate/internal/entity"
	"reelmate/internal/metrics"
	search "reelmate/internal/modules/search/service"
	"reelmate/internal/modules/user/dto"
	"reelmate/pkg/apperror"

	"github.com/google/uuid"
)

func newUserService(repo *fakeUserRepository, index *fakeIndex, store *fakeStorage, acts *fakeActivities) UserService {
	if acts == nil {
		acts = &fakeActivities{}
	}
	return NewUserService(repo, acts, index, store, metrics.Noop{}, quietLogger())
}

func TestUserService_ToggleFollow_Idempotent(t *testing.T) {
	repo := newFakeUserRepository()
	alice := repo.addUser("alice")
	repo.addUser("bob")
	svc := newUserService(repo, &fakeIndex{}, &fakeStorage{}, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := svc.ToggleFollow(ctx, alice.ID, "bob", true)
		if err != nil {
			t.Fatalf("follow returned error: %v", err)
		}
		if !res.Following || res.FollowersCount != 1 {
			t.Errorf("after follow #%d: %+v", i+1, res)
		}
	}

	for i := 0; i < 2; i++ {
		res, err := svc.ToggleFollow(ctx, alice.ID, "bob", false)
		if err != nil {
			t.Fatalf("unfollow returned error: %v", err)
		}
		if res.Following || res.FollowersCount != 0 {
			t.Errorf("after unfollow #%d: %+v", i+1, res)
		}
	}
}

func TestUserService_ToggleFollow_Errors(t *testing.T) {
	repo := newFakeUserRepository()
	alice := repo.addUser("alice")
	svc := newUserService(repo, &fakeIndex{}, &fakeStorage{}, nil)

	if _, err := svc.ToggleFollow(context.Background(), alice.ID, "alice", true); !errors.Is(err, apperror.ErrBadRequest) {
		t.Errorf("self follow: err = %v", err)
	}
	if _, err := svc.ToggleFollow(context.Background(), alice.ID, "ghost", true); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("unknown user: err = %v", err)
	}
}

func TestUserService_Get(t *testing.T) {
	repo := newFakeUserRepository()
	alice := repo.addUser("alice")
	bob := repo.addUser("bob")
	repo.follows[[2]uuid.UUID{alice.ID, bob.ID}] = true

	acts := &fakeActivities{items: []entity.Activity{{ID: uuid.New(), MediaName: "Alien", Status: entity.StatusCompleted}}}
	svc := newUserService(repo, &fakeIndex{}, &fakeStorage{}, acts)
	ctx := context.Background()

	profile, err := svc.Get(ctx, &alice.ID, "bob")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !profile.IsFollowing || profile.IsSelf || profile.FollowersCount != 1 || profile.FollowingCount != 0 {
		t.Errorf("profile = %+v", profile)
	}
	if len(profile.RecentActivities) != 1 || profile.RecentActivities[0].MediaName != "Alien" {
		t.Errorf("activities = %+v", profile.RecentActivities)
	}

	anon, err := svc.Get(ctx, nil, "bob")
	if err != nil || anon.IsFollowing {
		t.Errorf("anonymous view: %+v, %v", anon, err)
	}

	self, err := svc.Get(ctx, &bob.ID, "bob")
	if err != nil || !self.IsSelf {
		t.Errorf("self view: %+v, %v", self, err)
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	repo := newFakeUserRepository()
	alice := repo.addUser("alice")
	old := "https://res.cloudinary.com/demo/image/upload/v1/reelmate/avatars/old.webp"
	repo.users[alice.ID].Image = &old
	repo.addUser("taken")

	index := &fakeIndex{}
	store := &fakeStorage{}
	svc := newUserService(repo, index, store, nil)
	ctx := context.Background()

	bio := "  sci-fi only  "
	res, err := svc.UpdateProfile(ctx, alice.ID, dto.UpdateProfileInput{Bio: &bio},
		&dto.AvatarFile{Reader: strings.NewReader("img"), FileName: "me.png"})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if res.Bio == nil || *res.Bio != "sci-fi only" {
		t.Errorf("bio = %v", res.Bio)
	}
	if len(store.uploaded) != 1 || res.Image == nil || *res.Image != store.uploaded[0] {
		t.Errorf("image = %v uploaded = %v", res.Image, store.uploaded)
	}
	if len(store.deleted) != 1 || store.deleted[0] != old {
		t.Errorf("old avatar not deleted: %v", store.deleted)
	}
	if len(index.indexed) != 1 {
		t.Errorf("user not reindexed")
	}

	taken := "taken"
	if _, err := svc.UpdateProfile(ctx, alice.ID, dto.UpdateProfileInput{Username: &taken}, nil); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("taken username: err = %v", err)
	}
}

func TestUserService_Search(t *testing.T) {
	index := &fakeIndex{docs: []search.UserDocument{{ID: "1", Username: "neo", Name: "Neo"}}}
	svc := newUserService(newFakeUserRepository(), index, &fakeStorage{}, nil)

	res, err := svc.Search(context.Background(), "ne", 10)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(res) != 1 || res[0].Username != "neo" {
		t.Errorf("res = %+v", res)
	}

	index.err = errors.New("meili down")
	if _, err := svc.Search(context.Background(), "ne", 10); !errors.Is(err, apperror.ErrUpstream) {
		t.Errorf("err = %v, want ErrUpstream", err)
	}
}
