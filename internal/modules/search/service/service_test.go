package search

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"reelmate/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func strp(s string) *string { return &s }

func TestToDocument(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	user := &entity.User{
		ID:        uuid.New(),
		Username:  strp("neo"),
		Name:      strp("Thomas Anderson"),
		CreatedAt: created,
	}

	doc, ok := toDocument(user)
	if !ok {
		t.Fatal("expected document for user with username")
	}
	if doc.Username != "neo" || doc.Name != "Thomas Anderson" || doc.Image != "" {
		t.Errorf("doc = %+v", doc)
	}
	if doc.CreatedAt != created.Unix() {
		t.Errorf("CreatedAt = %d", doc.CreatedAt)
	}

	if _, ok := toDocument(&entity.User{ID: uuid.New()}); ok {
		t.Error("user without username should not be indexed")
	}
}

func TestDecodeHits(t *testing.T) {
	hits := []map[string]any{
		{"id": "1", "username": "trinity", "name": "Trinity", "_rankingScore": 0.9},
		{"id": "2", "username": "morpheus"},
	}

	docs, err := decodeHits(hits)
	if err != nil {
		t.Fatalf("decodeHits returned error: %v", err)
	}
	if len(docs) != 2 || docs[0].Username != "trinity" || docs[1].ID != "2" {
		t.Errorf("docs = %+v", docs)
	}
}

type mockUserSource struct {
	batches [][]entity.User
}

func (m *mockUserSource) FindInBatches(ctx context.Context, batchSize int, fn func(users []entity.User) error) error {
	for _, b := range m.batches {
		if err := fn(b); err != nil {
			return err
		}
	}
	return nil
}

type mockIndex struct {
	indexed int
	err     error
}

func (m *mockIndex) IndexUser(user *entity.User) error { return m.IndexUsers([]entity.User{*user}) }
func (m *mockIndex) IndexUsers(users []entity.User) error {
	if m.err != nil {
		return m.err
	}
	m.indexed += len(users)
	return nil
}
func (m *mockIndex) DeleteUser(id string) error { return nil }
func (m *mockIndex) SearchUsers(query string, limit int) ([]UserDocument, error) {
	return nil, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestReindexJob_Run(t *testing.T) {
	source := &mockUserSource{batches: [][]entity.User{
		{{ID: uuid.New()}, {ID: uuid.New()}},
		{{ID: uuid.New()}},
	}}
	index := &mockIndex{}
	job := NewReindexJob(source, index, "@every 1h", quietLogger())

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if index.indexed != 3 {
		t.Errorf("indexed = %d, want 3", index.indexed)
	}
	if job.Name() != "user-reindex" || job.Schedule() != "@every 1h" {
		t.Errorf("name=%s schedule=%s", job.Name(), job.Schedule())
	}
}

func TestReindexJob_StopsOnIndexError(t *testing.T) {
	source := &mockUserSource{batches: [][]entity.User{{{ID: uuid.New()}}}}
	wantErr := errors.New("meili down")
	job := NewReindexJob(source, &mockIndex{err: wantErr}, "", quietLogger())

	if err := job.Run(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
