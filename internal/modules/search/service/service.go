package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"reelmate/internal/entity"

	"github.com/meilisearch/meilisearch-go"
	"github.com/sirupsen/logrus"
)

const usersIndex = "users"

// UserDocument is the shape stored in the users index.
type UserDocument struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Bio       string `json:"bio"`
	CreatedAt int64  `json:"created_at"`
}

type UserSearchService interface {
	IndexUser(user *entity.User) error
	IndexUsers(users []entity.User) error
	DeleteUser(id string) error
	SearchUsers(query string, limit int) ([]UserDocument, error)
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
	log    *logrus.Logger
}

func NewMeiliSearchService(client meilisearch.ServiceManager, log *logrus.Logger) UserSearchService {
	s := &meiliSearchService{
		client: client,
		log:    log,
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	searchable := []string{"username", "name", "bio"}
	if _, err := s.client.Index(usersIndex).UpdateSearchableAttributes(&searchable); err != nil {
		s.log.WithError(err).Warn("failed to update users searchable attributes")
	}

	sortable := []string{"created_at"}
	if _, err := s.client.Index(usersIndex).UpdateSortableAttributes(&sortable); err != nil {
		s.log.WithError(err).Warn("failed to update users sortable attributes")
	}
}

// toDocument returns false for users without a username; they cannot be found or linked.
func toDocument(user *entity.User) (UserDocument, bool) {
	if user.Username == nil || *user.Username == "" {
		return UserDocument{}, false
	}
	return UserDocument{
		ID:        user.ID.String(),
		Username:  *user.Username,
		Name:      stringOrEmpty(user.Name),
		Image:     stringOrEmpty(user.Image),
		Bio:       stringOrEmpty(user.Bio),
		CreatedAt: user.CreatedAt.Unix(),
	}, true
}

func (s *meiliSearchService) IndexUser(user *entity.User) error {
	return s.IndexUsers([]entity.User{*user})
}

func (s *meiliSearchService) IndexUsers(users []entity.User) error {
	docs := make([]UserDocument, 0, len(users))
	for i := range users {
		if doc, ok := toDocument(&users[i]); ok {
			docs = append(docs, doc)
		}
	}
	if len(docs) == 0 {
		return nil
	}

	task, err := s.client.Index(usersIndex).AddDocuments(docs, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index users: %w", err)
	}
	s.log.WithFields(logrus.Fields{"count": len(docs), "task_uid": task.TaskUID}).Debug("queued user documents")
	return nil
}

func (s *meiliSearchService) DeleteUser(id string) error {
	_, err := s.client.Index(usersIndex).DeleteDocument(id)
	return err
}

func (s *meiliSearchService) SearchUsers(query string, limit int) ([]UserDocument, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []UserDocument{}, nil
	}

	res, err := s.client.Index(usersIndex).Search(query, &meilisearch.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	return decodeHits(res.Hits)
}

// decodeHits round-trips through JSON so it does not depend on the client's hit representation.
func decodeHits(hits any) ([]UserDocument, error) {
	raw, err := json.Marshal(hits)
	if err != nil {
		return nil, err
	}
	docs := []UserDocument{}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decode user hits: %w", err)
	}
	return docs, nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	return &s
}
