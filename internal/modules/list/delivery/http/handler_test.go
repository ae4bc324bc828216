package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelmate/internal/entity"
	"reelmate/internal/modules/list/dto"
	list "reelmate/internal/modules/list/service"
	"reelmate/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := entity.RegisterValidators(); err != nil {
		panic(err)
	}
}

type mockListService struct {
	getEntryFn func(ctx context.Context, userID uuid.UUID, mediaID int, mediaType entity.MediaType) (*entity.Status, error)
	addFn      func(ctx context.Context, userID uuid.UUID, req dto.AddRequest) error
	removeFn   func(ctx context.Context, userID uuid.UUID, req dto.RemoveRequest) error
}

var _ list.ListService = (*mockListService)(nil)

func (m *mockListService) GetEntry(ctx context.Context, userID uuid.UUID, mediaID int, mediaType entity.MediaType) (*entity.Status, error) {
	return m.getEntryFn(ctx, userID, mediaID, mediaType)
}
func (m *mockListService) Add(ctx context.Context, userID uuid.UUID, req dto.AddRequest) error {
	return m.addFn(ctx, userID, req)
}
func (m *mockListService) Remove(ctx context.Context, userID uuid.UUID, req dto.RemoveRequest) error {
	return m.removeFn(ctx, userID, req)
}
func (m *mockListService) SetStatus(ctx context.Context, userID uuid.UUID, req dto.SetStatusRequest) error {
	return nil
}
func (m *mockListService) List(ctx context.Context, userID uuid.UUID, status *entity.Status) (*dto.ListResponse, error) {
	return &dto.ListResponse{}, nil
}

func newRouter(svc list.ListService, userID *uuid.UUID) *gin.Engine {
	h := NewListHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != nil {
			c.Set("user_id", userID.String())
		}
		c.Next()
	})
	r.GET("/list/entry", h.GetEntry)
	r.POST("/list", h.Add)
	r.POST("/list/remove", h.Remove)
	return r
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(b)
}

func TestAdd_UsesSessionUser(t *testing.T) {
	userID := uuid.New()
	var gotUser uuid.UUID
	var gotReq dto.AddRequest
	r := newRouter(&mockListService{
		addFn: func(ctx context.Context, uid uuid.UUID, req dto.AddRequest) error {
			gotUser, gotReq = uid, req
			return nil
		},
	}, &userID)

	body := jsonBody(t, map[string]any{
		"mediaId":   550,
		"mediaType": "MOVIE",
		"status":    "WATCHING",
		"userId":    uuid.New().String(),
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/list", body))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if gotUser != userID {
		t.Errorf("user = %s, want session user %s", gotUser, userID)
	}
	if gotReq.MediaID != 550 || gotReq.Status != entity.StatusWatching {
		t.Errorf("req = %+v", gotReq)
	}
}

func TestAdd_Conflict(t *testing.T) {
	userID := uuid.New()
	r := newRouter(&mockListService{
		addFn: func(ctx context.Context, uid uuid.UUID, req dto.AddRequest) error {
			return fmt.Errorf("dup: %w", apperror.ErrConflict)
		},
	}, &userID)

	body := jsonBody(t, map[string]any{"mediaId": 550, "mediaType": "MOVIE", "status": "COMPLETED"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/list", body))

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestAdd_InvalidEnums(t *testing.T) {
	userID := uuid.New()
	r := newRouter(&mockListService{}, &userID)

	tests := []map[string]any{
		{"mediaId": 1, "mediaType": "BOOK", "status": "WATCHING"},
		{"mediaId": 1, "mediaType": "SHOW", "status": "DROPPED"},
		{"mediaType": "SHOW", "status": "WATCHING"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/list", jsonBody(t, tt)))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%v: status = %d, want 400", tt, w.Code)
		}
	}
}

func TestAdd_Unauthenticated(t *testing.T) {
	r := newRouter(&mockListService{}, nil)

	body := jsonBody(t, map[string]any{"mediaId": 550, "mediaType": "MOVIE", "status": "WATCHING"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/list", body))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestGetEntry_NullWhenAbsent(t *testing.T) {
	userID := uuid.New()
	r := newRouter(&mockListService{
		getEntryFn: func(ctx context.Context, uid uuid.UUID, mediaID int, mediaType entity.MediaType) (*entity.Status, error) {
			return nil, nil
		},
	}, &userID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/list/entry?mediaId=550&mediaType=MOVIE", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if w.Body.String() != `{"status":null}` {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestRemove_NotFound(t *testing.T) {
	userID := uuid.New()
	r := newRouter(&mockListService{
		removeFn: func(ctx context.Context, uid uuid.UUID, req dto.RemoveRequest) error {
			return apperror.ErrNotFound
		},
	}, &userID)

	body := jsonBody(t, map[string]any{"mediaId": 1, "mediaType": "SHOW", "status": "WATCHING"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/list/remove", body))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
