package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reelmate/internal/entity"
	"reelmate/internal/modules/message/dto"
	"reelmate/internal/modules/message/realtime"
	message "reelmate/internal/modules/message/service"
	"reelmate/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := entity.RegisterValidators(); err != nil {
		panic(err)
	}
}

type mockMessageService struct {
	sendFn      func(ctx context.Context, callerID uuid.UUID, input dto.SendInput) (*dto.MessageResponse, error)
	getChatFn   func(ctx context.Context, callerID uuid.UUID, username string) (*dto.ChatResponse, error)
	markReadFn  func(ctx context.Context, callerID, messageID uuid.UUID) error
	authorizeFn func(ctx context.Context, callerID, chatID uuid.UUID) error
}

var _ message.MessageService = (*mockMessageService)(nil)

func (m *mockMessageService) GetChats(ctx context.Context, callerID uuid.UUID) ([]dto.ChatSummary, error) {
	return []dto.ChatSummary{}, nil
}
func (m *mockMessageService) GetChat(ctx context.Context, callerID uuid.UUID, username string) (*dto.ChatResponse, error) {
	return m.getChatFn(ctx, callerID, username)
}
func (m *mockMessageService) Send(ctx context.Context, callerID uuid.UUID, input dto.SendInput) (*dto.MessageResponse, error) {
	return m.sendFn(ctx, callerID, input)
}
func (m *mockMessageService) MarkRead(ctx context.Context, callerID, messageID uuid.UUID) error {
	return m.markReadFn(ctx, callerID, messageID)
}
func (m *mockMessageService) MarkChatRead(ctx context.Context, callerID uuid.UUID, username string) (int, error) {
	return 0, nil
}
func (m *mockMessageService) RevealSpoiler(ctx context.Context, callerID, messageID uuid.UUID) (*dto.MessageResponse, error) {
	return &dto.MessageResponse{ID: messageID, SpoilerRevealed: true}, nil
}
func (m *mockMessageService) Authorize(ctx context.Context, callerID, chatID uuid.UUID) error {
	return m.authorizeFn(ctx, callerID, chatID)
}

const testOrigin = "http://app.example"

func newRouter(svc message.MessageService, broker realtime.Broker, userID *uuid.UUID) *gin.Engine {
	log := logrus.New()
	log.SetOutput(io.Discard)
	h := NewMessageHandler(svc, broker, []string{testOrigin}, log)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != nil {
			c.Set("user_id", userID.String())
		}
		c.Next()
	})
	r.GET("/messages/chat/:username", h.GetChat)
	r.POST("/messages", h.Send)
	r.PUT("/messages/:id/read", h.MarkRead)
	r.PUT("/messages/:id/reveal", h.RevealSpoiler)
	r.GET("/messages/ws", h.HandleWebSocket)
	return r
}

func TestSend(t *testing.T) {
	userID := uuid.New()
	var got dto.SendInput
	svc := &mockMessageService{
		sendFn: func(ctx context.Context, callerID uuid.UUID, input dto.SendInput) (*dto.MessageResponse, error) {
			if callerID != userID {
				t.Errorf("unexpected caller %v", callerID)
			}
			got = input
			return &dto.MessageResponse{ID: uuid.New(), Content: input.Content, Seq: 1}, nil
		},
	}
	r := newRouter(svc, nil, &userID)

	body := `{"to":"bob","content":"hello","spoilerMedia":"Dark","spoilerDescription":"loop","spoilerSeason":1}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if got.To != "bob" || got.SpoilerSeason == nil || *got.SpoilerSeason != 1 {
		t.Errorf("unexpected input: %+v", got)
	}
}

func TestSend_BindingErrors(t *testing.T) {
	userID := uuid.New()
	svc := &mockMessageService{
		sendFn: func(ctx context.Context, callerID uuid.UUID, input dto.SendInput) (*dto.MessageResponse, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	r := newRouter(svc, nil, &userID)

	for _, body := range []string{
		`{"content":"no recipient"}`,
		`{"to":"bob","mediaId":1,"mediaType":"BOOK"}`,
		`{"to":"bob","spoilerMedia":"x","spoilerDescription":"y","spoilerSeason":0}`,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestSend_Unauthenticated(t *testing.T) {
	r := newRouter(&mockMessageService{}, nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewReader([]byte(`{"to":"bob","content":"x"}`)))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestGetChat_EmptyConversation(t *testing.T) {
	userID := uuid.New()
	svc := &mockMessageService{
		getChatFn: func(ctx context.Context, callerID uuid.UUID, username string) (*dto.ChatResponse, error) {
			if username != "bob" {
				t.Errorf("unexpected username %q", username)
			}
			return &dto.ChatResponse{Participants: []dto.Participant{}, Messages: []dto.MessageResponse{}}, nil
		},
	}
	r := newRouter(svc, nil, &userID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/messages/chat/bob", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var res map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res["id"] != nil {
		t.Errorf("expected null id, got %v", res["id"])
	}
}

func TestMarkRead(t *testing.T) {
	userID := uuid.New()
	tests := []struct {
		name string
		id   string
		err  error
		want int
	}{
		{"ok", uuid.NewString(), nil, http.StatusOK},
		{"invalid id", "abc", nil, http.StatusBadRequest},
		{"sender", uuid.NewString(), apperror.ErrForbidden, http.StatusForbidden},
		{"missing", uuid.NewString(), apperror.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockMessageService{
				markReadFn: func(ctx context.Context, callerID, messageID uuid.UUID) error { return tt.err },
			}
			r := newRouter(svc, nil, &userID)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/messages/"+tt.id+"/read", nil))
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestHandleWebSocket_RejectsNonParticipant(t *testing.T) {
	userID := uuid.New()
	svc := &mockMessageService{
		authorizeFn: func(ctx context.Context, callerID, chatID uuid.UUID) error { return apperror.ErrForbidden },
	}
	r := newRouter(svc, realtime.NewMemoryBroker(), &userID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/messages/ws?chat="+uuid.NewString(), nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/messages/ws?chat=nope", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleWebSocket_ForwardsChatEvents(t *testing.T) {
	userID := uuid.New()
	chatID := uuid.New()
	broker := realtime.NewMemoryBroker()
	svc := &mockMessageService{
		authorizeFn: func(ctx context.Context, callerID, id uuid.UUID) error {
			if id != chatID {
				return apperror.ErrForbidden
			}
			return nil
		},
	}
	srv := httptest.NewServer(newRouter(svc, broker, &userID))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/messages/ws?chat=" + chatID.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	payload := []byte(`{"type":"message.created"}`)
	if err := broker.Publish(context.Background(), realtime.ChatChannel(chatID.String()), payload); err != nil {
		t.Fatal(err)
	}
	// Events on other chats are not forwarded.
	_ = broker.Publish(context.Background(), realtime.ChatChannel(uuid.NewString()), []byte(`{}`))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, got, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("expected %s, got %s", payload, got)
	}
}

func TestHandleWebSocket_ChecksOrigin(t *testing.T) {
	userID := uuid.New()
	chatID := uuid.New()
	svc := &mockMessageService{
		authorizeFn: func(ctx context.Context, callerID, id uuid.UUID) error { return nil },
	}
	srv := httptest.NewServer(newRouter(svc, realtime.NewMemoryBroker(), &userID))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/messages/ws?chat=" + chatID.String()

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	if err == nil {
		t.Fatal("expected dial from foreign origin to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for foreign origin, got %v", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {testOrigin}})
	if err != nil {
		t.Fatalf("dial from allowed origin failed: %v", err)
	}
	conn.Close()
}

func TestNewMessageHandler_EmptyOriginListOnlyAdmitsOriginless(t *testing.T) {
	h := NewMessageHandler(&mockMessageService{}, realtime.NewMemoryBroker(), nil, logrus.New())

	req := httptest.NewRequest(http.MethodGet, "/messages/ws", nil)
	if !h.upgrader.CheckOrigin(req) {
		t.Error("request without Origin should be admitted")
	}
	req.Header.Set("Origin", "http://evil.example")
	if h.upgrader.CheckOrigin(req) {
		t.Error("empty origin list must not admit every origin")
	}
}
