package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/agora/internal/model"
	"github.com/hitoshi/agora/internal/notification"
)

type mockEventService struct {
	emitAndFanOutFn func(ctx context.Context, event *notification.Event) (*model.Notification, int, error)
}

func (m *mockEventService) EmitAndFanOut(ctx context.Context, event *notification.Event) (*model.Notification, int, error) {
	return m.emitAndFanOutFn(ctx, event)
}

// TestEventHandler_EmitEvent はイベント取り込みAPIを検証する。
func TestEventHandler_EmitEvent(t *testing.T) {
	svc := &mockEventService{
		emitAndFanOutFn: func(ctx context.Context, event *notification.Event) (*model.Notification, int, error) {
			if event.Category != model.CategoryNewThread {
				t.Errorf("category = %q, want %q", event.Category, model.CategoryNewThread)
			}
			if event.Scope.CommunityID != "ethereum" {
				t.Errorf("community_id = %q, want ethereum", event.Scope.CommunityID)
			}
			if event.Scope.ThreadID == nil || *event.Scope.ThreadID != 42 {
				t.Errorf("thread_id = %v, want 42", event.Scope.ThreadID)
			}
			return &model.Notification{
				ID:        11,
				Category:  event.Category,
				Scope:     event.Scope,
				CreatedAt: time.Now(),
			}, 3, nil
		},
	}
	h := NewEventHandler(svc)

	req := authedRequest(http.MethodPost, "/api/events",
		`{"category":"new-thread-creation","community_id":"ethereum","thread_id":42,"author":"alice","title":"Proposal"}`)
	rec := httptest.NewRecorder()

	h.EmitEvent(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp emitEventResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.NotificationID != 11 {
		t.Errorf("notification_id = %d, want 11", resp.NotificationID)
	}
	if resp.Recipients != 3 {
		t.Errorf("recipients = %d, want 3", resp.Recipients)
	}
}

// TestEventHandler_EmitEvent_ValidationError は形状契約違反が400になることを検証する。
func TestEventHandler_EmitEvent_ValidationError(t *testing.T) {
	svc := &mockEventService{
		emitAndFanOutFn: func(ctx context.Context, event *notification.Event) (*model.Notification, int, error) {
			return nil, 0, model.NewNoTargetSubscriberError(event.Category)
		},
	}
	h := NewEventHandler(svc)

	req := authedRequest(http.MethodPost, "/api/events", `{"category":"new-mention"}`)
	rec := httptest.NewRecorder()

	h.EmitEvent(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var resp apiErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v", err)
	}
	if resp.Code != model.ErrCodeNoTargetSubscriber {
		t.Errorf("Code = %q, want %q", resp.Code, model.ErrCodeNoTargetSubscriber)
	}
}

// TestEventHandler_EmitEvent_InvalidJSON は不正なボディが400になることを検証する。
func TestEventHandler_EmitEvent_InvalidJSON(t *testing.T) {
	h := NewEventHandler(&mockEventService{})

	req := authedRequest(http.MethodPost, "/api/events", `{broken`)
	rec := httptest.NewRecorder()

	h.EmitEvent(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
