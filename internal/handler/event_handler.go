package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/agora/internal/model"
	"github.com/hitoshi/agora/internal/notification"
)

// EventServiceInterface はイベントハンドラーが必要とするサービスインターフェース。
type EventServiceInterface interface {
	// EmitAndFanOut はイベントから通知を発行し、購読と照合して配布する。
	EmitAndFanOut(ctx context.Context, event *notification.Event) (*model.Notification, int, error)
}

// EventHandler はイベント取り込みのHTTPハンドラー。
// フォーラム基盤側のコラボレータ（スレッド作成、コメント投稿等の処理）が
// 発生済みイベントを通知エンジンへ引き渡すために使用する。
type EventHandler struct {
	service EventServiceInterface
}

// NewEventHandler はEventHandlerを生成する。
func NewEventHandler(service EventServiceInterface) *EventHandler {
	return &EventHandler{
		service: service,
	}
}

// emitEventRequest はイベント取り込みリクエストのボディ。
type emitEventRequest struct {
	Category           string         `json:"category"`
	CommunityID        string         `json:"community_id,omitempty"`
	ThreadID           *int64         `json:"thread_id,omitempty"`
	CommentID          *int64         `json:"comment_id,omitempty"`
	SnapshotSpaceID    string         `json:"snapshot_space_id,omitempty"`
	TargetSubscriberID string         `json:"target_subscriber_id,omitempty"`
	Author             string         `json:"author,omitempty"`
	Title              string         `json:"title,omitempty"`
	Excerpt            string         `json:"excerpt,omitempty"`
	Extra              map[string]any `json:"extra,omitempty"`
}

// emitEventResponse はイベント取り込みレスポンスのボディ。
type emitEventResponse struct {
	NotificationID int64     `json:"notification_id"`
	Category       string    `json:"category"`
	Recipients     int       `json:"recipients"`
	CreatedAt      time.Time `json:"created_at"`
}

// EmitEvent はイベントから通知を発行し、購読者へファンアウトする。
// POST /api/events
func (h *EventHandler) EmitEvent(w http.ResponseWriter, r *http.Request) {
	var req emitEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	event := &notification.Event{
		Category: model.Category(req.Category),
		Scope: model.Scope{
			CommunityID:     req.CommunityID,
			ThreadID:        req.ThreadID,
			CommentID:       req.CommentID,
			SnapshotSpaceID: req.SnapshotSpaceID,
		},
		TargetSubscriberID: req.TargetSubscriberID,
		Author:             req.Author,
		Title:              req.Title,
		Excerpt:            req.Excerpt,
		Extra:              req.Extra,
	}

	notif, recipients, err := h.service.EmitAndFanOut(r.Context(), event)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(emitEventResponse{
		NotificationID: notif.ID,
		Category:       string(notif.Category),
		Recipients:     recipients,
		CreatedAt:      notif.CreatedAt,
	})
}
