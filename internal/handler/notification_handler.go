package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/agora/internal/middleware"
	"github.com/hitoshi/agora/internal/model"
)

// 通知一覧のページサイズ。limitクエリパラメータで上限まで縮小できる。
const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

// NotificationServiceInterface は通知ハンドラーが必要とするサービスインターフェース。
type NotificationServiceInterface interface {
	// ListNotifications は購読者に届いた通知を既読状態付きで新しい順に返す。
	ListNotifications(ctx context.Context, subscriberID string, limit int) ([]model.NotificationWithState, error)
	// MarkRead は指定通知ID群のうち購読者所有の行を既読化し、更新行数を返す。
	MarkRead(ctx context.Context, subscriberID string, notificationIDs []int64) (int64, error)
	// ClearRead は購読者の既読行をすべて削除し、削除行数を返す。
	ClearRead(ctx context.Context, subscriberID string) (int64, error)
}

// NotificationHandler は通知と既読状態のHTTPハンドラー。
type NotificationHandler struct {
	service NotificationServiceInterface
}

// NewNotificationHandler はNotificationHandlerを生成する。
func NewNotificationHandler(service NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{
		service: service,
	}
}

// notificationResponse は既読状態付き通知のAPIレスポンス。
type notificationResponse struct {
	ID              int64           `json:"id"`
	Category        string          `json:"category"`
	CommunityID     string          `json:"community_id,omitempty"`
	ThreadID        *int64          `json:"thread_id,omitempty"`
	CommentID       *int64          `json:"comment_id,omitempty"`
	SnapshotSpaceID string          `json:"snapshot_space_id,omitempty"`
	Data            json.RawMessage `json:"data"`
	SubscriptionID  string          `json:"subscription_id"`
	IsRead          bool            `json:"is_read"`
	CreatedAt       time.Time       `json:"created_at"`
}

// markReadRequest は既読化リクエストのボディ。
// notification_idsはスカラー・配列の両形式を受け付ける。
type markReadRequest struct {
	NotificationIDs int64List `json:"notification_ids"`
}

// markReadResponse は既読化レスポンスのボディ。
type markReadResponse struct {
	Marked int64 `json:"marked"`
}

// clearReadResponse は既読クリアレスポンスのボディ。
type clearReadResponse struct {
	Cleared int64 `json:"cleared"`
}

// ListNotifications は購読者に届いた通知を既読状態付きで取得する。
// GET /api/notifications?limit=50
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := middleware.SubscriberIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	limit := defaultNotificationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxNotificationLimit {
			writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
				Code:     "INVALID_LIMIT",
				Message:  "limitは1〜200の整数で指定してください。",
				Category: "validation",
				Action:   "limitパラメータを確認してください。",
			})
			return
		}
		limit = parsed
	}

	notifs, err := h.service.ListNotifications(r.Context(), subscriberID, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]notificationResponse, 0, len(notifs))
	for _, n := range notifs {
		resp = append(resp, notificationResponse{
			ID:              n.ID,
			Category:        string(n.Category),
			CommunityID:     n.CommunityID,
			ThreadID:        n.ThreadID,
			CommentID:       n.CommentID,
			SnapshotSpaceID: n.SnapshotSpaceID,
			Data:            n.Data,
			SubscriptionID:  n.SubscriptionID,
			IsRead:          n.IsRead,
			CreatedAt:       n.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// MarkRead は指定通知を既読化する。
// PUT /api/notifications/read
// 他ユーザー宛の通知IDが混ざっていてもエラーにせず、購読者所有の行のみが
// 更新される。
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := middleware.SubscriberIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	marked, err := h.service.MarkRead(r.Context(), subscriberID, req.NotificationIDs)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(markReadResponse{Marked: marked})
}

// ClearRead は購読者の既読行をすべて削除する。冪等。
// DELETE /api/notifications/read
func (h *NotificationHandler) ClearRead(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := middleware.SubscriberIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	cleared, err := h.service.ClearRead(r.Context(), subscriberID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(clearReadResponse{Cleared: cleared})
}
