// Package handler はHTTP APIハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/agora/internal/middleware"
	"github.com/hitoshi/agora/internal/model"
)

// SubscriptionServiceInterface は購読ハンドラーが必要とするサービスインターフェース。
type SubscriptionServiceInterface interface {
	// CreateOrGet は購読を冪等に作成する。既存の同一スコープの購読があればそれを返す。
	CreateOrGet(ctx context.Context, subscriberID string, category model.Category, scope model.Scope) (*model.Subscription, error)
	// List は購読者の全購読（非アクティブ含む）を返す。
	List(ctx context.Context, subscriberID string) ([]*model.Subscription, error)
	// SetActive は購読のis_activeを一括で切り替える。
	SetActive(ctx context.Context, subscriberID string, ids []string, active bool) error
	// SetImmediateEmail は購読のimmediate_emailを一括で切り替える。
	SetImmediateEmail(ctx context.Context, subscriberID string, ids []string, enabled bool) error
	// Delete は購読を削除する。
	Delete(ctx context.Context, subscriberID, subscriptionID string) error
}

// SubscriptionHandler は購読レジストリのHTTPハンドラー。
type SubscriptionHandler struct {
	service SubscriptionServiceInterface
}

// NewSubscriptionHandler はSubscriptionHandlerを生成する。
func NewSubscriptionHandler(service SubscriptionServiceInterface) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: service,
	}
}

// createSubscriptionRequest は購読作成リクエストのボディ。
type createSubscriptionRequest struct {
	Category        string `json:"category"`
	CommunityID     string `json:"community_id,omitempty"`
	ThreadID        *int64 `json:"thread_id,omitempty"`
	CommentID       *int64 `json:"comment_id,omitempty"`
	SnapshotSpaceID string `json:"snapshot_space_id,omitempty"`
}

// subscriptionResponse は購読情報のAPIレスポンス。
type subscriptionResponse struct {
	ID              string    `json:"id"`
	SubscriberID    string    `json:"subscriber_id"`
	Category        string    `json:"category"`
	CommunityID     string    `json:"community_id,omitempty"`
	ThreadID        *int64    `json:"thread_id,omitempty"`
	CommentID       *int64    `json:"comment_id,omitempty"`
	SnapshotSpaceID string    `json:"snapshot_space_id,omitempty"`
	IsActive        bool      `json:"is_active"`
	ImmediateEmail  bool      `json:"immediate_email"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// toSubscriptionResponse はドメインモデルをAPIレスポンスに変換する。
func toSubscriptionResponse(sub *model.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:              sub.ID,
		SubscriberID:    sub.SubscriberID,
		Category:        string(sub.Category),
		CommunityID:     sub.CommunityID,
		ThreadID:        sub.ThreadID,
		CommentID:       sub.CommentID,
		SnapshotSpaceID: sub.SnapshotSpaceID,
		IsActive:        sub.IsActive,
		ImmediateEmail:  sub.ImmediateEmail,
		CreatedAt:       sub.CreatedAt,
		UpdatedAt:       sub.UpdatedAt,
	}
}

// bulkToggleRequest は一括切り替えリクエストのボディ。
// subscription_idsはスカラー・配列の両形式を受け付ける。
type bulkToggleRequest struct {
	SubscriptionIDs stringList `json:"subscription_ids"`
	Enabled         bool       `json:"enabled"`
}

// CreateSubscription は購読を冪等に作成する。
// POST /api/subscriptions
// 既存の同一スコープの購読があってもエラーにせず、その既存行を返す。
func (h *SubscriptionHandler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := middleware.SubscriberIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var req createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	scope := model.Scope{
		CommunityID:     req.CommunityID,
		ThreadID:        req.ThreadID,
		CommentID:       req.CommentID,
		SnapshotSpaceID: req.SnapshotSpaceID,
	}

	sub, err := h.service.CreateOrGet(r.Context(), subscriberID, model.Category(req.Category), scope)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toSubscriptionResponse(sub))
}

// ListSubscriptions は購読者の購読一覧を取得する。
// GET /api/subscriptions
func (h *SubscriptionHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := middleware.SubscriberIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	subs, err := h.service.List(r.Context(), subscriberID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]subscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		resp = append(resp, toSubscriptionResponse(sub))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// SetActive は購読のis_activeを一括で切り替える。
// PUT /api/subscriptions/active
func (h *SubscriptionHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := middleware.SubscriberIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var req bulkToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	if err := h.service.SetActive(r.Context(), subscriberID, req.SubscriptionIDs, req.Enabled); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetImmediateEmail は購読のimmediate_emailを一括で切り替える。
// PUT /api/subscriptions/immediate-email
func (h *SubscriptionHandler) SetImmediateEmail(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := middleware.SubscriberIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var req bulkToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	if err := h.service.SetImmediateEmail(r.Context(), subscriberID, req.SubscriptionIDs, req.Enabled); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteSubscription は購読を削除する。
// DELETE /api/subscriptions/{id}
func (h *SubscriptionHandler) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := middleware.SubscriberIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	subscriptionID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), subscriberID, subscriptionID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// apiErrorResponse はAPIエラーレスポンスの統一フォーマット。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeAPIErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// writeUnauthorizedResponse は401 Unauthorizedの統一レスポンスを書き込む。
func writeUnauthorizedResponse(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusUnauthorized, &model.APIError{
		Code:     "UNAUTHORIZED",
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	})
}

// writeInvalidRequestResponse はリクエストボディ解析失敗の統一レスポンスを書き込む。
func writeInvalidRequestResponse(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidSubscriptionCategory,
		model.ErrCodeUnsupportedSubscriptionCategory,
		model.ErrCodeInvalidNotificationCategory,
		model.ErrCodeInvalidSubscriptionScope,
		model.ErrCodeNoCommunityID,
		model.ErrCodeNoSnapshotSpace,
		model.ErrCodeNoThreadOrComment,
		model.ErrCodeBothThreadAndComment,
		model.ErrCodeNoTargetSubscriber,
		model.ErrCodeNoSubscriptionIDs,
		model.ErrCodeNoNotificationIDs:
		return http.StatusBadRequest
	case model.ErrCodeCommunityNotFound,
		model.ErrCodeThreadNotFound,
		model.ErrCodeCommentNotFound,
		model.ErrCodeSnapshotSpaceNotFound,
		model.ErrCodeSubscriptionNotFound:
		return http.StatusNotFound
	case model.ErrCodeNotSubscriptionOwner:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
