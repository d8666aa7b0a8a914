// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/agora/internal/model"
)

const sessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// subscriberIDContextKey はリクエストコンテキストに購読者IDを格納するためのキー。
var subscriberIDContextKey = contextKey("subscriber_id")

// SessionFinder はセッションの検索に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// NewSessionMiddleware はHTTP Only Cookieからセッションを読み取り、
// 有効性を検証するミドルウェアを返す。
// 認証済みの購読者IDをリクエストコンテキストに注入する。
// 未認証リクエストには401 Unauthorizedを返す。
func NewSessionMiddleware(sessionFinder SessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			session, err := sessionFinder.FindByID(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("failed to find session",
					slog.String("error", err.Error()),
				)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if session == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), subscriberIDContextKey, session.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SubscriberIDFromContext はリクエストコンテキストから購読者IDを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func SubscriberIDFromContext(ctx context.Context) (string, error) {
	subscriberID, ok := ctx.Value(subscriberIDContextKey).(string)
	if !ok || subscriberID == "" {
		return "", fmt.Errorf("subscriber ID not found in context")
	}
	return subscriberID, nil
}

// ContextWithSubscriberID はコンテキストに購読者IDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSubscriberID(ctx context.Context, subscriberID string) context.Context {
	return context.WithValue(ctx, subscriberIDContextKey, subscriberID)
}
