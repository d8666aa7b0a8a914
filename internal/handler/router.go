package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/agora/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// Prometheusスクレイプ用ハンドラー。nilの場合は/metricsを公開しない。
	MetricsHandler http.Handler

	// 購読レジストリ
	SubscriptionService SubscriptionServiceInterface

	// 通知・既読状態
	NotificationService NotificationServiceInterface

	// イベント取り込み
	EventService EventServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → SessionMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// ヘルスチェック（/health）はミドルウェアチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS ミドルウェアを最上位に適用（全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	healthHandler := NewHealthHandler(deps.HealthChecker)
	subHandler := NewSubscriptionHandler(deps.SubscriptionService)
	notifHandler := NewNotificationHandler(deps.NotificationService)
	eventHandler := NewEventHandler(deps.EventService)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler.Health)

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 購読レジストリ
		r.Route("/api/subscriptions", func(r chi.Router) {
			// POST /api/subscriptions - 購読作成（作成専用レート制限を追加）
			r.With(deps.RateLimiter.SubscriptionCreateMiddleware()).Post("/", subHandler.CreateSubscription)

			r.Get("/", subHandler.ListSubscriptions)
			r.Put("/active", subHandler.SetActive)
			r.Put("/immediate-email", subHandler.SetImmediateEmail)

			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", subHandler.DeleteSubscription)
			})
		})

		// 通知・既読状態
		r.Route("/api/notifications", func(r chi.Router) {
			r.Get("/", notifHandler.ListNotifications)
			r.Put("/read", notifHandler.MarkRead)
			r.Delete("/read", notifHandler.ClearRead)
		})

		// イベント取り込み（フォーラム基盤側コラボレータ用）
		r.Post("/api/events", eventHandler.EmitEvent)
	})

	return r
}
