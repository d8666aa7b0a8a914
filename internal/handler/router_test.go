package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/agora/internal/middleware"
	"github.com/hitoshi/agora/internal/model"
)

type mockHealthChecker struct {
	pingFn func(ctx context.Context) error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

type mockSessionFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.Session, error)
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return m.findByIDFn(ctx, id)
}

// newTestRouter はモックを組み合わせた検証用ルーターを構築する。
func newTestRouter(t *testing.T) (http.Handler, *middleware.RateLimiter) {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(100),
		GeneralBurst:    100,
		SubCreateRate:   rate.Limit(100),
		SubCreateBurst:  100,
		CleanupInterval: time.Hour,
	})

	deps := &RouterDeps{
		HealthChecker: &mockHealthChecker{},
		SessionFinder: &mockSessionFinder{
			findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
				if id != "valid-session" {
					return nil, nil
				}
				return &model.Session{ID: id, UserID: "user-1"}, nil
			},
		},
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		SubscriptionService: &mockSubscriptionService{
			listFn: func(ctx context.Context, subscriberID string) ([]*model.Subscription, error) {
				return nil, nil
			},
		},
		NotificationService: &mockNotificationService{
			listNotificationsFn: func(ctx context.Context, subscriberID string, limit int) ([]model.NotificationWithState, error) {
				return nil, nil
			},
		},
		EventService: &mockEventService{},
	}
	return NewRouter(deps), rl
}

// TestRouter_HealthWithoutAuth は/healthが認証なしで到達できることを検証する。
func TestRouter_HealthWithoutAuth(t *testing.T) {
	router, rl := newTestRouter(t)
	defer rl.Stop()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

// TestRouter_APIRequiresSession はAPIルートがセッションCookieなしでは401になることを検証する。
func TestRouter_APIRequiresSession(t *testing.T) {
	router, rl := newTestRouter(t)
	defer rl.Stop()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/subscriptions"},
		{http.MethodGet, "/api/notifications"},
		{http.MethodPost, "/api/events"},
	}

	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want %d", p.method, p.path, rec.Code, http.StatusUnauthorized)
		}
	}
}

// TestRouter_APIWithValidSession は有効なセッションCookieを持つリクエストが
// ハンドラーまで到達することを検証する。
func TestRouter_APIWithValidSession(t *testing.T) {
	router, rl := newTestRouter(t)
	defer rl.Stop()

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}
}

// TestRouter_InvalidSessionCookie は無効なセッションIDが401になることを検証する。
func TestRouter_InvalidSessionCookie(t *testing.T) {
	router, rl := newTestRouter(t)
	defer rl.Stop()

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "expired-session"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// TestRouter_MetricsDisabledByDefault はMetricsHandler未指定時に/metricsが
// 公開されないことを検証する。
func TestRouter_MetricsDisabledByDefault(t *testing.T) {
	router, rl := newTestRouter(t)
	defer rl.Stop()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
