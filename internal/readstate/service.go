// Package readstate は既読追跡（Read-State Tracker）のドメインロジックを提供する。
package readstate

import (
	"context"
	"fmt"

	"github.com/hitoshi/agora/internal/metrics"
	"github.com/hitoshi/agora/internal/model"
	"github.com/hitoshi/agora/internal/repository"
)

// Service は購読者ごとの既読状態を管理するサービス層。
// 既読追跡行の作成はファンアウトエンジンが担い、このサービスは
// is_readの反転・クリアと既読状態付きの一覧取得のみを行う。
type Service struct {
	notifRepo repository.NotificationRepository
	readRepo  repository.NotificationsReadRepository
	collector metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	notifRepo repository.NotificationRepository,
	readRepo repository.NotificationsReadRepository,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		notifRepo: notifRepo,
		readRepo:  readRepo,
		collector: collector,
	}
}

// MarkRead は購読者の既読追跡行のうち指定通知ID群に対応するものを
// 既読化し、更新された行数を返す。
// 他ユーザー宛の通知IDや存在しないIDが混ざっていてもエラーにはせず、
// 購読者が所有する行だけが更新対象になる。既読済みの行は数えない。
func (s *Service) MarkRead(ctx context.Context, subscriberID string, notificationIDs []int64) (int64, error) {
	if len(notificationIDs) == 0 {
		return 0, model.NewNoNotificationIDsError()
	}

	updated, err := s.readRepo.MarkRead(ctx, subscriberID, notificationIDs)
	if err != nil {
		return 0, fmt.Errorf("通知の既読化に失敗しました: %w", err)
	}

	s.collector.RecordMarkedRead(updated)
	return updated, nil
}

// ClearRead は購読者の既読行をすべて削除し、削除行数を返す。冪等であり、
// 対象が0件でも成功する。通知レコード本体には影響しない。
func (s *Service) ClearRead(ctx context.Context, subscriberID string) (int64, error) {
	deleted, err := s.readRepo.DeleteRead(ctx, subscriberID)
	if err != nil {
		return 0, fmt.Errorf("既読行のクリアに失敗しました: %w", err)
	}

	s.collector.RecordClearedRead(deleted)
	return deleted, nil
}

// ListNotifications は購読者に届いた通知を既読状態付きで新しい順に返す。
func (s *Service) ListNotifications(ctx context.Context, subscriberID string, limit int) ([]model.NotificationWithState, error) {
	notifs, err := s.notifRepo.ListBySubscriberWithState(ctx, subscriberID, limit)
	if err != nil {
		return nil, fmt.Errorf("通知一覧の取得に失敗しました: %w", err)
	}
	return notifs, nil
}
