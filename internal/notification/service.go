package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/agora/internal/metrics"
	"github.com/hitoshi/agora/internal/model"
	"github.com/hitoshi/agora/internal/repository"
	"github.com/hitoshi/agora/internal/security"
)

// Service は通知の発行（Emit）とファンアウト（FanOut）を担うサービス層。
// 発行は正準の通知レコードを一度だけ作成し、ファンアウトはアクティブな
// 購読と照合して購読者ごとの既読追跡行を払い出す。
type Service struct {
	notifRepo   repository.NotificationRepository
	subRepo     repository.SubscriptionRepository
	readRepo    repository.NotificationsReadRepository
	contentRepo repository.ContentRepository
	sanitizer   security.TextSanitizerService
	collector   metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	notifRepo repository.NotificationRepository,
	subRepo repository.SubscriptionRepository,
	readRepo repository.NotificationsReadRepository,
	contentRepo repository.ContentRepository,
	sanitizer security.TextSanitizerService,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		notifRepo:   notifRepo,
		subRepo:     subRepo,
		readRepo:    readRepo,
		contentRepo: contentRepo,
		sanitizer:   sanitizer,
		collector:   collector,
	}
}

// Emit はイベントから正準の通知レコードを作成する。
// イベントの形状契約と参照先の存在を検証し、テキストをサニタイズした
// ペイロードを凍結して保存する。作成された通知は以後不変。
func (s *Service) Emit(ctx context.Context, event *Event) (*model.Notification, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkEventReferences(ctx, event.Scope); err != nil {
		return nil, err
	}

	data, err := s.buildPayload(event)
	if err != nil {
		return nil, fmt.Errorf("通知ペイロードの構築に失敗しました: %w", err)
	}

	notif := &model.Notification{
		Category: event.Category,
		Scope:    event.Scope,
		Data:     data,
	}

	if err := s.notifRepo.Create(ctx, notif); err != nil {
		return nil, fmt.Errorf("通知の作成に失敗しました: %w", err)
	}

	s.collector.RecordNotificationEmitted(string(notif.Category))

	slog.Info("通知を発行しました",
		slog.Int64("notification_id", notif.ID),
		slog.String("category", string(notif.Category)),
	)
	return notif, nil
}

// checkEventReferences はイベントのスコープが参照する外部モデルの存在を
// 確認する。参照エラーは通知レコードの書き込み前に拒否される。
func (s *Service) checkEventReferences(ctx context.Context, scope model.Scope) error {
	if scope.CommunityID != "" {
		exists, err := s.contentRepo.CommunityExists(ctx, scope.CommunityID)
		if err != nil {
			return fmt.Errorf("コミュニティの存在確認に失敗しました: %w", err)
		}
		if !exists {
			return model.NewCommunityNotFoundError(scope.CommunityID)
		}
	}
	if scope.ThreadID != nil {
		thread, err := s.contentRepo.FindThreadByID(ctx, *scope.ThreadID)
		if err != nil {
			return fmt.Errorf("スレッドの存在確認に失敗しました: %w", err)
		}
		if thread == nil {
			return model.NewThreadNotFoundError(*scope.ThreadID)
		}
	}
	if scope.CommentID != nil {
		exists, err := s.contentRepo.CommentExists(ctx, *scope.CommentID)
		if err != nil {
			return fmt.Errorf("コメントの存在確認に失敗しました: %w", err)
		}
		if !exists {
			return model.NewCommentNotFoundError(*scope.CommentID)
		}
	}
	if scope.SnapshotSpaceID != "" {
		exists, err := s.contentRepo.SnapshotSpaceExists(ctx, scope.SnapshotSpaceID)
		if err != nil {
			return fmt.Errorf("Snapshotスペースの存在確認に失敗しました: %w", err)
		}
		if !exists {
			return model.NewSnapshotSpaceNotFoundError(scope.SnapshotSpaceID)
		}
	}
	return nil
}

// buildPayload はイベントからサニタイズ済みの不変ペイロードを構築する。
// Extraを先にマージするため、author等の既定キーはExtraで上書きできない。
func (s *Service) buildPayload(event *Event) (json.RawMessage, error) {
	payload := make(map[string]any, len(event.Extra)+4)
	for k, v := range event.Extra {
		payload[k] = v
	}
	if event.Author != "" {
		payload["author"] = s.sanitizer.Sanitize(event.Author)
	}
	if event.Title != "" {
		payload["title"] = s.sanitizer.Sanitize(event.Title)
	}
	if event.Excerpt != "" {
		payload["excerpt"] = s.sanitizer.Sanitize(event.Excerpt)
	}
	if event.TargetSubscriberID != "" {
		payload["target_subscriber_id"] = event.TargetSubscriberID
	}
	return json.Marshal(payload)
}

// FanOut は通知をアクティブな購読と照合し、受信者ごとの既読追跡行を
// 未読状態で一括作成する。リトライで同じ通知を再ファンアウトしても
// 既存行はスキップされ重複しない。戻り値は今回の受信者数。
//
// 行の作成後、新規スレッド・新規コメントの通知についてはスレッドの
// max_notif_idカーソルを引き上げる。カーソル更新の失敗はファンアウト
// 全体を失敗させず、警告ログに留める。
func (s *Service) FanOut(ctx context.Context, notif *model.Notification) (int, error) {
	start := time.Now()
	defer func() {
		s.collector.RecordFanOutLatency(time.Since(start))
	}()

	subs, err := s.subRepo.ListActiveByCategory(ctx, notif.Category)
	if err != nil {
		return 0, fmt.Errorf("照合候補の購読の取得に失敗しました: %w", err)
	}

	matched := Match(notif, subs)
	s.collector.RecordFanOutMatches(string(notif.Category), len(matched))

	if len(matched) > 0 {
		rows := make([]*model.NotificationsRead, 0, len(matched))
		for _, sub := range matched {
			rows = append(rows, &model.NotificationsRead{
				ID:             uuid.NewString(),
				SubscriptionID: sub.ID,
				NotificationID: notif.ID,
				SubscriberID:   sub.SubscriberID,
				IsRead:         false,
			})
		}
		if err := s.readRepo.BulkCreate(ctx, rows); err != nil {
			return 0, fmt.Errorf("既読追跡行の一括作成に失敗しました: %w", err)
		}
	}

	s.raiseThreadCursor(ctx, notif)

	slog.Info("通知をファンアウトしました",
		slog.Int64("notification_id", notif.ID),
		slog.String("category", string(notif.Category)),
		slog.Int("candidates", len(subs)),
		slog.Int("recipients", len(matched)),
	)
	return len(matched), nil
}

// raiseThreadCursor はスレッドのmax_notif_idカーソルをベストエフォートで
// 引き上げる。対象は新規スレッド・新規コメントのスレッド紐づき通知のみ。
func (s *Service) raiseThreadCursor(ctx context.Context, notif *model.Notification) {
	if notif.Category != model.CategoryNewThread && notif.Category != model.CategoryNewComment {
		return
	}
	if notif.ThreadID == nil {
		return
	}

	if err := s.contentRepo.RaiseThreadMaxNotifID(ctx, *notif.ThreadID, notif.ID); err != nil {
		slog.Warn("スレッドカーソルの引き上げに失敗しました",
			slog.Int64("thread_id", *notif.ThreadID),
			slog.Int64("notification_id", notif.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	s.collector.RecordCursorRaised()
}

// EmitAndFanOut はイベントの発行とファンアウトを続けて実行する。
// 発行に失敗した場合は何も書き込まれない。発行後のファンアウト失敗は
// 通知と併せてエラーを返し、呼び出し側が同じ通知で再試行できる。
func (s *Service) EmitAndFanOut(ctx context.Context, event *Event) (*model.Notification, int, error) {
	notif, err := s.Emit(ctx, event)
	if err != nil {
		return nil, 0, err
	}

	recipients, err := s.FanOut(ctx, notif)
	if err != nil {
		return notif, 0, err
	}
	return notif, recipients, nil
}
