// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/agora/internal/model"
)

// SubscriptionRepository は購読データの永続化インターフェース。
type SubscriptionRepository interface {
	// FindByID は指定IDの購読を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Subscription, error)

	// FindBySubscriberAndScope は(subscriber, category, スコープの組)で購読を
	// 検索する。NULLセーフな完全一致で比較する。見つからない場合はnilを返す。
	FindBySubscriberAndScope(ctx context.Context, subscriberID string, category model.Category, scope model.Scope) (*model.Subscription, error)

	// Create は購読を作成する。同一スコープの組が既に存在する場合は
	// 一意制約違反エラーを返す（IsUniqueViolationで判定可能）。
	Create(ctx context.Context, sub *model.Subscription) error

	// ListBySubscriberID は購読者の全購読（非アクティブ含む）を返す。
	ListBySubscriberID(ctx context.Context, subscriberID string) ([]*model.Subscription, error)

	// ListActiveByCategory は指定カテゴリのアクティブな全購読を返す。
	// ファンアウトエンジンの照合候補取得に使用する。
	ListActiveByCategory(ctx context.Context, category model.Category) ([]*model.Subscription, error)

	// CountOwnedByIDs は指定ID群のうちsubscriberIDが所有する件数を返す。
	// 一括変更操作の全件所有チェックに使用する。
	CountOwnedByIDs(ctx context.Context, subscriberID string, ids []string) (int, error)

	// SetActiveByIDs は指定ID群のis_activeを一括更新する。
	SetActiveByIDs(ctx context.Context, ids []string, active bool) error

	// SetImmediateEmailByIDs は指定ID群のimmediate_emailを一括更新する。
	SetImmediateEmailByIDs(ctx context.Context, ids []string, enabled bool) error

	// Delete は指定IDの購読を削除する。
	// 依存するnotifications_read行はCASCADE削除される。
	Delete(ctx context.Context, id string) error
}

// NotificationRepository は通知データの永続化インターフェース。
// 通知は書き込み一度・読み取り多数で、作成後は不変。
type NotificationRepository interface {
	// Create は通知を作成し、採番されたIDをnotif.IDに設定する。
	Create(ctx context.Context, notif *model.Notification) error

	// FindByID は指定IDの通知を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Notification, error)

	// ListBySubscriberWithState は購読者に届いた通知を既読状態付きで
	// 新しい順に返す。
	ListBySubscriberWithState(ctx context.Context, subscriberID string, limit int) ([]model.NotificationWithState, error)
}

// NotificationsReadRepository は既読追跡レコードの永続化インターフェース。
// 挿入はファンアウトエンジンのみ、更新・削除はRead-State Trackerのみが行う。
type NotificationsReadRepository interface {
	// BulkCreate は既読追跡行を一括作成する。
	// (subscription_id, notification_id)が既存の行はスキップされ、
	// 同一発行のリトライに対して冪等に振る舞う。
	BulkCreate(ctx context.Context, rows []*model.NotificationsRead) error

	// MarkRead は購読者が所有する行のうちnotification_idが指定集合に
	// 含まれるものをis_read=trueに更新し、更新行数を返す。
	// 他ユーザー所有の行は暗黙に除外される。
	MarkRead(ctx context.Context, subscriberID string, notificationIDs []int64) (int64, error)

	// DeleteRead は購読者の既読行を全て削除し、削除行数を返す。冪等。
	DeleteRead(ctx context.Context, subscriberID string) (int64, error)
}

// ContentRepository は外部コラボレータのコンテンツモデルへの参照
// インターフェース。存在確認とスレッドカーソルの引き上げのみを提供する。
type ContentRepository interface {
	// CommunityExists は指定IDのコミュニティの存在を確認する。
	CommunityExists(ctx context.Context, id string) (bool, error)

	// FindThreadByID は指定IDのスレッドを取得する。見つからない場合はnilを返す。
	FindThreadByID(ctx context.Context, id int64) (*model.Thread, error)

	// CommentExists は指定IDのコメントの存在を確認する。
	CommentExists(ctx context.Context, id int64) (bool, error)

	// SnapshotSpaceExists は指定IDのSnapshotスペースの存在を確認する。
	SnapshotSpaceExists(ctx context.Context, id string) (bool, error)

	// RaiseThreadMaxNotifID はスレッドのmax_notif_idを
	// max(現在値, notifID)へ引き上げる。比較引き上げのみで後退はしない。
	// スレッドが存在しない場合はエラーを返す。
	RaiseThreadMaxNotifID(ctx context.Context, threadID, notifID int64) error
}

// SessionRepository はセッションデータの参照インターフェース。
// セッションの作成・削除は外部の認証層が担う。
type SessionRepository interface {
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
}
