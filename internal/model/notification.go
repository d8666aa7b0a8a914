// Package model はドメインモデルを定義する。
package model

import (
	"encoding/json"
	"time"
)

// Notification は発生した1イベントの正準レコードを表す。
// Emitterにより一度だけ作成され、以後不変。IDはBIGSERIALで単調増加し、
// スレッドのmax_notif_idカーソルの比較対象になる。
type Notification struct {
	ID       int64
	Category Category
	Scope
	Data      json.RawMessage // イベント固有の詳細（author, excerpt, 対象購読者等）
	CreatedAt time.Time
}

// notificationData はDataのうちエンジンが解釈するフィールドのみを表す。
type notificationData struct {
	TargetSubscriberID string `json:"target_subscriber_id"`
}

// TargetSubscriberID はメンション・コラボレーション通知の対象購読者IDを
// ペイロードから取り出す。未指定またはペイロード不正の場合は空文字列を返す。
func (n *Notification) TargetSubscriberID() string {
	if len(n.Data) == 0 {
		return ""
	}
	var d notificationData
	if err := json.Unmarshal(n.Data, &d); err != nil {
		return ""
	}
	return d.TargetSubscriberID
}

// NotificationsRead は購読者ごと・通知ごとの既読追跡レコードを表す。
// ファンアウト時に(subscription_id, notification_id)の組で一意に作成され、
// is_readの反転はRead-State Trackerのみが行う。
type NotificationsRead struct {
	ID             string
	SubscriptionID string
	NotificationID int64
	SubscriberID   string // 所有購読のsubscriber_idの非正規化コピー
	IsRead         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NotificationWithState は通知と購読者ごとの既読状態を結合したモデル。
// notifications_readテーブルとJOINして取得される。
type NotificationWithState struct {
	Notification
	SubscriptionID string
	IsRead         bool
}
