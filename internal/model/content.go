// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザー（購読者）を表す。
// 作成・認証は外部のアカウント層が担い、このエンジンはIDとメールのみを参照する。
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session はユーザーのログインセッションを表す。
// 外部の認証層が作成し、このエンジンは購読者IDの解決にのみ使用する。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Thread は通知の親となるスレッドを表す。外部のコンテンツモデルが所有し、
// このエンジンは存在確認とmax_notif_idカーソルの引き上げにのみ関与する。
type Thread struct {
	ID          int64
	CommunityID string
	Title       string
	// MaxNotifID はスレッド定義的な活動（新規スレッド・新規コメント）に
	// 紐づく最新通知IDの単調非減少ウォーターマーク。
	MaxNotifID int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
