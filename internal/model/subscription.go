// Package model はドメインモデルを定義する。
package model

import "time"

// Subscription は購読者が将来のイベントカテゴリへ宣言した永続的な関心を表す。
// (subscriber_id, category, スコープの組)で一意であり、同一の組での再作成は
// 既存行を返す（冪等作成）。
type Subscription struct {
	ID           string
	SubscriberID string
	Category     Category
	Scope
	IsActive       bool
	ImmediateEmail bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ScopeEquals は2つのスコープが同一の対象を指すかを判定する。
// nilポインタ同士は等しいとみなす。
func (s Scope) ScopeEquals(other Scope) bool {
	if s.CommunityID != other.CommunityID || s.SnapshotSpaceID != other.SnapshotSpaceID {
		return false
	}
	if !int64PtrEquals(s.ThreadID, other.ThreadID) {
		return false
	}
	return int64PtrEquals(s.CommentID, other.CommentID)
}

func int64PtrEquals(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
