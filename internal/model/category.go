// Package model はドメインモデルを定義する。
package model

// Category は購読・通知が追跡するイベント種別を表す。
// 値はストレージおよびAPIの両方でそのまま使用される固定の識別子。
type Category string

const (
	// CategoryNewThread はコミュニティ内の新規スレッド作成イベント。
	CategoryNewThread Category = "new-thread-creation"
	// CategoryNewComment はスレッドまたはコメントへの新規コメントイベント。
	CategoryNewComment Category = "new-comment-creation"
	// CategoryNewReaction はスレッドまたはコメントへのリアクションイベント。
	CategoryNewReaction Category = "new-reaction"
	// CategoryNewMention はユーザーへのメンションイベント。購読者ごとにグローバル。
	CategoryNewMention Category = "new-mention"
	// CategoryNewCollaboration はスレッド共同編集者への追加イベント。購読者ごとにグローバル。
	CategoryNewCollaboration Category = "new-collaboration"
	// CategoryChainEvent はコミュニティに紐づくチェーンイベント。
	CategoryChainEvent Category = "chain-event"
	// CategorySnapshotProposal はSnapshotスペースのプロポーザルイベント。
	CategorySnapshotProposal Category = "snapshot-proposal"
	// CategoryThreadEdit はスレッド編集イベント。購読は未サポート。
	CategoryThreadEdit Category = "thread-edit"
	// CategoryCommentEdit はコメント編集イベント。購読は未サポート。
	CategoryCommentEdit Category = "comment-edit"
)

// Scope は購読・通知を特定の対象に絞り込む識別フィールドの組。
// どのフィールドが必須・禁止かはカテゴリごとの形状契約で決まる。
type Scope struct {
	CommunityID     string
	ThreadID        *int64
	CommentID       *int64
	SnapshotSpaceID string
}

// ValidateSubscriptionScope は購読作成時の形状契約を検証する。
// カテゴリごとに必須フィールドの欠落、排他フィールドの同時指定、
// および無関係フィールドの指定を拒否する。
// 形状契約はデータ層（migrationsのCHECK制約）でも同一内容が強制される。
func ValidateSubscriptionScope(category Category, scope Scope) error {
	switch category {
	case CategoryNewThread, CategoryChainEvent:
		if scope.CommunityID == "" {
			return NewNoCommunityIDError(category)
		}
		if scope.ThreadID != nil || scope.CommentID != nil || scope.SnapshotSpaceID != "" {
			return NewInvalidSubscriptionScopeError(category)
		}
	case CategoryNewComment, CategoryNewReaction:
		if scope.CommunityID == "" {
			return NewNoCommunityIDError(category)
		}
		if scope.ThreadID != nil && scope.CommentID != nil {
			return NewBothThreadAndCommentError()
		}
		if scope.ThreadID == nil && scope.CommentID == nil {
			return NewNoThreadOrCommentError()
		}
		if scope.SnapshotSpaceID != "" {
			return NewInvalidSubscriptionScopeError(category)
		}
	case CategorySnapshotProposal:
		if scope.SnapshotSpaceID == "" {
			return NewNoSnapshotSpaceError()
		}
		if scope.CommunityID != "" || scope.ThreadID != nil || scope.CommentID != nil {
			return NewInvalidSubscriptionScopeError(category)
		}
	case CategoryNewMention, CategoryNewCollaboration:
		// 購読者ごとにグローバル。スコープは空でなければならない。
		if scope.CommunityID != "" || scope.ThreadID != nil || scope.CommentID != nil || scope.SnapshotSpaceID != "" {
			return NewInvalidSubscriptionScopeError(category)
		}
	case CategoryThreadEdit, CategoryCommentEdit:
		return NewUnsupportedSubscriptionCategoryError(category)
	default:
		return NewInvalidSubscriptionCategoryError(category)
	}
	return nil
}

// ValidateEventScope は通知発行時の形状契約を検証する。
// 購読の形状契約と異なり、必須フィールドの存在のみを要求し、
// 追加フィールドは許容する（例: NewThreadイベントはカーソル更新のため
// thread_idを併せて運ぶ）。
func ValidateEventScope(category Category, scope Scope) error {
	switch category {
	case CategoryNewThread, CategoryChainEvent:
		if scope.CommunityID == "" {
			return NewNoCommunityIDError(category)
		}
	case CategoryNewComment, CategoryNewReaction:
		if scope.CommunityID == "" {
			return NewNoCommunityIDError(category)
		}
		if scope.ThreadID != nil && scope.CommentID != nil {
			return NewBothThreadAndCommentError()
		}
		if scope.ThreadID == nil && scope.CommentID == nil {
			return NewNoThreadOrCommentError()
		}
	case CategorySnapshotProposal:
		if scope.SnapshotSpaceID == "" {
			return NewNoSnapshotSpaceError()
		}
	case CategoryNewMention, CategoryNewCollaboration:
		// 対象購読者はペイロード側で指定される。スコープ制約なし。
	default:
		return NewInvalidNotificationCategoryError(category)
	}
	return nil
}
