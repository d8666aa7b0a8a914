// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// 呼び出し元が種別判定できる原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, subscription, notification, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidSubscriptionCategory     = "INVALID_SUBSCRIPTION_CATEGORY"
	ErrCodeUnsupportedSubscriptionCategory = "UNSUPPORTED_SUBSCRIPTION_CATEGORY"
	ErrCodeInvalidNotificationCategory     = "INVALID_NOTIFICATION_CATEGORY"
	ErrCodeInvalidSubscriptionScope        = "INVALID_SUBSCRIPTION_SCOPE"
	ErrCodeNoCommunityID                   = "NO_COMMUNITY_ID"
	ErrCodeNoSnapshotSpace                 = "NO_SNAPSHOT_SPACE"
	ErrCodeNoThreadOrComment               = "NO_THREAD_OR_COMMENT"
	ErrCodeBothThreadAndComment            = "BOTH_THREAD_AND_COMMENT"
	ErrCodeNoTargetSubscriber              = "NO_TARGET_SUBSCRIBER"
	ErrCodeCommunityNotFound               = "COMMUNITY_NOT_FOUND"
	ErrCodeThreadNotFound                  = "THREAD_NOT_FOUND"
	ErrCodeCommentNotFound                 = "COMMENT_NOT_FOUND"
	ErrCodeSnapshotSpaceNotFound           = "SNAPSHOT_SPACE_NOT_FOUND"
	ErrCodeSubscriptionNotFound            = "SUBSCRIPTION_NOT_FOUND"
	ErrCodeNotSubscriptionOwner            = "NOT_USERS_SUBSCRIPTION"
	ErrCodeNoSubscriptionIDs               = "NO_SUBSCRIPTION_IDS"
	ErrCodeNoNotificationIDs               = "NO_NOTIFICATION_IDS"
)

// NewInvalidSubscriptionCategoryError は未知のカテゴリが指定された場合のエラーを生成する。
func NewInvalidSubscriptionCategoryError(category Category) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSubscriptionCategory,
		Message:  fmt.Sprintf("無効な購読カテゴリです: %s", category),
		Category: "validation",
		Action:   "サポートされているカテゴリを指定してください。",
	}
}

// NewUnsupportedSubscriptionCategoryError は存在するが購読不可のカテゴリ
// （thread-edit, comment-edit）が指定された場合のエラーを生成する。
func NewUnsupportedSubscriptionCategoryError(category Category) *APIError {
	return &APIError{
		Code:     ErrCodeUnsupportedSubscriptionCategory,
		Message:  fmt.Sprintf("このカテゴリの購読はサポートされていません: %s", category),
		Category: "validation",
		Action:   "購読可能なカテゴリを指定してください。",
	}
}

// NewInvalidNotificationCategoryError は発行不可のカテゴリで通知を
// 発行しようとした場合のエラーを生成する。
func NewInvalidNotificationCategoryError(category Category) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidNotificationCategory,
		Message:  fmt.Sprintf("無効な通知カテゴリです: %s", category),
		Category: "validation",
		Action:   "発行可能なカテゴリを指定してください。",
	}
}

// NewInvalidSubscriptionScopeError はカテゴリに無関係なスコープフィールドが
// 指定された場合のエラーを生成する。
func NewInvalidSubscriptionScopeError(category Category) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSubscriptionScope,
		Message:  fmt.Sprintf("カテゴリに許可されていないスコープが指定されています: %s", category),
		Category: "validation",
		Action:   "カテゴリの形状契約に従ってスコープを指定してください。",
	}
}

// NewNoCommunityIDError はcommunity_id必須カテゴリでの欠落エラーを生成する。
func NewNoCommunityIDError(category Category) *APIError {
	return &APIError{
		Code:     ErrCodeNoCommunityID,
		Message:  fmt.Sprintf("カテゴリ %s にはcommunity_idが必要です", category),
		Category: "validation",
		Action:   "community_idを指定してください。",
	}
}

// NewNoSnapshotSpaceError はsnapshot_space_id欠落エラーを生成する。
func NewNoSnapshotSpaceError() *APIError {
	return &APIError{
		Code:     ErrCodeNoSnapshotSpace,
		Message:  "snapshot-proposalにはsnapshot_space_idが必要です",
		Category: "validation",
		Action:   "snapshot_space_idを指定してください。",
	}
}

// NewNoThreadOrCommentError はthread_id/comment_idがいずれも未指定の場合の
// エラーを生成する。
func NewNoThreadOrCommentError() *APIError {
	return &APIError{
		Code:     ErrCodeNoThreadOrComment,
		Message:  "thread_idまたはcomment_idのいずれか一方が必要です",
		Category: "validation",
		Action:   "thread_idかcomment_idのどちらか一方を指定してください。",
	}
}

// NewBothThreadAndCommentError はthread_id/comment_idが両方指定された場合の
// エラーを生成する。
func NewBothThreadAndCommentError() *APIError {
	return &APIError{
		Code:     ErrCodeBothThreadAndComment,
		Message:  "thread_idとcomment_idは同時に指定できません",
		Category: "validation",
		Action:   "thread_idかcomment_idのどちらか一方のみを指定してください。",
	}
}

// NewNoTargetSubscriberError はメンション・コラボレーション通知で
// 対象購読者が未指定の場合のエラーを生成する。
func NewNoTargetSubscriberError(category Category) *APIError {
	return &APIError{
		Code:     ErrCodeNoTargetSubscriber,
		Message:  fmt.Sprintf("カテゴリ %s には対象購読者IDが必要です", category),
		Category: "validation",
		Action:   "target_subscriber_idを指定してください。",
	}
}

// NewCommunityNotFoundError はコミュニティ未検出エラーを生成する。
func NewCommunityNotFoundError(communityID string) *APIError {
	return &APIError{
		Code:     ErrCodeCommunityNotFound,
		Message:  fmt.Sprintf("指定されたコミュニティが見つかりません: %s", communityID),
		Category: "validation",
		Action:   "community_idを確認してください。",
	}
}

// NewThreadNotFoundError はスレッド未検出エラーを生成する。
func NewThreadNotFoundError(threadID int64) *APIError {
	return &APIError{
		Code:     ErrCodeThreadNotFound,
		Message:  fmt.Sprintf("指定されたスレッドが見つかりません: %d", threadID),
		Category: "validation",
		Action:   "thread_idを確認してください。",
	}
}

// NewCommentNotFoundError はコメント未検出エラーを生成する。
func NewCommentNotFoundError(commentID int64) *APIError {
	return &APIError{
		Code:     ErrCodeCommentNotFound,
		Message:  fmt.Sprintf("指定されたコメントが見つかりません: %d", commentID),
		Category: "validation",
		Action:   "comment_idを確認してください。",
	}
}

// NewSnapshotSpaceNotFoundError はSnapshotスペース未検出エラーを生成する。
func NewSnapshotSpaceNotFoundError(spaceID string) *APIError {
	return &APIError{
		Code:     ErrCodeSnapshotSpaceNotFound,
		Message:  fmt.Sprintf("指定されたSnapshotスペースが見つかりません: %s", spaceID),
		Category: "validation",
		Action:   "snapshot_space_idを確認してください。",
	}
}

// NewSubscriptionNotFoundError は購読未検出エラーを生成する。
func NewSubscriptionNotFoundError(subscriptionID string) *APIError {
	return &APIError{
		Code:     ErrCodeSubscriptionNotFound,
		Message:  fmt.Sprintf("指定された購読が見つかりません: %s", subscriptionID),
		Category: "subscription",
		Action:   "購読IDを確認してください。",
	}
}

// NewNotSubscriptionOwnerError は他ユーザーの購読に対する変更操作の
// エラーを生成する。対象IDが1件でも他ユーザー所有であれば呼び出し全体が
// このエラーで拒否される。
func NewNotSubscriptionOwnerError() *APIError {
	return &APIError{
		Code:     ErrCodeNotSubscriptionOwner,
		Message:  "自分が所有していない購読は変更できません。",
		Category: "subscription",
		Action:   "自分の購読のIDのみを指定してください。",
	}
}

// NewNoSubscriptionIDsError は購読IDが1件も指定されていない一括操作の
// エラーを生成する。
func NewNoSubscriptionIDsError() *APIError {
	return &APIError{
		Code:     ErrCodeNoSubscriptionIDs,
		Message:  "購読IDが指定されていません。",
		Category: "validation",
		Action:   "1件以上の購読IDを指定してください。",
	}
}

// NewNoNotificationIDsError は通知IDが1件も指定されていない既読化操作の
// エラーを生成する。
func NewNoNotificationIDsError() *APIError {
	return &APIError{
		Code:     ErrCodeNoNotificationIDs,
		Message:  "通知IDが指定されていません。",
		Category: "validation",
		Action:   "1件以上の通知IDを指定してください。",
	}
}
