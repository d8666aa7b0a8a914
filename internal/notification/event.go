// Package notification は通知の発行とファンアウトのドメインロジックを提供する。
package notification

import "github.com/hitoshi/agora/internal/model"

// Event はエンジンに渡される発生済みイベントを表す。
// 上流のアクション（スレッド作成、コメント投稿、リアクション、チェーン
// イベント観測、Snapshotプロポーザル受信）がEmitAndFanOutの入力として
// 構築する。
type Event struct {
	// Category はイベント種別。
	Category model.Category

	// Scope はイベント対象の識別フィールド。カテゴリの必須フィールドを
	// 満たす必要があり、追加フィールドは許容される（NewThreadイベントは
	// カーソル更新のためThreadIDを併せて運ぶ）。
	Scope model.Scope

	// TargetSubscriberID はメンション・コラボレーション通知の対象購読者。
	// 該当カテゴリでは必須、他カテゴリでは無視される。
	TargetSubscriberID string

	// Author はイベント発生者の表示名。保存前にサニタイズされる。
	Author string

	// Title はイベント対象のタイトル。保存前にサニタイズされる。
	Title string

	// Excerpt はイベント本文の抜粋。保存前にサニタイズされる。
	Excerpt string

	// Extra は上記以外のイベント固有の詳細（ブロック番号、プロポーザルID等）。
	// そのままペイロードにマージされる。
	Extra map[string]any
}

// Validate はイベントの形状契約を検証する。
// カテゴリごとの必須スコープに加え、メンション・コラボレーションでは
// 対象購読者IDの指定を要求する。
func (e *Event) Validate() error {
	if err := model.ValidateEventScope(e.Category, e.Scope); err != nil {
		return err
	}
	if e.Category == model.CategoryNewMention || e.Category == model.CategoryNewCollaboration {
		if e.TargetSubscriberID == "" {
			return model.NewNoTargetSubscriberError(e.Category)
		}
	}
	return nil
}
