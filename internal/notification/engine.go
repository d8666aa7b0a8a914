package notification

import (
	"github.com/hitoshi/agora/internal/model"
)

// Match は通知と照合候補の購読群から受信者となる購読を選び出す。
// 副作用のない純粋な照合処理で、候補はすべて通知と同一カテゴリかつ
// アクティブであることを前提とする。
func Match(n *model.Notification, subs []*model.Subscription) []*model.Subscription {
	matched := make([]*model.Subscription, 0, len(subs))
	for _, sub := range subs {
		if matchOne(n, sub) {
			matched = append(matched, sub)
		}
	}
	return matched
}

// matchOne は1件の購読が通知の対象かどうかを判定する。
func matchOne(n *model.Notification, sub *model.Subscription) bool {
	switch n.Category {
	case model.CategoryNewThread, model.CategoryChainEvent:
		// コミュニティ単位の購読
		return sub.CommunityID == n.CommunityID

	case model.CategoryNewComment, model.CategoryNewReaction:
		// スレッド購読とコメント購読は排他。イベント側も排他なので、
		// 同じ側のIDが一致する場合のみ受信者になる。
		if sub.ThreadID != nil {
			return n.ThreadID != nil && *sub.ThreadID == *n.ThreadID
		}
		if sub.CommentID != nil {
			return n.CommentID != nil && *sub.CommentID == *n.CommentID
		}
		return false

	case model.CategorySnapshotProposal:
		return sub.SnapshotSpaceID == n.SnapshotSpaceID

	case model.CategoryNewMention, model.CategoryNewCollaboration:
		// 購読者ごとにグローバル。ペイロードの対象購読者本人のみが受信する。
		target := n.TargetSubscriberID()
		return target != "" && sub.SubscriberID == target
	}

	return false
}
