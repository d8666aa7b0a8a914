package notification

import (
	"encoding/json"
	"testing"

	"github.com/hitoshi/agora/internal/model"
)

func int64Ptr(v int64) *int64 { return &v }

func sub(id, subscriberID string, category model.Category, scope model.Scope) *model.Subscription {
	return &model.Subscription{
		ID:           id,
		SubscriberID: subscriberID,
		Category:     category,
		Scope:        scope,
		IsActive:     true,
	}
}

// TestMatch_CommunityCategories はコミュニティ単位カテゴリの照合を検証する。
func TestMatch_CommunityCategories(t *testing.T) {
	n := &model.Notification{
		ID:       1,
		Category: model.CategoryNewThread,
		Scope:    model.Scope{CommunityID: "ethereum", ThreadID: int64Ptr(42)},
	}
	subs := []*model.Subscription{
		sub("sub-1", "user-1", model.CategoryNewThread, model.Scope{CommunityID: "ethereum"}),
		sub("sub-2", "user-2", model.CategoryNewThread, model.Scope{CommunityID: "polkadot"}),
		sub("sub-3", "user-3", model.CategoryNewThread, model.Scope{CommunityID: "ethereum"}),
	}

	matched := Match(n, subs)
	if len(matched) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matched))
	}
	if matched[0].ID != "sub-1" || matched[1].ID != "sub-3" {
		t.Errorf("unexpected matched ids: %s, %s", matched[0].ID, matched[1].ID)
	}
}

// TestMatch_ThreadAndCommentScopes はスレッド・コメント排他スコープの照合を検証する。
func TestMatch_ThreadAndCommentScopes(t *testing.T) {
	tests := []struct {
		name    string
		notif   model.Scope
		subs    []*model.Subscription
		wantIDs []string
	}{
		{
			name:  "スレッドイベントはスレッド購読のみ照合",
			notif: model.Scope{CommunityID: "ethereum", ThreadID: int64Ptr(42)},
			subs: []*model.Subscription{
				sub("sub-thread", "user-1", model.CategoryNewComment, model.Scope{CommunityID: "ethereum", ThreadID: int64Ptr(42)}),
				sub("sub-other-thread", "user-2", model.CategoryNewComment, model.Scope{CommunityID: "ethereum", ThreadID: int64Ptr(43)}),
				sub("sub-comment", "user-3", model.CategoryNewComment, model.Scope{CommunityID: "ethereum", CommentID: int64Ptr(42)}),
			},
			wantIDs: []string{"sub-thread"},
		},
		{
			name:  "コメントイベントはコメント購読のみ照合",
			notif: model.Scope{CommunityID: "ethereum", CommentID: int64Ptr(7)},
			subs: []*model.Subscription{
				sub("sub-thread", "user-1", model.CategoryNewComment, model.Scope{CommunityID: "ethereum", ThreadID: int64Ptr(7)}),
				sub("sub-comment", "user-2", model.CategoryNewComment, model.Scope{CommunityID: "ethereum", CommentID: int64Ptr(7)}),
			},
			wantIDs: []string{"sub-comment"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &model.Notification{ID: 1, Category: model.CategoryNewComment, Scope: tt.notif}
			matched := Match(n, tt.subs)
			if len(matched) != len(tt.wantIDs) {
				t.Fatalf("expected %d matches, got %d", len(tt.wantIDs), len(matched))
			}
			for i, want := range tt.wantIDs {
				if matched[i].ID != want {
					t.Errorf("matched[%d].ID = %q, want %q", i, matched[i].ID, want)
				}
			}
		})
	}
}

// TestMatch_SnapshotProposal はSnapshotスペースの照合を検証する。
func TestMatch_SnapshotProposal(t *testing.T) {
	n := &model.Notification{
		ID:       1,
		Category: model.CategorySnapshotProposal,
		Scope:    model.Scope{SnapshotSpaceID: "aave.eth"},
	}
	subs := []*model.Subscription{
		sub("sub-1", "user-1", model.CategorySnapshotProposal, model.Scope{SnapshotSpaceID: "aave.eth"}),
		sub("sub-2", "user-2", model.CategorySnapshotProposal, model.Scope{SnapshotSpaceID: "uniswap.eth"}),
	}

	matched := Match(n, subs)
	if len(matched) != 1 || matched[0].ID != "sub-1" {
		t.Fatalf("expected only sub-1 to match, got %d matches", len(matched))
	}
}

// TestMatch_MentionTargetsSingleSubscriber はメンションがペイロードの対象購読者
// のみに届くことを検証する。
func TestMatch_MentionTargetsSingleSubscriber(t *testing.T) {
	n := &model.Notification{
		ID:       1,
		Category: model.CategoryNewMention,
		Data:     json.RawMessage(`{"target_subscriber_id":"user-2"}`),
	}
	subs := []*model.Subscription{
		sub("sub-1", "user-1", model.CategoryNewMention, model.Scope{}),
		sub("sub-2", "user-2", model.CategoryNewMention, model.Scope{}),
		sub("sub-3", "user-3", model.CategoryNewMention, model.Scope{}),
	}

	matched := Match(n, subs)
	if len(matched) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matched))
	}
	if matched[0].SubscriberID != "user-2" {
		t.Errorf("SubscriberID = %q, want %q", matched[0].SubscriberID, "user-2")
	}
}

// TestMatch_MentionWithoutTarget は対象購読者のないメンション通知が誰にも
// 届かないことを検証する。
func TestMatch_MentionWithoutTarget(t *testing.T) {
	n := &model.Notification{
		ID:       1,
		Category: model.CategoryNewMention,
		Data:     json.RawMessage(`{}`),
	}
	subs := []*model.Subscription{
		sub("sub-1", "user-1", model.CategoryNewMention, model.Scope{}),
	}

	if matched := Match(n, subs); len(matched) != 0 {
		t.Fatalf("expected no matches, got %d", len(matched))
	}
}

// TestMatch_EmptyCandidates は候補なしで空の結果を返すことを検証する。
func TestMatch_EmptyCandidates(t *testing.T) {
	n := &model.Notification{ID: 1, Category: model.CategoryNewThread, Scope: model.Scope{CommunityID: "ethereum"}}
	if matched := Match(n, nil); len(matched) != 0 {
		t.Fatalf("expected no matches, got %d", len(matched))
	}
}
