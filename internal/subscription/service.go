// Package subscription は購読レジストリのドメインロジックを提供する。
package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/agora/internal/model"
	"github.com/hitoshi/agora/internal/repository"
)

// Service は購読レジストリのサービス層。
// 購読の冪等作成、一覧取得、有効状態・即時メールフラグの一括切り替え、
// 削除のビジネスロジックを提供する。ファンアウトエンジンは購読を
// 読み取るのみで、書き込みはすべてこのサービスを経由する。
type Service struct {
	subRepo     repository.SubscriptionRepository
	contentRepo repository.ContentRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	subRepo repository.SubscriptionRepository,
	contentRepo repository.ContentRepository,
) *Service {
	return &Service{
		subRepo:     subRepo,
		contentRepo: contentRepo,
	}
}

// CreateOrGet は購読を冪等に作成する。
// カテゴリの形状契約とスコープ参照先の存在を検証した後、同一の
// (subscriber, category, スコープの組)の既存行があればそれを返し、
// なければ新規作成して返す。同一の組への並行呼び出しは一意インデックスで
// 直列化され、一意制約違反時は既存行を再取得して返す。
func (s *Service) CreateOrGet(ctx context.Context, subscriberID string, category model.Category, scope model.Scope) (*model.Subscription, error) {
	if err := model.ValidateSubscriptionScope(category, scope); err != nil {
		return nil, err
	}

	if err := s.checkScopeReferences(ctx, scope); err != nil {
		return nil, err
	}

	existing, err := s.subRepo.FindBySubscriberAndScope(ctx, subscriberID, category, scope)
	if err != nil {
		return nil, fmt.Errorf("既存購読の検索に失敗しました: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now()
	sub := &model.Subscription{
		ID:             uuid.NewString(),
		SubscriberID:   subscriberID,
		Category:       category,
		Scope:          scope,
		IsActive:       true,
		ImmediateEmail: false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.subRepo.Create(ctx, sub); err != nil {
		// 並行作成に負けた場合は勝った側の行を返す
		if repository.IsUniqueViolation(err) {
			existing, findErr := s.subRepo.FindBySubscriberAndScope(ctx, subscriberID, category, scope)
			if findErr != nil {
				return nil, fmt.Errorf("並行作成後の購読の再取得に失敗しました: %w", findErr)
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("購読の作成に失敗しました: %w", err)
	}

	return sub, nil
}

// checkScopeReferences はスコープが参照するコミュニティ・スレッド・
// コメント・Snapshotスペースの存在を確認する。
// 参照エラーは行の書き込み前に拒否される。
func (s *Service) checkScopeReferences(ctx context.Context, scope model.Scope) error {
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

// List は購読者の全購読（非アクティブ含む）を返す。
func (s *Service) List(ctx context.Context, subscriberID string) ([]*model.Subscription, error) {
	subs, err := s.subRepo.ListBySubscriberID(ctx, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("購読一覧の取得に失敗しました: %w", err)
	}
	return subs, nil
}

// SetActive は購読のis_activeを一括で切り替える。
// 指定IDに1件でも他ユーザー所有の購読が含まれる場合、呼び出し全体を
// 所有エラーで拒否し、所有している分も変更しない。
func (s *Service) SetActive(ctx context.Context, subscriberID string, ids []string, active bool) error {
	ids, err := s.checkBulkOwnership(ctx, subscriberID, ids)
	if err != nil {
		return err
	}
	if err := s.subRepo.SetActiveByIDs(ctx, ids, active); err != nil {
		return fmt.Errorf("購読の有効状態の更新に失敗しました: %w", err)
	}
	return nil
}

// SetImmediateEmail は購読のimmediate_emailを一括で切り替える。
// 所有チェックの契約はSetActiveと同一。
func (s *Service) SetImmediateEmail(ctx context.Context, subscriberID string, ids []string, enabled bool) error {
	ids, err := s.checkBulkOwnership(ctx, subscriberID, ids)
	if err != nil {
		return err
	}
	if err := s.subRepo.SetImmediateEmailByIDs(ctx, ids, enabled); err != nil {
		return fmt.Errorf("即時メールフラグの更新に失敗しました: %w", err)
	}
	return nil
}

// checkBulkOwnership は一括操作の入力検証と全件所有チェックを行い、
// 重複を除いたID群を返す。
func (s *Service) checkBulkOwnership(ctx context.Context, subscriberID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, model.NewNoSubscriptionIDsError()
	}

	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	count, err := s.subRepo.CountOwnedByIDs(ctx, subscriberID, unique)
	if err != nil {
		return nil, fmt.Errorf("購読の所有チェックに失敗しました: %w", err)
	}
	if count != len(unique) {
		return nil, model.NewNotSubscriptionOwnerError()
	}
	return unique, nil
}

// Delete は購読を削除する。所有者のみが削除でき、依存する
// notifications_read行はデータ層のCASCADEで同時に削除される。
func (s *Service) Delete(ctx context.Context, subscriberID, subscriptionID string) error {
	sub, err := s.subRepo.FindByID(ctx, subscriptionID)
	if err != nil {
		return fmt.Errorf("購読の取得に失敗しました: %w", err)
	}
	if sub == nil {
		return model.NewSubscriptionNotFoundError(subscriptionID)
	}
	if sub.SubscriberID != subscriberID {
		return model.NewNotSubscriptionOwnerError()
	}

	if err := s.subRepo.Delete(ctx, subscriptionID); err != nil {
		return fmt.Errorf("購読の削除に失敗しました: %w", err)
	}
	return nil
}
