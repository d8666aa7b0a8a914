package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/agora/internal/model"
)

// PostgresSubscriptionRepo はPostgreSQLを使用した購読リポジトリ。
type PostgresSubscriptionRepo struct {
	db *sql.DB
}

// NewPostgresSubscriptionRepo はPostgresSubscriptionRepoを生成する。
func NewPostgresSubscriptionRepo(db *sql.DB) *PostgresSubscriptionRepo {
	return &PostgresSubscriptionRepo{db: db}
}

// IsUniqueViolation はPostgreSQLの一意制約違反エラーかを判定する。
// createOrGetの同時実行レースの解決に使用する。
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

const subscriptionColumns = `id, subscriber_id, category, community_id, thread_id, comment_id, snapshot_space_id, is_active, immediate_email, created_at, updated_at`

// scanSubscription は1行をSubscriptionモデルに読み取る。
func scanSubscription(row interface{ Scan(...any) error }) (*model.Subscription, error) {
	sub := &model.Subscription{}
	var communityID, snapshotSpaceID sql.NullString
	var threadID, commentID sql.NullInt64

	err := row.Scan(
		&sub.ID, &sub.SubscriberID, &sub.Category,
		&communityID, &threadID, &commentID, &snapshotSpaceID,
		&sub.IsActive, &sub.ImmediateEmail, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	sub.CommunityID = communityID.String
	sub.SnapshotSpaceID = snapshotSpaceID.String
	if threadID.Valid {
		v := threadID.Int64
		sub.ThreadID = &v
	}
	if commentID.Valid {
		v := commentID.Int64
		sub.CommentID = &v
	}
	return sub, nil
}

// nullString は空文字列をNULLに変換する。
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullInt64 はnilポインタをNULLに変換する。
func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

// FindByID は指定IDの購読を取得する。見つからない場合はnilを返す。
func (r *PostgresSubscriptionRepo) FindByID(ctx context.Context, id string) (*model.Subscription, error) {
	sub, err := scanSubscription(r.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("購読の取得に失敗しました: %w", err)
	}
	return sub, nil
}

// FindBySubscriberAndScope は(subscriber, category, スコープの組)で購読を検索する。
// NULLセーフな完全一致（IS NOT DISTINCT FROM）で比較する。見つからない場合はnilを返す。
func (r *PostgresSubscriptionRepo) FindBySubscriberAndScope(ctx context.Context, subscriberID string, category model.Category, scope model.Scope) (*model.Subscription, error) {
	sub, err := scanSubscription(r.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions
		 WHERE subscriber_id = $1 AND category = $2
		   AND community_id IS NOT DISTINCT FROM $3
		   AND thread_id IS NOT DISTINCT FROM $4
		   AND comment_id IS NOT DISTINCT FROM $5
		   AND snapshot_space_id IS NOT DISTINCT FROM $6`,
		subscriberID, category,
		nullString(scope.CommunityID), nullInt64(scope.ThreadID),
		nullInt64(scope.CommentID), nullString(scope.SnapshotSpaceID),
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("スコープによる購読の検索に失敗しました: %w", err)
	}
	return sub, nil
}

// Create は購読を作成する。形状契約はCHECK制約でも強制されるため、
// 不正な組をこの層から直接挿入しようとしても失敗する。
func (r *PostgresSubscriptionRepo) Create(ctx context.Context, sub *model.Subscription) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, subscriber_id, category, community_id, thread_id, comment_id, snapshot_space_id, is_active, immediate_email, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		sub.ID, sub.SubscriberID, sub.Category,
		nullString(sub.CommunityID), nullInt64(sub.ThreadID),
		nullInt64(sub.CommentID), nullString(sub.SnapshotSpaceID),
		sub.IsActive, sub.ImmediateEmail, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("購読の作成に失敗しました: %w", err)
	}
	return nil
}

// ListBySubscriberID は購読者の全購読（非アクティブ含む）を返す。
// 書き込みがない限り順序は作成日時順で安定する。
func (r *PostgresSubscriptionRepo) ListBySubscriberID(ctx context.Context, subscriberID string) ([]*model.Subscription, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions
		 WHERE subscriber_id = $1 ORDER BY created_at ASC, id ASC`,
		subscriberID,
	)
	if err != nil {
		return nil, fmt.Errorf("購読一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectSubscriptions(rows)
}

// ListActiveByCategory は指定カテゴリのアクティブな全購読を返す。
func (r *PostgresSubscriptionRepo) ListActiveByCategory(ctx context.Context, category model.Category) ([]*model.Subscription, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions
		 WHERE category = $1 AND is_active = TRUE`,
		category,
	)
	if err != nil {
		return nil, fmt.Errorf("アクティブ購読の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectSubscriptions(rows)
}

// collectSubscriptions は結果セット全体をSubscriptionモデルに読み取る。
func collectSubscriptions(rows *sql.Rows) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("購読行の読み取りに失敗しました: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("購読一覧の走査に失敗しました: %w", err)
	}
	return subs, nil
}

// CountOwnedByIDs は指定ID群のうちsubscriberIDが所有する件数を返す。
func (r *PostgresSubscriptionRepo) CountOwnedByIDs(ctx context.Context, subscriberID string, ids []string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1 AND id = ANY($2)`,
		subscriberID, pq.Array(ids),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("購読の所有件数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// SetActiveByIDs は指定ID群のis_activeを一括更新する。
func (r *PostgresSubscriptionRepo) SetActiveByIDs(ctx context.Context, ids []string, active bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE subscriptions SET is_active = $2, updated_at = NOW() WHERE id = ANY($1)`,
		pq.Array(ids), active,
	)
	if err != nil {
		return fmt.Errorf("購読の有効状態の更新に失敗しました: %w", err)
	}
	return nil
}

// SetImmediateEmailByIDs は指定ID群のimmediate_emailを一括更新する。
func (r *PostgresSubscriptionRepo) SetImmediateEmailByIDs(ctx context.Context, ids []string, enabled bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE subscriptions SET immediate_email = $2, updated_at = NOW() WHERE id = ANY($1)`,
		pq.Array(ids), enabled,
	)
	if err != nil {
		return fmt.Errorf("即時メールフラグの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDの購読を削除する。依存するnotifications_read行は
// 外部キーのON DELETE CASCADEで同時に削除される。
func (r *PostgresSubscriptionRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("購読の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("購読が見つかりません: %s", id)
	}
	return nil
}

// compile-time interface check
var _ SubscriptionRepository = (*PostgresSubscriptionRepo)(nil)
