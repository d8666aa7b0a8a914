package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/agora/internal/model"
)

// PostgresNotificationRepo はPostgreSQLを使用した通知リポジトリ。
// 通知は書き込み一度・読み取り多数で、このエンジンからの更新・削除はない。
type PostgresNotificationRepo struct {
	db *sql.DB
}

// NewPostgresNotificationRepo はPostgresNotificationRepoを生成する。
func NewPostgresNotificationRepo(db *sql.DB) *PostgresNotificationRepo {
	return &PostgresNotificationRepo{db: db}
}

// Create は通知を作成し、BIGSERIALで採番されたIDと作成日時をモデルに設定する。
func (r *PostgresNotificationRepo) Create(ctx context.Context, notif *model.Notification) error {
	data := notif.Data
	if len(data) == 0 {
		data = []byte(`{}`)
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO notifications (category, community_id, thread_id, comment_id, snapshot_space_id, data)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		notif.Category,
		nullString(notif.CommunityID), nullInt64(notif.ThreadID),
		nullInt64(notif.CommentID), nullString(notif.SnapshotSpaceID),
		[]byte(data),
	).Scan(&notif.ID, &notif.CreatedAt)
	if err != nil {
		return fmt.Errorf("通知の作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDの通知を取得する。見つからない場合はnilを返す。
func (r *PostgresNotificationRepo) FindByID(ctx context.Context, id int64) (*model.Notification, error) {
	notif := &model.Notification{}
	var communityID, snapshotSpaceID sql.NullString
	var threadID, commentID sql.NullInt64
	var data []byte

	err := r.db.QueryRowContext(ctx,
		`SELECT id, category, community_id, thread_id, comment_id, snapshot_space_id, data, created_at
		 FROM notifications WHERE id = $1`,
		id,
	).Scan(&notif.ID, &notif.Category, &communityID, &threadID, &commentID, &snapshotSpaceID, &data, &notif.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("通知の取得に失敗しました: %w", err)
	}

	notif.CommunityID = communityID.String
	notif.SnapshotSpaceID = snapshotSpaceID.String
	if threadID.Valid {
		v := threadID.Int64
		notif.ThreadID = &v
	}
	if commentID.Valid {
		v := commentID.Int64
		notif.CommentID = &v
	}
	notif.Data = data
	return notif, nil
}

// ListBySubscriberWithState は購読者に届いた通知を既読状態付きで新しい順に返す。
// notifications_readとJOINし、同一通知が複数購読に照合された場合も
// 購読ごとに1行を返す。
func (r *PostgresNotificationRepo) ListBySubscriberWithState(ctx context.Context, subscriberID string, limit int) ([]model.NotificationWithState, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT n.id, n.category, n.community_id, n.thread_id, n.comment_id, n.snapshot_space_id, n.data, n.created_at,
		        nr.subscription_id, nr.is_read
		 FROM notifications_read nr
		 JOIN notifications n ON n.id = nr.notification_id
		 WHERE nr.subscriber_id = $1
		 ORDER BY n.id DESC
		 LIMIT $2`,
		subscriberID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("通知一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var results []model.NotificationWithState
	for rows.Next() {
		var item model.NotificationWithState
		var communityID, snapshotSpaceID sql.NullString
		var threadID, commentID sql.NullInt64
		var data []byte

		if err := rows.Scan(
			&item.Notification.ID, &item.Category, &communityID, &threadID, &commentID, &snapshotSpaceID, &data, &item.CreatedAt,
			&item.SubscriptionID, &item.IsRead,
		); err != nil {
			return nil, fmt.Errorf("通知行の読み取りに失敗しました: %w", err)
		}

		item.CommunityID = communityID.String
		item.SnapshotSpaceID = snapshotSpaceID.String
		if threadID.Valid {
			v := threadID.Int64
			item.ThreadID = &v
		}
		if commentID.Valid {
			v := commentID.Int64
			item.CommentID = &v
		}
		item.Data = data
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("通知一覧の走査に失敗しました: %w", err)
	}
	return results, nil
}

// compile-time interface check
var _ NotificationRepository = (*PostgresNotificationRepo)(nil)
