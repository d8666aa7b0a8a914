package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/hitoshi/agora/internal/model"
)

// PostgresNotificationsReadRepo はPostgreSQLを使用した既読追跡リポジトリ。
// 挿入はファンアウトエンジン、更新・削除はRead-State Trackerのみが行う
// 書き込み主体の分離がこのテーブルの不変条件。
type PostgresNotificationsReadRepo struct {
	db *sql.DB
}

// NewPostgresNotificationsReadRepo はPostgresNotificationsReadRepoを生成する。
func NewPostgresNotificationsReadRepo(db *sql.DB) *PostgresNotificationsReadRepo {
	return &PostgresNotificationsReadRepo{db: db}
}

// BulkCreate は既読追跡行を一括作成する。
// (subscription_id, notification_id)の一意制約に対するON CONFLICT DO NOTHINGで
// 同一発行のリトライに冪等に振る舞う。空スライスは何もしない。
func (r *PostgresNotificationsReadRepo) BulkCreate(ctx context.Context, rows []*model.NotificationsRead) error {
	if len(rows) == 0 {
		return nil
	}

	valueClauses := make([]string, 0, len(rows))
	args := make([]any, 0, len(rows)*5)
	for i, row := range rows {
		base := i * 5
		valueClauses = append(valueClauses, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5))
		args = append(args, row.ID, row.SubscriptionID, row.NotificationID, row.SubscriberID, row.IsRead)
	}

	query := `INSERT INTO notifications_read (id, subscription_id, notification_id, subscriber_id, is_read)
		 VALUES ` + strings.Join(valueClauses, ", ") + `
		 ON CONFLICT (subscription_id, notification_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("既読追跡行の一括作成に失敗しました: %w", err)
	}
	return nil
}

// MarkRead は購読者が所有する行のうちnotification_idが指定集合に含まれる
// ものをis_read=trueに更新し、更新行数を返す。subscriber_id条件により
// 他ユーザー所有の行は暗黙に除外される。
func (r *PostgresNotificationsReadRepo) MarkRead(ctx context.Context, subscriberID string, notificationIDs []int64) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications_read
		 SET is_read = TRUE, updated_at = NOW()
		 WHERE subscriber_id = $1 AND notification_id = ANY($2) AND is_read = FALSE`,
		subscriberID, pq.Array(notificationIDs),
	)
	if err != nil {
		return 0, fmt.Errorf("通知の既読化に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("既読化結果の取得に失敗しました: %w", err)
	}
	return rowsAffected, nil
}

// DeleteRead は購読者の既読行を全て削除し、削除行数を返す。
// 既読行が存在しない場合は0件削除で正常終了する（冪等）。
func (r *PostgresNotificationsReadRepo) DeleteRead(ctx context.Context, subscriberID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications_read WHERE subscriber_id = $1 AND is_read = TRUE`,
		subscriberID,
	)
	if err != nil {
		return 0, fmt.Errorf("既読通知の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return rowsAffected, nil
}

// compile-time interface check
var _ NotificationsReadRepository = (*PostgresNotificationsReadRepo)(nil)
