package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/agora/internal/model"
)

// PostgresContentRepo は外部コラボレータのコンテンツモデル
// （コミュニティ・スレッド・コメント・Snapshotスペース）への参照リポジトリ。
// このエンジンが書き込むのはthreads.max_notif_idの引き上げのみ。
type PostgresContentRepo struct {
	db *sql.DB
}

// NewPostgresContentRepo はPostgresContentRepoを生成する。
func NewPostgresContentRepo(db *sql.DB) *PostgresContentRepo {
	return &PostgresContentRepo{db: db}
}

// CommunityExists は指定IDのコミュニティの存在を確認する。
func (r *PostgresContentRepo) CommunityExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM communities WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("コミュニティの存在確認に失敗しました: %w", err)
	}
	return exists, nil
}

// FindThreadByID は指定IDのスレッドを取得する。見つからない場合はnilを返す。
func (r *PostgresContentRepo) FindThreadByID(ctx context.Context, id int64) (*model.Thread, error) {
	thread := &model.Thread{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, community_id, title, max_notif_id, created_at, updated_at
		 FROM threads WHERE id = $1`,
		id,
	).Scan(&thread.ID, &thread.CommunityID, &thread.Title, &thread.MaxNotifID, &thread.CreatedAt, &thread.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("スレッドの取得に失敗しました: %w", err)
	}
	return thread, nil
}

// CommentExists は指定IDのコメントの存在を確認する。
func (r *PostgresContentRepo) CommentExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("コメントの存在確認に失敗しました: %w", err)
	}
	return exists, nil
}

// SnapshotSpaceExists は指定IDのSnapshotスペースの存在を確認する。
func (r *PostgresContentRepo) SnapshotSpaceExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM snapshot_spaces WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("Snapshotスペースの存在確認に失敗しました: %w", err)
	}
	return exists, nil
}

// RaiseThreadMaxNotifID はスレッドのmax_notif_idをmax(現在値, notifID)へ
// 引き上げる。GREATESTによる比較引き上げのため、同一スレッドへの並行発行で
// 遅れて到着した小さいIDがウォーターマークを後退させることはない。
func (r *PostgresContentRepo) RaiseThreadMaxNotifID(ctx context.Context, threadID, notifID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE threads
		 SET max_notif_id = GREATEST(max_notif_id, $2), updated_at = NOW()
		 WHERE id = $1`,
		threadID, notifID,
	)
	if err != nil {
		return fmt.Errorf("max_notif_idの更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("スレッドが見つかりません: %d", threadID)
	}
	return nil
}

// compile-time interface check
var _ ContentRepository = (*PostgresContentRepo)(nil)
