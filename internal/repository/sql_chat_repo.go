package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hitoshi/chatrelay/internal/model"
)

// SQLChatRepo はsqlite3/postgres両対応のチャット履歴リポジトリ。
type SQLChatRepo struct {
	db *sqlx.DB
}

// NewSQLChatRepo はSQLChatRepoを生成する。
func NewSQLChatRepo(db *sqlx.DB) *SQLChatRepo {
	return &SQLChatRepo{db: db}
}

// Append はチャット発言を1件追記する。発言は以後変更・削除されない。
func (r *SQLChatRepo) Append(ctx context.Context, turn *model.ChatTurn) error {
	var err error
	if r.db.DriverName() == "postgres" {
		query := r.db.Rebind(
			`INSERT INTO chats (user_id, message, sender, timestamp)
			 VALUES (?, ?, ?, ?) RETURNING id`)
		err = r.db.QueryRowxContext(ctx, query,
			turn.UserID, turn.Message, turn.Sender, turn.Timestamp.UTC()).Scan(&turn.ID)
	} else {
		var res sql.Result
		res, err = r.db.ExecContext(ctx,
			`INSERT INTO chats (user_id, message, sender, timestamp) VALUES (?, ?, ?, ?)`,
			turn.UserID, turn.Message, turn.Sender, turn.Timestamp.UTC())
		if err == nil {
			turn.ID, err = res.LastInsertId()
		}
	}

	if err != nil {
		return fmt.Errorf("failed to append chat turn: %w", err)
	}
	return nil
}

// ListByUser は指定ユーザーの全発言をtimestamp昇順で返す。
// 同時刻の発言は挿入順（id昇順）で安定させる。
func (r *SQLChatRepo) ListByUser(ctx context.Context, userID int64) ([]model.ChatTurn, error) {
	turns := []model.ChatTurn{}
	query := r.db.Rebind(
		`SELECT id, user_id, message, sender, timestamp
		 FROM chats
		 WHERE user_id = ?
		 ORDER BY timestamp ASC, id ASC`)
	if err := r.db.SelectContext(ctx, &turns, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list chat turns: %w", err)
	}
	return turns, nil
}

// compile-time interface check
var _ ChatRepository = (*SQLChatRepo)(nil)
