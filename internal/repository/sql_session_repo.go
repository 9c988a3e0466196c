package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hitoshi/chatrelay/internal/model"
)

// SQLSessionRepo はsqlite3/postgres両対応のセッションリポジトリ。
type SQLSessionRepo struct {
	db *sqlx.DB
}

// NewSQLSessionRepo はSQLSessionRepoを生成する。
func NewSQLSessionRepo(db *sqlx.DB) *SQLSessionRepo {
	return &SQLSessionRepo{db: db}
}

// Create はセッションを作成する。
func (r *SQLSessionRepo) Create(ctx context.Context, session *model.Session) error {
	query := r.db.Rebind(
		`INSERT INTO sessions (token, user_id, email, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		session.Token, session.UserID, session.Email,
		session.ExpiresAt.UTC(), session.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByToken は指定トークンのセッションを取得する。
// 不明なトークンと期限切れはどちらもnilを返し、呼び出し側からは区別できない。
// 有効期限の比較はドライバ差を避けるため呼び出し側のnowに対してGo側で行う。
func (r *SQLSessionRepo) FindByToken(ctx context.Context, token string, now time.Time) (*model.Session, error) {
	session := &model.Session{}
	query := r.db.Rebind(
		`SELECT token, user_id, email, expires_at, created_at FROM sessions WHERE token = ?`)
	err := r.db.GetContext(ctx, session, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	if session.Expired(now) {
		// 期限切れ行はその場で片付ける。失敗しても結果は変わらない。
		_ = r.DeleteByToken(ctx, token)
		return nil, nil
	}

	return session, nil
}

// DeleteByToken は指定トークンのセッションを削除する。冪等。
func (r *SQLSessionRepo) DeleteByToken(ctx context.Context, token string) error {
	query := r.db.Rebind(`DELETE FROM sessions WHERE token = ?`)
	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SessionRepository = (*SQLSessionRepo)(nil)
