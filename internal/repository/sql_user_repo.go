package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/hitoshi/chatrelay/internal/model"
)

// SQLUserRepo はsqlite3/postgres両対応のユーザーリポジトリ。
type SQLUserRepo struct {
	db *sqlx.DB
}

// NewSQLUserRepo はSQLUserRepoを生成する。
func NewSQLUserRepo(db *sqlx.DB) *SQLUserRepo {
	return &SQLUserRepo{db: db}
}

// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
// メールアドレスは保存時のまま大文字小文字を区別して照合する。
func (r *SQLUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	query := r.db.Rebind(`SELECT id, email, password FROM users WHERE email = ?`)
	err := r.db.GetContext(ctx, user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// Create はユーザーを作成する。
// 事前チェックをすり抜けた重複挿入はストアのUNIQUE制約が拒否し、
// model.ErrDuplicateEmailとして報告される。
func (r *SQLUserRepo) Create(ctx context.Context, email, passwordHash string) (*model.User, error) {
	user := &model.User{Email: email, PasswordHash: passwordHash}

	var err error
	if r.db.DriverName() == "postgres" {
		query := r.db.Rebind(`INSERT INTO users (email, password) VALUES (?, ?) RETURNING id`)
		err = r.db.QueryRowxContext(ctx, query, email, passwordHash).Scan(&user.ID)
	} else {
		var res sql.Result
		res, err = r.db.ExecContext(ctx,
			`INSERT INTO users (email, password) VALUES (?, ?)`, email, passwordHash)
		if err == nil {
			user.ID, err = res.LastInsertId()
		}
	}

	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// isUniqueViolation はドライバ固有の一意制約違反エラーを判別する。
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" // unique_violation
	}

	return false
}

// compile-time interface check
var _ UserRepository = (*SQLUserRepo)(nil)
