package repository

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/hitoshi/chatrelay/internal/database"
	"github.com/hitoshi/chatrelay/internal/model"
)

// newTestDB はマイグレーション適用済みのインメモリsqlite3接続を返す。
// 接続プールは1本に制限されているため、インメモリDBがテスト中保持される。
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.RunMigrations("sqlite3", db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// mustCreateUser はテスト用ユーザーを作成して返す。
func mustCreateUser(t *testing.T, db *sqlx.DB, email string) *model.User {
	t.Helper()

	user, err := NewSQLUserRepo(db).Create(context.Background(), email, "hashed-password")
	if err != nil {
		t.Fatalf("failed to create test user %q: %v", email, err)
	}
	return user
}
