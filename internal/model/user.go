// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// 登録時に一度だけ作成され、以後変更・削除されない。
type User struct {
	ID           int64  `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password"`
}

// Session はユーザーのログインセッションを表す。
// Tokenが「現在の操作者」を運ぶ唯一の識別子であり、
// UserID/Emailはセッション生存期間中イミュータブル。
type Session struct {
	Token     string    `db:"token"`
	UserID    int64     `db:"user_id"`
	Email     string    `db:"email"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// Expired は指定時刻においてセッションが期限切れかどうかを返す。
// 有効期限は作成時点から固定長のハードな境界（スライディングしない）。
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
