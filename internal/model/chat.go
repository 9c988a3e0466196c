// Package model はドメインモデルを定義する。
package model

import "time"

// ChatTurn はユーザーのチャット1往復分の発言を表す。
// 一度保存されたら変更・削除されない。
type ChatTurn struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Message   string    `db:"message"`
	Sender    string    `db:"sender"`
	Timestamp time.Time `db:"timestamp"`
}

// Senderの慣用値。保存時の検証は空文字チェックのみで、
// 外部バックエンドやクライアントが与えた任意の文字列をそのまま往復させる。
const (
	SenderUser = "user"
	SenderBot  = "bot"
)
