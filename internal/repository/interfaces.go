// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/chatrelay/internal/model"
)

// UserRepository はユーザー認証情報の永続化インターフェース。
type UserRepository interface {
	// FindByEmail は指定メールアドレスのユーザーを取得する。
	// 見つからない場合は(nil, nil)を返す。不在は失敗ではなく通常の結果。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDを設定して返す。
	// メールアドレスの一意性はストアのUNIQUE制約が唯一の正であり、
	// 制約違反はmodel.ErrDuplicateEmailに写像される。
	Create(ctx context.Context, email, passwordHash string) (*model.User, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// FindByToken は指定トークンのセッションを取得する。
	// 不明なトークン、またはnow時点で期限切れの場合はnilを返す。
	// 期限切れ行はその場で削除される。
	FindByToken(ctx context.Context, token string, now time.Time) (*model.Session, error)

	// DeleteByToken は指定トークンのセッションを削除する。
	// 存在しないトークンに対しても冪等にエラーなしで返る。
	DeleteByToken(ctx context.Context, token string) error
}

// ChatRepository はチャット履歴の永続化インターフェース。
type ChatRepository interface {
	// Append はチャット発言を1件追記し、採番されたIDを設定する。
	Append(ctx context.Context, turn *model.ChatTurn) error

	// ListByUser は指定ユーザーの全発言をtimestamp昇順（同時刻はid昇順）で返す。
	// 履歴が無い場合は空スライスを返す。他ユーザーの発言は決して含まれない。
	ListByUser(ctx context.Context, userID int64) ([]model.ChatTurn, error)
}
