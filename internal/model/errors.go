// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// センチネルエラー。リポジトリ・サービス層の境界で判別に使う。
var (
	// ErrDuplicateEmail はメールアドレスの一意制約違反を表す。
	// ストア側の制約が唯一の正であり、事前チェックをすり抜けた挿入もこれに写像される。
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUserNotFound は該当ユーザーが存在しないことを表す。
	ErrUserNotFound = errors.New("user not found")
	// ErrWrongPassword はパスワード検証の不一致を表す。
	ErrWrongPassword = errors.New("wrong password")
	// ErrMissingFields は必須フィールドの欠落を表す。
	ErrMissingFields = errors.New("missing required fields")
	// ErrHashingFailure はハッシュプリミティブの内部障害を表す。
	// ユーザー起因ではなく内部フォールトとして扱う。
	ErrHashingFailure = errors.New("password hashing failed")
)

// APIError は統一エラーフォーマットを表す。
// Messageはそのままレスポンスボディに載るユーザー向け文字列。
type APIError struct {
	Code     string // エラーコード
	Message  string // ユーザー向けメッセージ
	Category string // カテゴリ: auth, validation, conflict, upstream, system
	Status   int    // HTTPステータスコード
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMissingFields      = "MISSING_FIELDS"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeWrongPassword      = "WRONG_PASSWORD"
	ErrCodeInvalidMessage     = "INVALID_MESSAGE"
	ErrCodeBackendError       = "AI_BACKEND_ERROR"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewMissingFieldsError は認証フィールド欠落エラーを生成する。
func NewMissingFieldsError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingFields,
		Message:  "Email and password are required.",
		Category: "validation",
		Status:   400,
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "This email is already registered. Please use another mail ID.",
		Category: "conflict",
		Status:   409,
	}
}

// NewInvalidCredentialsError は未登録メールに対する認証失敗エラーを生成する。
// アカウント不在を示す汎用メッセージ。NewWrongPasswordErrorと文言が異なるのは
// 元システムの観測挙動を保存するための意図的な非対称。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid email or password.",
		Category: "auth",
		Status:   401,
	}
}

// NewWrongPasswordError は登録済みメールに対するパスワード不一致エラーを生成する。
func NewWrongPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeWrongPassword,
		Message:  "Wrong password.",
		Category: "auth",
		Status:   401,
	}
}

// NewInvalidMessageError はチャット保存データ不備エラーを生成する。
func NewInvalidMessageError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidMessage,
		Message:  "Invalid message data.",
		Category: "validation",
		Status:   400,
	}
}

// NewBackendError はAIバックエンド呼び出し失敗のユーザー向けエラーを生成する。
// 失敗分類（到達不能・エラーステータス・タイムアウト）はログにのみ残し、
// ユーザーには常にこの一般メッセージを返す。
func NewBackendError() *APIError {
	return &APIError{
		Code:     ErrCodeBackendError,
		Message:  "AI backend error",
		Category: "upstream",
		Status:   500,
	}
}

// NewInternalError は内部エラーを生成する。
// messageはユーザー向け文字列で、詳細はログにのみ記録する。
func NewInternalError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  message,
		Category: "system",
		Status:   500,
	}
}
