// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/chatrelay/internal/model"
)

// SessionCookieName はセッショントークンを運ぶCookie名。
const SessionCookieName = "session_token"

// AuthRedirectPath は未認証リクエストの転送先。
const AuthRedirectPath = "/signin?auth_required=true"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストに認証済みアイデンティティを格納するためのキー。
var identityContextKey = contextKey("identity")

// Identity はセッションから解決された「現在の操作者」を表す。
// セッションだけが識別の運搬体であり、他の経路から再導出してはならない。
type Identity struct {
	UserID int64
	Email  string
}

// SessionResolver はトークンの解決に必要なインターフェース。
// auth.Serviceの部分集合として定義する。
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*model.Session, error)
}

// NewSessionMiddleware はHTTP Only Cookieからトークンを読み取り、
// セッションを解決するミドルウェアを返す。
// 解決できたアイデンティティをリクエストコンテキストに注入する。
// 拒否は常に同一の転送応答で、未ログイン・期限切れ・不正トークンを
// 呼び出し側から区別できない。拒否は保護対象の副作用より前に起きる。
func NewSessionMiddleware(resolver SessionResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, AuthRedirectPath, http.StatusFound)
				return
			}

			session, err := resolver.Resolve(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("failed to resolve session",
					slog.String("error", err.Error()),
				)
				http.Redirect(w, r, AuthRedirectPath, http.StatusFound)
				return
			}
			if session == nil {
				http.Redirect(w, r, AuthRedirectPath, http.StatusFound)
				return
			}

			ctx := ContextWithIdentity(r.Context(), Identity{
				UserID: session.UserID,
				Email:  session.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext はリクエストコンテキストからアイデンティティを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func IdentityFromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	if !ok || id.UserID == 0 {
		return Identity{}, fmt.Errorf("identity not found in context")
	}
	return id, nil
}

// ContextWithIdentity はコンテキストにアイデンティティを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}
