package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/chatrelay/internal/model"
)

// --- モック ---

type mockResolver struct {
	resolveFn func(ctx context.Context, token string) (*model.Session, error)
}

func (m *mockResolver) Resolve(ctx context.Context, token string) (*model.Session, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, token)
	}
	return nil, nil
}

// --- テスト ---

// TestSessionMiddleware_ValidSession は有効なセッションで後続ハンドラに
// アイデンティティが渡されることを検証する。
func TestSessionMiddleware_ValidSession(t *testing.T) {
	resolver := &mockResolver{
		resolveFn: func(ctx context.Context, token string) (*model.Session, error) {
			if token != "tok-abc" {
				t.Errorf("token = %q, want %q", token, "tok-abc")
			}
			return &model.Session{Token: token, UserID: 7, Email: "alice@example.com"}, nil
		},
	}

	var gotIdentity Identity
	handlerCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		id, err := IdentityFromContext(r.Context())
		if err != nil {
			t.Errorf("IdentityFromContext returned error: %v", err)
		}
		gotIdentity = id
	})

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok-abc"})
	rr := httptest.NewRecorder()

	NewSessionMiddleware(resolver)(next).ServeHTTP(rr, req)

	if !handlerCalled {
		t.Fatal("expected handler to be called")
	}
	if gotIdentity.UserID != 7 {
		t.Errorf("UserID = %d, want 7", gotIdentity.UserID)
	}
	if gotIdentity.Email != "alice@example.com" {
		t.Errorf("Email = %q, want %q", gotIdentity.Email, "alice@example.com")
	}
}

// TestSessionMiddleware_UniformDenial は無Cookie・不明トークン・解決失敗が
// いずれも同一の転送応答になることを検証する。
func TestSessionMiddleware_UniformDenial(t *testing.T) {
	tests := []struct {
		name     string
		cookie   *http.Cookie
		resolver *mockResolver
	}{
		{
			name:     "no cookie",
			cookie:   nil,
			resolver: &mockResolver{},
		},
		{
			name:   "empty cookie value",
			cookie: &http.Cookie{Name: SessionCookieName, Value: ""},
			resolver: &mockResolver{},
		},
		{
			name:   "unknown or expired token",
			cookie: &http.Cookie{Name: SessionCookieName, Value: "tok-gone"},
			resolver: &mockResolver{
				resolveFn: func(ctx context.Context, token string) (*model.Session, error) {
					return nil, nil
				},
			},
		},
		{
			name:   "resolver failure",
			cookie: &http.Cookie{Name: SessionCookieName, Value: "tok-err"},
			resolver: &mockResolver{
				resolveFn: func(ctx context.Context, token string) (*model.Session, error) {
					return nil, errors.New("store down")
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			})

			req := httptest.NewRequest(http.MethodGet, "/history", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rr := httptest.NewRecorder()

			NewSessionMiddleware(tt.resolver)(next).ServeHTTP(rr, req)

			if handlerCalled {
				t.Error("handler should not be called for denied request")
			}
			if rr.Code != http.StatusFound {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusFound)
			}
			if loc := rr.Header().Get("Location"); loc != AuthRedirectPath {
				t.Errorf("Location = %q, want %q", loc, AuthRedirectPath)
			}
		})
	}
}

// TestIdentityFromContext_Missing はミドルウェア未通過のコンテキストで
// エラーになることを検証する。
func TestIdentityFromContext_Missing(t *testing.T) {
	_, err := IdentityFromContext(context.Background())
	if err == nil {
		t.Error("expected error for context without identity")
	}
}
