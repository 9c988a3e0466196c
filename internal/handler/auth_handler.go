package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/chatrelay/internal/middleware"
	"github.com/hitoshi/chatrelay/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, email, password string) (*model.Session, error)
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Logout(ctx context.Context, token string) error
}

// AuthMetrics は認証イベントのメトリクス記録に必要なインターフェース。
type AuthMetrics interface {
	RecordRegistration()
	RecordLogin()
	RecordLoginFailure(reason string)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler は登録・ログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	metrics AuthMetrics // nil可
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, metrics AuthMetrics) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		metrics: metrics,
	}
}

// credentialsRequest は登録・ログインリクエストのボディ。
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup は新規ユーザー登録を処理する。登録成功は即ログイン。
// POST /signin
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	// 解析不能なボディはフィールド欠落と同じ扱い。
	_ = json.NewDecoder(r.Body).Decode(&req)

	session, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrMissingFields):
			writeAPIError(w, model.NewMissingFieldsError())
		case errors.Is(err, model.ErrDuplicateEmail):
			writeAPIError(w, model.NewEmailTakenError())
		case errors.Is(err, model.ErrHashingFailure):
			slog.Error("password hashing failed", slog.String("error", err.Error()))
			writeAPIError(w, model.NewInternalError("Internal server error during password processing."))
		default:
			slog.Error("failed to register user", slog.String("error", err.Error()))
			writeAPIError(w, model.NewInternalError("Failed to create user."))
		}
		return
	}

	if h.metrics != nil {
		h.metrics.RecordRegistration()
	}

	h.setSessionCookie(w, session.Token)
	writeJSON(w, http.StatusOK, successResponse{Success: true, RedirectURL: "/"})
}

// Login は既存ユーザーのログインを処理する。
// アカウント不在とパスワード不一致で文言が異なるのは意図的な挙動の保存。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrMissingFields):
			writeAPIError(w, model.NewMissingFieldsError())
		case errors.Is(err, model.ErrUserNotFound):
			h.recordLoginFailure("unknown_email")
			writeAPIError(w, model.NewInvalidCredentialsError())
		case errors.Is(err, model.ErrWrongPassword):
			h.recordLoginFailure("wrong_password")
			writeAPIError(w, model.NewWrongPasswordError())
		default:
			slog.Error("failed to log in user", slog.String("error", err.Error()))
			h.recordLoginFailure("internal")
			writeAPIError(w, model.NewInternalError("Internal server error during login."))
		}
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLogin()
	}

	h.setSessionCookie(w, session.Token)
	writeJSON(w, http.StatusOK, successResponse{Success: true, RedirectURL: "/"})
}

// Logout はセッションを破棄する。セッションが無くても成功として扱う（冪等）。
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		if logoutErr := h.service.Logout(r.Context(), cookie.Value); logoutErr != nil {
			slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
			writeAPIError(w, model.NewInternalError("Logout failed."))
			return
		}
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, successResponse{Success: true, RedirectURL: "/login"})
}

// setSessionCookie はセッションCookieを設定する（HTTP Only、固定長の有効期限）。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はセッションCookieを破棄する。
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// recordLoginFailure はメトリクスが有効な場合だけ失敗理由を記録する。
func (h *AuthHandler) recordLoginFailure(reason string) {
	if h.metrics != nil {
		h.metrics.RecordLoginFailure(reason)
	}
}
