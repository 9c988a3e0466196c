// Package auth は認証とセッション管理を提供する。
// パスワードハッシュは一方向関数として扱い、検証が一致確認の唯一の手段。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/chatrelay/internal/model"
	"github.com/hitoshi/chatrelay/internal/repository"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
	BcryptCost    int // bcryptワークファクター
}

// Service は認証に関するビジネスロジックと、
// セッションの発行・解決・破棄（セッションオーソリティ）を提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
	now         func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		config:      config,
		now:         time.Now,
	}
}

// Register は新規ユーザーを登録し、即座にセッションを発行する（登録＝ログイン）。
// 失敗はmodel.ErrMissingFields、model.ErrDuplicateEmail、
// model.ErrHashingFailure、またはストア起因のエラー。
// メールアドレスの一意性はストアの制約が唯一の正であり、
// 事前チェックとINSERTの間の競合はCreate側の制約違反として報告される。
func (s *Service) Register(ctx context.Context, email, password string) (*model.Session, error) {
	if email == "" || password == "" {
		return nil, model.ErrMissingFields
	}

	// 事前チェック。409の応答経路を確定させるための最適化であって、
	// 一意性保証の仕組みではない。
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}
	if existing != nil {
		return nil, model.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrHashingFailure, err)
	}

	user, err := s.userRepo.Create(ctx, email, string(hash))
	if err != nil {
		// ErrDuplicateEmailはそのまま通す（チェック後に滑り込んだ同時登録）。
		return nil, err
	}

	session, err := s.createSession(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	slog.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)
	return session, nil
}

// Login は既存ユーザーを認証し、セッションを発行する。
// アカウント不在はmodel.ErrUserNotFound、ハッシュ不一致はmodel.ErrWrongPassword。
// 両者は呼び出し側で異なる文言に写像される（元システムの観測挙動を保存）。
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, error) {
	if email == "" || password == "" {
		return nil, model.ErrMissingFields
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, model.ErrWrongPassword
		}
		return nil, fmt.Errorf("%w: %w", model.ErrHashingFailure, err)
	}

	session, err := s.createSession(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	slog.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)
	return session, nil
}

// Logout はセッションを破棄する。
// 既に存在しない・期限切れのトークンに対しても冪等にエラーなしで返る。
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := s.sessionRepo.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// Resolve はトークンをセッションに解決する。
// 不明なトークンと期限切れはどちらも(nil, nil)で、呼び出し側からは区別できない
// （一様な拒否）。有効期限は作成時点から固定長のハードな境界。
func (s *Service) Resolve(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, nil
	}
	return s.sessionRepo.FindByToken(ctx, token, s.now())
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID int64, email string) (*model.Session, error) {
	token, err := generateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := s.now()
	session := &model.Session{
		Token:     token,
		UserID:    userID,
		Email:     email,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionToken は暗号的に安全な不透明トークンを生成する。
func generateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
