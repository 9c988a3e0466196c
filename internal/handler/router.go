package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/chatrelay/internal/metrics"
	"github.com/hitoshi/chatrelay/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// sqlx.DBの部分集合として定義する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// ミドルウェア依存
	SessionResolver   middleware.SessionResolver
	CORSAllowedOrigin string

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// チャット
	TranscriptService TranscriptServiceInterface
	RelayClient       RelayClientInterface

	// 静的ページ
	StaticDir string

	// 運用
	HealthChecker HealthChecker
	Metrics       *metrics.Collector // nil可
	Gatherer      prometheus.Gatherer
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → Logging → CORS → SecurityHeaders
//
// 保護ルート（/、/history、/save_message、/get）だけがセッションゲートを通る。
// ゲートは副作用より前に一様な転送で拒否する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger, statusRecorderOrNil(deps.Metrics)))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, authMetricsOrNil(deps.Metrics))
	chatHandler := NewChatHandler(deps.TranscriptService, deps.RelayClient, chatMetricsOrNil(deps.Metrics))
	pageHandler := NewPageHandler(deps.StaticDir)

	// --- 運用エンドポイント ---

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.PingContext(r.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- 認証不要のルート ---

	r.Get("/signin", pageHandler.SigninPage)
	r.Get("/login", pageHandler.LoginPage)
	r.Post("/signin", authHandler.Signup)
	r.Post("/login", authHandler.Login)
	r.Post("/logout", authHandler.Logout) // セッションの有無は任意

	// --- 認証が必要なルート ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionResolver))

		r.Get("/", pageHandler.IndexPage)
		r.Get("/history", chatHandler.History)
		r.Post("/save_message", chatHandler.SaveMessage)
		r.Post("/get", chatHandler.RelayTurn)
	})

	// ページ以外の静的アセットはゲート外で配信する。
	r.NotFound(pageHandler.Assets().ServeHTTP)

	return r
}

// nil許容のCollectorをハンドラー側のインターフェースに落とすヘルパー。
// 型付きnilインターフェースを避けるため明示的に分岐する。

func authMetricsOrNil(c *metrics.Collector) AuthMetrics {
	if c == nil {
		return nil
	}
	return c
}

func chatMetricsOrNil(c *metrics.Collector) ChatMetrics {
	if c == nil {
		return nil
	}
	return c
}

func statusRecorderOrNil(c *metrics.Collector) middleware.StatusRecorder {
	if c == nil {
		return nil
	}
	return c
}
