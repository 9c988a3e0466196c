// Package relay は外部AI推論サービスへの中継を提供する。
// ペイロードのAI固有の意味には一切関与せず、ボディをそのまま往復させる。
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// FailureKind は中継失敗の内部分類を表す。
// 分類は診断ログとメトリクスにのみ使い、エンドユーザーには公開しない。
type FailureKind string

const (
	// KindUnavailable は接続拒否・到達不能などのトランスポート障害。
	// 分類できない障害もここに落ちる（デフォルト分類）。
	KindUnavailable FailureKind = "unavailable"
	// KindStatus は外部サービスが非成功ステータスを返したことを表す。
	KindStatus FailureKind = "status"
	// KindTimeout は制限時間内に応答が得られなかったことを表す。
	KindTimeout FailureKind = "timeout"
)

// BackendError は外部AIバックエンド呼び出しの失敗を表す。
// StatusとBodyは診断用で、KindStatusの場合のみ設定される。
type BackendError struct {
	Kind   FailureKind
	Status int
	Body   []byte
	Err    error
}

// Error はerrorインターフェースを実装する。
func (e *BackendError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("ai backend returned status %d", e.Status)
	}
	return fmt.Sprintf("ai backend %s: %v", e.Kind, e.Err)
}

// Unwrap はラップされた原因エラーを返す。
func (e *BackendError) Unwrap() error {
	return e.Err
}

// Recorder は中継結果のメトリクス記録に必要なインターフェース。
type Recorder interface {
	RecordRelaySuccess(duration time.Duration)
	RecordRelayFailure(reason string)
}

// Client は外部AI推論エンドポイントのクライアント。
// リトライは行わない。1回の失敗はそのリクエストにとって終端。
type Client struct {
	httpClient *http.Client
	endpoint   string
	timeout    time.Duration
	logger     *slog.Logger
	recorder   Recorder // nil可
}

// NewClient はClientの新しいインスタンスを生成する。
// timeoutは外部呼び出し全体の制限時間（リクエスト送信から応答読み取りまで）。
func NewClient(httpClient *http.Client, endpoint string, timeout time.Duration, logger *slog.Logger, recorder Recorder) *Client {
	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		timeout:    timeout,
		logger:     logger,
		recorder:   recorder,
	}
}

// Relay は呼び出し元のペイロードに認証済みユーザーのuserIdを注入して
// 外部エンドポイントにPOSTし、成功時はレスポンスボディをそのまま返す。
// クライアントが自称したuserIdは常に上書きされる。
// 失敗は*BackendErrorとして分類され、呼び出し側が一般メッセージに落とす。
func (c *Client) Relay(ctx context.Context, userID int64, payload map[string]any) ([]byte, error) {
	if payload == nil {
		payload = make(map[string]any)
	}
	// セッション由来の識別だけを信頼する。
	payload["userId"] = userID

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, c.fail(KindUnavailable, 0, nil, fmt.Errorf("failed to encode payload: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, c.fail(KindUnavailable, 0, nil, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(classifyTransportError(err), 0, nil, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(classifyTransportError(err), 0, nil, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.fail(KindStatus, resp.StatusCode, respBody, nil)
	}

	if c.recorder != nil {
		c.recorder.RecordRelaySuccess(time.Since(start))
	}
	return respBody, nil
}

// fail は失敗を記録し、分類済みエラーを組み立てる。
// 診断詳細（ステータス・ボディ）はここでログに残り、レスポンスには載らない。
func (c *Client) fail(kind FailureKind, status int, body []byte, err error) *BackendError {
	if c.recorder != nil {
		c.recorder.RecordRelayFailure(string(kind))
	}

	attrs := []any{
		slog.String("kind", string(kind)),
		slog.String("endpoint", c.endpoint),
	}
	if status != 0 {
		attrs = append(attrs, slog.Int("backend_status", status))
	}
	if len(body) > 0 {
		attrs = append(attrs, slog.String("backend_body", truncate(string(body), 512)))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	c.logger.Error("ai backend call failed", attrs...)

	return &BackendError{Kind: kind, Status: status, Body: body, Err: err}
}

// classifyTransportError はトランスポート層の失敗を分類する。
// 期限超過はタイムアウト、それ以外は到達不能（デフォルト分類）。
func classifyTransportError(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return KindTimeout
	}

	return KindUnavailable
}

// truncate はログ用にボディを切り詰める。
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
