// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する。
type Collector struct {
	registrations prometheus.Counter
	logins        prometheus.Counter
	loginFailures *prometheus.CounterVec
	turnsSaved    prometheus.Counter
	relaySuccess  prometheus.Counter
	relayFailures *prometheus.CounterVec
	relayLatency  prometheus.Histogram
	httpStatus    *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatrelay_registrations_total",
			Help: "ユーザー登録成功の合計数",
		}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatrelay_logins_total",
			Help: "ログイン成功の合計数",
		}),
		loginFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatrelay_login_failures_total",
			Help: "ログイン失敗の理由別合計数",
		}, []string{"reason"}),
		turnsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatrelay_chat_turns_saved_total",
			Help: "保存されたチャット発言の合計数",
		}),
		relaySuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatrelay_relay_success_total",
			Help: "AIバックエンド中継成功の合計数",
		}),
		relayFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatrelay_relay_failures_total",
			Help: "AIバックエンド中継失敗の分類別合計数",
		}, []string{"reason"}),
		relayLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chatrelay_relay_latency_seconds",
			Help:    "AIバックエンド中継のレイテンシ（秒）",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatrelay_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.registrations,
		c.logins,
		c.loginFailures,
		c.turnsSaved,
		c.relaySuccess,
		c.relayFailures,
		c.relayLatency,
		c.httpStatus,
	)

	return c
}

// RecordRegistration はユーザー登録成功を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordLogin はログイン成功を記録する。
func (c *Collector) RecordLogin() {
	c.logins.Inc()
}

// RecordLoginFailure はログイン失敗を理由付きで記録する。
func (c *Collector) RecordLoginFailure(reason string) {
	c.loginFailures.WithLabelValues(reason).Inc()
}

// RecordTurnSaved はチャット発言の保存を記録する。
func (c *Collector) RecordTurnSaved() {
	c.turnsSaved.Inc()
}

// RecordRelaySuccess は中継成功とレイテンシを記録する。
func (c *Collector) RecordRelaySuccess(duration time.Duration) {
	c.relaySuccess.Inc()
	c.relayLatency.Observe(duration.Seconds())
}

// RecordRelayFailure は中継失敗を分類付きで記録する。
func (c *Collector) RecordRelayFailure(reason string) {
	c.relayFailures.WithLabelValues(reason).Inc()
}

// RecordHTTPStatus はレスポンスのステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
