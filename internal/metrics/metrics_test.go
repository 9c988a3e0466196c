package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() == name {
			var total float64
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
			return total
		}
	}
	t.Fatalf("metric %q not found", name)
	return 0
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordRegistration_IncrementsCounter は登録カウンタが増加することを検証する。
func TestRecordRegistration_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRegistration()
	c.RecordRegistration()

	if got := counterValue(t, reg, "chatrelay_registrations_total"); got != 2 {
		t.Errorf("registrations_total = %v, want 2", got)
	}
}

// TestRecordLoginFailure_LabelsByReason はログイン失敗が理由別に
// 記録されることを検証する。
func TestRecordLoginFailure_LabelsByReason(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLoginFailure("unknown_email")
	c.RecordLoginFailure("wrong_password")
	c.RecordLoginFailure("wrong_password")

	if got := counterValue(t, reg, "chatrelay_login_failures_total"); got != 3 {
		t.Errorf("login_failures_total = %v, want 3", got)
	}
}

// TestRecordRelay_SuccessAndFailure は中継の成功・失敗・レイテンシが
// 記録されることを検証する。
func TestRecordRelay_SuccessAndFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRelaySuccess(250 * time.Millisecond)
	c.RecordRelayFailure("timeout")
	c.RecordRelayFailure("unavailable")

	if got := counterValue(t, reg, "chatrelay_relay_success_total"); got != 1 {
		t.Errorf("relay_success_total = %v, want 1", got)
	}
	if got := counterValue(t, reg, "chatrelay_relay_failures_total"); got != 2 {
		t.Errorf("relay_failures_total = %v, want 2", got)
	}
}

// TestRecordHTTPStatus_LabelsByCode はステータスコード別に記録されることを検証する。
func TestRecordHTTPStatus_LabelsByCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(500)

	if got := counterValue(t, reg, "chatrelay_http_status_total"); got != 3 {
		t.Errorf("http_status_total = %v, want 3", got)
	}
}

// TestHandler_ServesMetrics は/metricsハンドラーが登録済みメトリクスを
// 公開することを検証する。
func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordTurnSaved()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(body), "chatrelay_chat_turns_saved_total 1") {
		t.Errorf("metrics output missing turns_saved counter:\n%s", body)
	}
}
