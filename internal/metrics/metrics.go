// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 通知サービスおよびRead-State Trackerから利用する。
type MetricsCollector interface {
	RecordNotificationEmitted(category string)
	RecordFanOutMatches(category string, count int)
	RecordFanOutLatency(duration time.Duration)
	RecordCursorRaised()
	RecordMarkedRead(count int64)
	RecordClearedRead(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	notificationsEmitted *prometheus.CounterVec
	fanoutMatches        *prometheus.CounterVec
	fanoutLatency        prometheus.Histogram
	cursorRaised         prometheus.Counter
	markedRead           prometheus.Counter
	clearedRead          prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		notificationsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agora_notifications_emitted_total",
			Help: "発行された通知のカテゴリ別合計数",
		}, []string{"category"}),
		fanoutMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agora_fanout_matches_total",
			Help: "ファンアウトで照合された購読のカテゴリ別合計数",
		}, []string{"category"}),
		fanoutLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "agora_fanout_latency_seconds",
			Help:    "ファンアウト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		cursorRaised: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agora_thread_cursor_raised_total",
			Help: "スレッドのmax_notif_id引き上げの合計数",
		}),
		markedRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agora_notifications_marked_read_total",
			Help: "既読化された既読追跡行の合計数",
		}),
		clearedRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agora_notifications_cleared_total",
			Help: "クリアされた既読行の合計数",
		}),
	}

	reg.MustRegister(
		c.notificationsEmitted,
		c.fanoutMatches,
		c.fanoutLatency,
		c.cursorRaised,
		c.markedRead,
		c.clearedRead,
	)

	return c
}

// RecordNotificationEmitted は通知の発行を記録する。
func (c *Collector) RecordNotificationEmitted(category string) {
	c.notificationsEmitted.WithLabelValues(category).Inc()
}

// RecordFanOutMatches はファンアウトで照合された購読数を記録する。
func (c *Collector) RecordFanOutMatches(category string, count int) {
	c.fanoutMatches.WithLabelValues(category).Add(float64(count))
}

// RecordFanOutLatency はファンアウト処理のレイテンシを記録する。
func (c *Collector) RecordFanOutLatency(duration time.Duration) {
	c.fanoutLatency.Observe(duration.Seconds())
}

// RecordCursorRaised はスレッドカーソルの引き上げを記録する。
func (c *Collector) RecordCursorRaised() {
	c.cursorRaised.Inc()
}

// RecordMarkedRead は既読化された行数を記録する。
func (c *Collector) RecordMarkedRead(count int64) {
	c.markedRead.Add(float64(count))
}

// RecordClearedRead はクリアされた既読行数を記録する。
func (c *Collector) RecordClearedRead(count int64) {
	c.clearedRead.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
