package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/char5742/nspire-input/internal/event"
)

var registry = prometheus.NewRegistry()

var (
	EventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nspire",
		Name:      "events_total",
		Help:      "送出したイベント数",
	}, []string{"type"})

	PumpCycles = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nspire",
		Name:      "pump_cycles_total",
		Help:      "ポーリング周期の実行回数",
	})

	ScanErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nspire",
		Name:      "scan_errors_total",
		Help:      "デバイスの読み取りに失敗した周期の数",
	})

	QueueDropped = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "nspire",
		Name:      "queue_dropped",
		Help:      "キューがあふれて捨てたイベント数",
	})

	ServiceRunning = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "nspire",
		Name:      "service_running",
		Help:      "サービスが動作中なら1",
	})
)

func init() {
	registry.MustRegister(
		EventsTotal,
		PumpCycles,
		ScanErrors,
		QueueDropped,
		ServiceRunning,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Registry はこのプロセスのメトリクスを持つレジストリを返す
func Registry() *prometheus.Registry { return registry }

// Handler は /metrics 用のハンドラーを返す
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

type countingSink struct {
	next event.Sink
}

// Sink はイベントを種類ごとに数えてから next に渡す
func Sink(next event.Sink) event.Sink {
	return countingSink{next: next}
}

func (s countingSink) Dispatch(ev event.Event) {
	EventsTotal.WithLabelValues(ev.Type.String()).Inc()
	if s.next != nil {
		s.next.Dispatch(ev)
	}
}
